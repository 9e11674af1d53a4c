package events

// Topics and event types exchanged with the app and other services.
const (
	TopicDeviceLocation = "device.location"
	TopicMapMarkers     = "map.markers"

	DeviceLocationReported = "device.location.reported"

	Source = "service-transit"
)
