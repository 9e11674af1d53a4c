package route

// Agency identifies the transit operator serving a route.
type Agency struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	LogoURL string `json:"logoUrl,omitempty"`
}

// RouteRef is the route half of a prediction record.
type RouteRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// StopRef is the stop half of a prediction record.
type StopRef struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Distance float64 `json:"distance,omitempty"`
}

// Direction is the travel direction a prediction applies to.
type Direction struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VehicleRef identifies the vehicle a prediction refers to.
type VehicleRef struct {
	ID string `json:"id"`
}

// Prediction is one arrival estimate for a stop.
type Prediction struct {
	EpochTime         int64      `json:"epochTime"`
	Seconds           int        `json:"seconds"`
	Minutes           int        `json:"minutes"`
	Branch            string     `json:"branch,omitempty"`
	IsDeparture       bool       `json:"isDeparture"`
	AffectedByLayover bool       `json:"affectedByLayover"`
	IsScheduleBased   bool       `json:"isScheduleBased"`
	Vehicle           VehicleRef `json:"vehicle"`
	Direction         Direction  `json:"direction"`
}

// Message is a service notice attached to a prediction record.
type Message struct {
	Text     string `json:"text"`
	Priority string `json:"priority,omitempty"`
}

// Route pairs a stop with a route and carries the predictions for that pairing.
type Route struct {
	Agency   Agency       `json:"agency"`
	Route    RouteRef     `json:"route"`
	Stop     StopRef      `json:"stop"`
	Messages []Message    `json:"messages,omitempty"`
	Values   []Prediction `json:"values"`
}

// CompositeID is the stop id followed by the route id. It is the lookup key
// used by clients to address a single record in a fetched list.
func (r Route) CompositeID() string {
	return r.Stop.ID + r.Route.ID
}

// Find returns the first route in list order whose composite id equals id.
func Find(routes []Route, id string) (Route, bool) {
	for _, r := range routes {
		if r.CompositeID() == id {
			return r, true
		}
	}
	return Route{}, false
}
