package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL settings for the map registry.
type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required"`
	User     string `validate:"required"`
	Password string
	DBName   string `validate:"required"`
	SSLMode  string `validate:"oneof=disable require verify-ca verify-full"`
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string `validate:"required,min=1,dive,required"`
	GroupPrefix string
}

// UpstreamConfig holds the remote APIs the service wraps.
type UpstreamConfig struct {
	PredictionsBaseURL string `validate:"required,url"`
	Agency             string `validate:"required"`
	VehiclesFormat     string `validate:"oneof=json gtfsrt"`
	VehiclesGTFSRTURL  string `validate:"omitempty,url"`
	StopsLocation      string `validate:"required"`
	StaticBaseDir      string
	StopsCacheTTL      time.Duration `validate:"gte=0"`
	HTTPTimeout        time.Duration `validate:"gt=0"`
}

// LocationConfig selects and tunes the geolocation source.
type LocationConfig struct {
	Source           string        `validate:"oneof=static device"`
	DefaultLatitude  float64       `validate:"gte=-90,lte=90"`
	DefaultLongitude float64       `validate:"gte=-180,lte=180"`
	Timeout          time.Duration `validate:"gt=0"`
}

// MapConfig tunes map presentation.
type MapConfig struct {
	Store            string        `validate:"oneof=postgres memory"`
	DefaultZoom      int           `validate:"gte=1,lte=22"`
	TrackingInterval time.Duration `validate:"gt=0"`
}

// ServiceConfig holds all configuration for the transit service.
type ServiceConfig struct {
	Port        string `validate:"required"`
	AppEnv      string `validate:"oneof=development staging production test"`
	DBConfig    DatabaseConfig
	KafkaConfig KafkaConfig
	Upstream    UpstreamConfig
	Location    LocationConfig
	Map         MapConfig
}

// KafkaEnabled reports whether any Kafka-backed component is configured.
func (c *ServiceConfig) KafkaEnabled() bool {
	return len(c.KafkaConfig.Brokers) > 0
}

// Load reads configuration from TRANSIT_-prefixed environment variables and
// an optional config file, then validates it.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("TRANSIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("transit")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg. Database and Kafka settings are only checked when used.
func Validate(cfg *ServiceConfig) error {
	validate := validator.New()
	if err := validate.StructExcept(cfg, "DBConfig", "KafkaConfig"); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Upstream.VehiclesFormat == "gtfsrt" && cfg.Upstream.VehiclesGTFSRTURL == "" {
		return fmt.Errorf("invalid configuration: VEHICLES_GTFSRT_URL is required when VEHICLES_FORMAT=gtfsrt")
	}
	if cfg.Map.Store == "postgres" {
		if err := validate.Struct(cfg.DBConfig); err != nil {
			return fmt.Errorf("invalid database configuration: %w", err)
		}
	}
	if cfg.Location.Source == "device" {
		if err := validate.Struct(cfg.KafkaConfig); err != nil {
			return fmt.Errorf("device location requires kafka: %w", err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "transit")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")

	v.SetDefault("PREDICTIONS_BASE_URL", "http://mybus-api.herokuapp.com")
	v.SetDefault("AGENCY", "sf-muni")
	v.SetDefault("VEHICLES_FORMAT", "json")
	v.SetDefault("VEHICLES_GTFSRT_URL", "")
	v.SetDefault("STOPS_LOCATION", "stops.json")
	v.SetDefault("STATIC_BASE_DIR", ".")
	v.SetDefault("STOPS_CACHE_TTL", "0s")
	v.SetDefault("HTTP_TIMEOUT", "15s")

	v.SetDefault("LOCATION_SOURCE", "static")
	v.SetDefault("LOCATION_DEFAULT_LAT", 37.78)
	v.SetDefault("LOCATION_DEFAULT_LON", -122.416)
	v.SetDefault("LOCATION_TIMEOUT", "10s")

	v.SetDefault("MAP_STORE", "postgres")
	v.SetDefault("MAP_DEFAULT_ZOOM", 17)
	v.SetDefault("TRACKING_INTERVAL", "15s")
}

func fromViper(v *viper.Viper) *ServiceConfig {
	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Upstream: UpstreamConfig{
			PredictionsBaseURL: v.GetString("PREDICTIONS_BASE_URL"),
			Agency:             v.GetString("AGENCY"),
			VehiclesFormat:     v.GetString("VEHICLES_FORMAT"),
			VehiclesGTFSRTURL:  v.GetString("VEHICLES_GTFSRT_URL"),
			StopsLocation:      v.GetString("STOPS_LOCATION"),
			StaticBaseDir:      v.GetString("STATIC_BASE_DIR"),
			StopsCacheTTL:      v.GetDuration("STOPS_CACHE_TTL"),
			HTTPTimeout:        v.GetDuration("HTTP_TIMEOUT"),
		},
		Location: LocationConfig{
			Source:           v.GetString("LOCATION_SOURCE"),
			DefaultLatitude:  v.GetFloat64("LOCATION_DEFAULT_LAT"),
			DefaultLongitude: v.GetFloat64("LOCATION_DEFAULT_LON"),
			Timeout:          v.GetDuration("LOCATION_TIMEOUT"),
		},
		Map: MapConfig{
			Store:            v.GetString("MAP_STORE"),
			DefaultZoom:      v.GetInt("MAP_DEFAULT_ZOOM"),
			TrackingInterval: v.GetDuration("TRACKING_INTERVAL"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
