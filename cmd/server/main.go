package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mybus-app/service-transit/internal/application"
	"github.com/mybus-app/service-transit/internal/client"
	"github.com/mybus-app/service-transit/internal/config"
	"github.com/mybus-app/service-transit/internal/domain/geo"
	"github.com/mybus-app/service-transit/internal/domain/mapview"
	"github.com/mybus-app/service-transit/internal/domain/marker"
	"github.com/mybus-app/service-transit/internal/domain/route"
	transitEvents "github.com/mybus-app/service-transit/internal/events"
	"github.com/mybus-app/service-transit/internal/handler"
	"github.com/mybus-app/service-transit/internal/platform/database"
	"github.com/mybus-app/service-transit/internal/platform/health"
	"github.com/mybus-app/service-transit/internal/platform/kafka"
	"github.com/mybus-app/service-transit/internal/platform/logger"
	"github.com/mybus-app/service-transit/internal/platform/middleware"
	"github.com/mybus-app/service-transit/internal/repository"
)

const serviceName = "service-transit"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-transit",
		zap.String("port", cfg.Port),
		zap.String("map_store", cfg.Map.Store),
		zap.String("location_source", cfg.Location.Source),
		zap.String("vehicles_format", cfg.Upstream.VehiclesFormat),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checkers := map[string]health.Checker{}

	// Map registry storage
	var (
		mapRepo    mapview.MapRepository
		markerRepo marker.MarkerRepository
	)
	if cfg.Map.Store == "postgres" {
		db := connectDatabase(cfg, log)
		mapRepo = repository.NewGormMapRepository(db)
		markerRepo = repository.NewGormMarkerRepository(db)
		checkers["database"] = health.CheckerFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	} else {
		mapRepo = repository.NewMemoryMapRepository()
		markerRepo = repository.NewMemoryMarkerRepository()
	}

	// Marker event fan-out: websocket clients, plus Kafka when brokers are configured
	liveHub := handler.NewLiveHub(log)
	publishers := transitEvents.MultiPublisher{liveHub}
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publishers = append(publishers, transitEvents.NewKafkaMarkerPublisher(producer, log))
	}

	// Geolocation source
	var (
		geolocator application.Geolocator
		readiness  application.Readiness
	)
	switch cfg.Location.Source {
	case "device":
		device := application.NewDeviceGeolocator()
		geolocator, readiness = device, device

		groupID := cfg.KafkaConfig.GroupPrefix + "transit-service"
		locationConsumer := transitEvents.NewDeviceLocationConsumer(cfg.KafkaConfig.Brokers, groupID, device, log)
		defer func() { _ = locationConsumer.Close() }()

		go func() {
			log.Info("starting device location consumer")
			if err := locationConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("device location consumer error", zap.Error(err))
			}
		}()
	default:
		static := application.NewStaticGeolocator(geo.Coordinate{
			Latitude:  cfg.Location.DefaultLatitude,
			Longitude: cfg.Location.DefaultLongitude,
		})
		geolocator, readiness = static, static
	}

	// Upstream clients
	restBus := client.NewRestBusClient(cfg.Upstream.PredictionsBaseURL, cfg.Upstream.Agency, cfg.Upstream.HTTPTimeout)
	var vehicleSource application.VehicleSource = restBus
	if cfg.Upstream.VehiclesFormat == "gtfsrt" {
		vehicleSource = client.NewGtfsRtVehicleSource(cfg.Upstream.VehiclesGTFSRTURL, cfg.Upstream.HTTPTimeout)
	}
	fileFetcher := client.NewFileFetcher(cfg.Upstream.StaticBaseDir, cfg.Upstream.HTTPTimeout)

	// Initialize application services
	locationService := application.NewLocationService(geolocator, readiness, cfg.Location.Timeout, log)
	fileService := application.NewReadFileService(fileFetcher, cfg.Upstream.StopsLocation, cfg.Upstream.StopsCacheTTL, log)
	vehiclesService := application.NewVehiclesService(vehicleSource, log)
	mapService := application.NewMapService(mapRepo, markerRepo, vehiclesService, publishers, cfg.Map.DefaultZoom, log)
	routeService := application.NewRouteService(locationService, restBus, fileService, mapService, route.NewCache(), log)
	tracker := application.NewVehicleTracker(mapService, cfg.Map.TrackingInterval, log)

	go tracker.Run(ctx)

	// Initialize HTTP handlers
	locationHandler := handler.NewLocationHandler(locationService)
	routeHandler := handler.NewRouteHandler(routeService, vehiclesService)
	mapHandler := handler.NewMapHandler(mapService, routeService, locationService, tracker)
	liveHandler := handler.NewLiveHandler(liveHub, mapService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(serviceName, checkers)
	healthHandler.RegisterRoutes(router)

	// Register routes
	locationHandler.RegisterRoutes(&router.RouterGroup)
	routeHandler.RegisterRoutes(&router.RouterGroup)
	mapHandler.RegisterRoutes(&router.RouterGroup)
	liveHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-transit...")

	// Stop the consumer and the tracker
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-transit stopped")
}

func connectDatabase(cfg *config.ServiceConfig, log *zap.Logger) *gorm.DB {
	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(&repository.MapModel{}, &repository.MarkerModel{}); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")
	return db
}
