package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/nkoz18/photography-blog-sub000/internal/cache"
	"github.com/nkoz18/photography-blog-sub000/internal/config"
	"github.com/nkoz18/photography-blog-sub000/internal/database"
	"github.com/nkoz18/photography-blog-sub000/internal/handlers"
	"github.com/nkoz18/photography-blog-sub000/internal/logger"
	"github.com/nkoz18/photography-blog-sub000/internal/middleware"
	"github.com/nkoz18/photography-blog-sub000/internal/ratelimit"
	"github.com/nkoz18/photography-blog-sub000/internal/services"
	"github.com/nkoz18/photography-blog-sub000/internal/telemetry"
	"github.com/nkoz18/photography-blog-sub000/pkg/sms"
)

const serviceName = "photoblog-api"

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if err := logger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry tracer
	tracerShutdown, err := telemetry.InitTracer(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		log.Printf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	go database.StartConnectionPoolMetricsCollector(ctx, db.DB, 30*time.Second)

	// Messaging gateway
	gateway, err := sms.NewSNSGateway(ctx, cfg.AWSRegion, cfg.SMSSenderID)
	if err != nil {
		log.Fatalf("Failed to initialize SMS gateway: %v", err)
	}

	// Shared resilience state
	memoryCache := cache.New()
	reportLimiter := ratelimit.New(cfg.ReportRateWindow, cfg.ReportRateMax)
	reportLimiter.StartSweep(ctx, 5*time.Minute)

	// Stores and services
	geoStore := database.NewGeoCacheStore(db)
	encounterStore := database.NewEncounterStore(db)
	contactStore := database.NewContactStore(db)
	reportStore := database.NewReportStore(db)

	geocoder := services.NewGeocoder(cfg, geoStore)
	places := services.NewPlaces(cfg, memoryCache)
	instagram := services.NewInstagram(cfg, memoryCache)
	notifier := services.NewNotifier(gateway, contactStore, cfg.SiteBaseURL)
	encounters := services.NewEncounterService(encounterStore, contactStore, geocoder, notifier, cfg.NotifyOnReadyEdit)
	reports := services.NewReportService(reportStore, reportLimiter)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Photography Blog API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}))
	app.Use(telemetry.New(telemetry.Config{
		ServiceName: serviceName,
	}))
	app.Use(middleware.PrometheusMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, PATCH, OPTIONS",
		AllowHeaders: "Accept, Authorization, Content-Type, Origin, User-Agent, X-Requested-With",
	}))

	setupRoutes(app, db, cfg, places, instagram, encounters, reports)

	port := cfg.ServerPort
	if port == "" {
		port = "3000"
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down server...")
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(
	app *fiber.App,
	db *database.DB,
	cfg *config.Config,
	places *services.Places,
	instagram *services.Instagram,
	encounters *services.EncounterService,
	reports *services.ReportService,
) {
	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/v1/healthz", handlers.HealthCheck)
	app.Get("/v1/readiness", handlers.ReadinessCheck(db))
	app.Get("/v1/liveness", handlers.LivenessCheck)

	// Prometheus scrape endpoint
	app.Get("/metrics", middleware.PrometheusHandler())

	// API v1 group
	v1 := app.Group("/v1")

	handlers.SetupPlacesRoutes(v1.Group("/places"), places)
	handlers.SetupInstagramRoutes(v1.Group("/instagram"), instagram)
	handlers.SetupEncounterRoutes(v1.Group("/photo-encounters"), encounters, cfg)
	handlers.SetupContactRoutes(v1.Group("/contacts"), encounters)
	handlers.SetupReportRoutes(v1, reports, cfg)
}
