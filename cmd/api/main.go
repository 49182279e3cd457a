package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"pbxadmin/internal/config"
	"pbxadmin/internal/database"
	"pbxadmin/internal/database/migration"
	handlers "pbxadmin/internal/http/handler"
	"pbxadmin/internal/http/middleware"
	tracing "pbxadmin/internal/otel"
	"pbxadmin/internal/repository/postgres"
	"pbxadmin/internal/service"
	"pbxadmin/internal/storage"
	"pbxadmin/internal/upload"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	ctx := context.Background()

	// Initialize OTLP tracing (degrades to noop when no collector is configured)
	shutdownTracing, err := tracing.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Select the blob storage variant once at startup (bucket, disk or inline)
	store, err := storage.FromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to initialize blob storage: %v", err)
	}

	// Initialize repositories and services
	soundRepo := postgres.NewSoundAssetPostgres(db)
	soundSvc := service.NewSoundAssetService(store, soundRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    upload.MaxBodyBytes,
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMW.Handler())

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	// Dev mode: run the upload gateway inside this process and serve uploads
	if cfg.EmbedUploadGateway {
		upSvc := upload.NewService(cfg.Upload)
		app.Use(upload.Middleware(upSvc))
		app.Static(cfg.Upload.PublicBase, upSvc.Root())
	}

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, soundSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
