package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"

	"pbxadmin/internal/config"
	"pbxadmin/internal/http/middleware"
	"pbxadmin/internal/upload"
)

// The standalone upload gateway: accepts multipart uploads for both asset
// classes, serves the uploaded files statically, and exposes the deletion
// endpoint the local-disk storage backend delegates to.
func main() {
	cfg := config.Load()

	svc := upload.NewService(cfg.Upload)

	app := fiber.New(fiber.Config{
		// Oversized bodies are rejected here, before any handler runs; the
		// tighter per-category limits are enforced by the upload service.
		BodyLimit: upload.MaxBodyBytes,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	upload.Register(app, svc)

	// Serve stored assets under the fixed public path convention
	app.Static(cfg.Upload.PublicBase, svc.Root())

	addr := ":" + cfg.Upload.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start upload gateway: %v", err)
	}
}
