package upload

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pbxadmin/internal/http/middleware"
)

const (
	pathUploadDocument = "/upload-document"
	pathUploadSound    = "/api/upload-sound"
	pathDeleteSound    = "/api/delete-sound/"
)

// Register mounts the gateway routes on a Fiber app. This is the standalone
// listener mode; CORS and body limits are applied by the app the routes are
// mounted on.
func Register(app fiber.Router, svc *Service) {
	app.Post(pathUploadDocument, UploadDocument(svc))
	app.Post(pathUploadSound, UploadSound(svc))
	app.Delete(pathDeleteSound+":filename", DeleteSound(svc))
}

// Middleware returns a request-interception handler exposing the identical
// gateway logic inside another Fiber app (the development mode, where the API
// process also serves uploaded files). Requests that do not target a gateway
// endpoint pass through untouched.
func Middleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		matched := path == pathUploadDocument ||
			path == pathUploadSound ||
			strings.HasPrefix(path, pathDeleteSound)
		if !matched {
			return c.Next()
		}

		middleware.SetCORS(c)

		switch {
		case c.Method() == fiber.MethodOptions:
			return c.SendStatus(fiber.StatusOK)
		case c.Method() == fiber.MethodPost && path == pathUploadDocument:
			return handleUploadDocument(c, svc)
		case c.Method() == fiber.MethodPost && path == pathUploadSound:
			return handleUploadSound(c, svc)
		case c.Method() == fiber.MethodDelete && strings.HasPrefix(path, pathDeleteSound):
			return handleDeleteSound(c, svc, strings.TrimPrefix(path, pathDeleteSound))
		}
		return c.Next()
	}
}

// UploadDocument handles multipart document/image uploads (field: document).
func UploadDocument(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handleUploadDocument(c, svc)
	}
}

// UploadSound handles multipart sound file uploads (field: file).
func UploadSound(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handleUploadSound(c, svc)
	}
}

// DeleteSound removes a stored sound file by its storage key.
func DeleteSound(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handleDeleteSound(c, svc, c.Params("filename"))
	}
}

func handleUploadDocument(c *fiber.Ctx, svc *Service) error {
	fh, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no file uploaded"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open uploaded file"})
	}
	defer f.Close()

	res, err := svc.Save(CategoryDocImage, fh.Filename, contentType(fh.Header.Get("Content-Type")), fh.Size, f)
	if err != nil {
		if IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store file"})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"filename":     res.Key,
		"originalName": res.OriginalName,
		"path":         res.Path,
		"size":         res.Size,
	})
}

func handleUploadSound(c *fiber.Ctx, svc *Service) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no file uploaded"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open uploaded file"})
	}
	defer f.Close()

	res, err := svc.Save(CategoryAudio, fh.Filename, contentType(fh.Header.Get("Content-Type")), fh.Size, f)
	if err != nil {
		if IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store file"})
	}

	return c.JSON(fiber.Map{"fileName": res.Key})
}

func handleDeleteSound(c *fiber.Ctx, svc *Service, key string) error {
	if err := svc.RemoveSound(key); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "file deleted"})
}

func contentType(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
