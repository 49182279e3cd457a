package handler

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pbxadmin/internal/model"
	"pbxadmin/internal/service"
	"pbxadmin/internal/storage"
	"pbxadmin/internal/upload"
)

// HealthCheck verifies database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListSounds returns sound assets with limit & offset pagination.
func ListSounds(svc service.SoundAssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetSound returns a single sound asset by ID.
func GetSound(svc service.SoundAssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// CreateSound uploads a sound file (multipart field: file) and creates its
// asset record. The audio allow-list is enforced before the orchestrator runs
// so a rejected file causes no storage or metadata side effects.
func CreateSound(svc service.SoundAssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		ct := fileContentType(fh)
		if err := upload.Validate(upload.CategoryAudio, fh.Filename, ct, fh.Size); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILE", err.Error())
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		a, err := svc.Create(c.UserContext(), f, fh.Filename, ct, fh.Size,
			c.FormValue("name"), c.FormValue("assigned_to"))
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// UpdateSound edits an asset's fields and optionally replaces its file. The
// request is multipart; a present file part routes through the file-replace
// path, otherwise only metadata fields change.
func UpdateSound(svc service.SoundAssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		}
		fields := updateFieldsFromForm(form)

		fh := firstFile(form, "file")
		if fh == nil {
			a, err := svc.Update(c.UserContext(), id, fields)
			if err != nil {
				return mapServiceError(c, err)
			}
			return c.JSON(a)
		}

		ct := fileContentType(fh)
		if err := upload.Validate(upload.CategoryAudio, fh.Filename, ct, fh.Size); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILE", err.Error())
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		a, err := svc.UpdateFile(c.UserContext(), id, f, fh.Filename, ct, fh.Size, fields)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// DeleteSound removes an asset record, best-effort reclaiming its blob.
func DeleteSound(svc service.SoundAssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "sound asset not found")
	case errors.Is(err, service.ErrNameRequired):
		return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name must not be empty")
	case errors.Is(err, service.ErrInvalidStatus):
		return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "status must be active or inactive")
	case errors.Is(err, storage.ErrUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "asset storage unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func updateFieldsFromForm(form *multipart.Form) service.UpdateFields {
	var fields service.UpdateFields
	if v, ok := form.Value["name"]; ok && len(v) > 0 {
		fields.Name = &v[0]
	}
	if v, ok := form.Value["status"]; ok && len(v) > 0 {
		st := model.AssetStatus(v[0])
		fields.Status = &st
	}
	if v, ok := form.Value["assigned_to"]; ok && len(v) > 0 {
		fields.AssignedTo = &v[0]
	}
	return fields
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if fhs, ok := form.File[field]; ok && len(fhs) > 0 {
		return fhs[0]
	}
	return nil
}

func fileContentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
