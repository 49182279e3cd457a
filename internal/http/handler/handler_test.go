package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pbxadmin/internal/model"
	"pbxadmin/internal/service"
	serviceMocks "pbxadmin/internal/service/mocks"
	"pbxadmin/internal/storage"
)

type formPart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func buildForm(t *testing.T, values map[string]string, files ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, fp := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.field, fp.filename))
		hdr.Set("Content-Type", fp.contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(fp.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListSounds(t *testing.T) {
	mockSvc := new(serviceMocks.MockSoundAssetService)
	app := fiber.New()
	app.Get("/sounds", ListSounds(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.SoundAssetListResult{
			Items: []model.SoundAsset{{ID: uuid.New().String(), Name: "Greeting"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/sounds?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.SoundAssetListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sounds?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})
}

func TestGetSound(t *testing.T) {
	mockSvc := new(serviceMocks.MockSoundAssetService)
	app := fiber.New()
	app.Get("/sounds/:id", GetSound(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.SoundAsset{ID: id}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/sounds/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sounds/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/sounds/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCreateSound(t *testing.T) {
	newApp := func(mockSvc *serviceMocks.MockSoundAssetService) *fiber.App {
		app := fiber.New()
		app.Post("/sounds", CreateSound(mockSvc))
		return app
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)

		mockSvc.On("Create", mock.Anything, mock.Anything, "greeting.wav", "audio/wav", int64(5), "Greeting", "queue-7").
			Return(&model.SoundAsset{ID: uuid.New().String(), Name: "Greeting"}, nil).Once()

		body, ct := buildForm(t,
			map[string]string{"name": "Greeting", "assigned_to": "queue-7"},
			formPart{field: "file", filename: "greeting.wav", contentType: "audio/wav", content: []byte("audio")},
		)
		req := httptest.NewRequest(http.MethodPost, "/sounds", body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)

		body, ct := buildForm(t, map[string]string{"name": "Greeting"})
		req := httptest.NewRequest(http.MethodPost, "/sounds", body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "FILE_REQUIRED", payload.Error.Code)
	})

	t.Run("disallowed file type never reaches the service", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)

		body, ct := buildForm(t, nil,
			formPart{field: "file", filename: "greeting.exe", contentType: "application/octet-stream", content: []byte("nope")},
		)
		req := httptest.NewRequest(http.MethodPost, "/sounds", body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage unavailable maps to 503", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)

		mockSvc.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("store asset: %w", storage.ErrUnavailable)).Once()

		body, ct := buildForm(t, nil,
			formPart{field: "file", filename: "greeting.wav", contentType: "audio/wav", content: []byte("audio")},
		)
		req := httptest.NewRequest(http.MethodPost, "/sounds", body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var payload errorPayload
		json.NewDecoder(resp.Body).Decode(&payload)
		assert.Equal(t, "STORAGE_UNAVAILABLE", payload.Error.Code)
	})
}

func TestUpdateSound(t *testing.T) {
	newApp := func(mockSvc *serviceMocks.MockSoundAssetService) *fiber.App {
		app := fiber.New()
		app.Put("/sounds/:id", UpdateSound(mockSvc))
		return app
	}

	t.Run("fields only routes to Update", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)
		id := uuid.New().String()

		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(f service.UpdateFields) bool {
			return f.Name != nil && *f.Name == "Renamed" &&
				f.Status != nil && *f.Status == model.StatusInactive &&
				f.AssignedTo == nil
		})).Return(&model.SoundAsset{ID: id, Name: "Renamed"}, nil).Once()

		body, ct := buildForm(t, map[string]string{"name": "Renamed", "status": "inactive"})
		req := httptest.NewRequest(http.MethodPut, "/sounds/"+id, body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
		mockSvc.AssertNotCalled(t, "UpdateFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("with file routes to UpdateFile", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)
		id := uuid.New().String()

		mockSvc.On("UpdateFile", mock.Anything, id, mock.Anything, "greeting-v2.wav", "audio/wav", int64(9), mock.Anything).
			Return(&model.SoundAsset{ID: id}, nil).Once()

		body, ct := buildForm(t, nil,
			formPart{field: "file", filename: "greeting-v2.wav", contentType: "audio/wav", content: []byte("new-audio")},
		)
		req := httptest.NewRequest(http.MethodPut, "/sounds/"+id, body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("replacement file is validated before the service runs", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)
		id := uuid.New().String()

		body, ct := buildForm(t, nil,
			formPart{field: "file", filename: "greeting.wav", contentType: "video/mp4", content: []byte("x")},
		)
		req := httptest.NewRequest(http.MethodPut, "/sounds/"+id, body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "UpdateFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)

		body, ct := buildForm(t, map[string]string{"name": "Renamed"})
		req := httptest.NewRequest(http.MethodPut, "/sounds/not-a-uuid", body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSoundAssetService)
		app := newApp(mockSvc)
		id := uuid.New().String()

		mockSvc.On("Update", mock.Anything, id, mock.Anything).Return(nil, service.ErrNotFound).Once()

		body, ct := buildForm(t, map[string]string{"name": "Renamed"})
		req := httptest.NewRequest(http.MethodPut, "/sounds/"+id, body)
		req.Header.Set("Content-Type", ct)

		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteSound(t *testing.T) {
	mockSvc := new(serviceMocks.MockSoundAssetService)
	app := fiber.New()
	app.Delete("/sounds/:id", DeleteSound(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/sounds/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/sounds/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/sounds/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
