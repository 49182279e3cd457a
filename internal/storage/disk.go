package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pbxadmin/internal/config"
	"pbxadmin/internal/model"
)

// diskStore implements BlobStore by delegating byte storage to the upload
// gateway over HTTP. Only the gateway-issued filename is kept as the
// reference; resolution to a servable path follows the fixed
// /uploads/soundfiles/<key> convention.
type diskStore struct {
	baseURL string
	httpc   *http.Client
}

// NewDisk creates the local-disk blob store pointed at the gateway's base URL.
func NewDisk(cfg config.UploadConfig) BlobStore {
	return &diskStore{
		baseURL: strings.TrimRight(cfg.GatewayURL, "/"),
		httpc: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Put posts the content as a multipart body to the gateway's sound upload
// endpoint. The key is passed as the part filename so the gateway preserves
// its extension; the gateway issues the stored key.
func (d *diskStore) Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (model.StorageReference, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, key))
	if opt.ContentType != "" {
		hdr.Set("Content-Type", opt.ContentType)
	} else {
		hdr.Set("Content-Type", "application/octet-stream")
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return model.StorageReference{}, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return model.StorageReference{}, fmt.Errorf("buffer upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return model.StorageReference{}, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/upload-sound", &body)
	if err != nil {
		return model.StorageReference{}, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := d.httpc.Do(req)
	if err != nil {
		return model.StorageReference{}, fmt.Errorf("%w: gateway upload: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.StorageReference{}, fmt.Errorf("%w: gateway upload: %s", ErrUnavailable, gatewayError(resp.Body, resp.StatusCode))
	}

	var out struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.FileName == "" {
		return model.StorageReference{}, fmt.Errorf("%w: gateway upload: malformed response", ErrUnavailable)
	}

	return model.StorageReference{Kind: model.RefDisk, Value: out.FileName}, nil
}

// Delete calls the gateway's deletion endpoint with the stored key.
func (d *diskStore) Delete(ctx context.Context, ref model.StorageReference) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, d.baseURL+"/api/delete-sound/"+ref.Value, nil)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}

	resp, err := d.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("gateway delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway delete: %s", gatewayError(resp.Body, resp.StatusCode))
	}
	return nil
}

// gatewayError extracts the gateway's JSON error message, falling back to the
// status code.
func gatewayError(body io.Reader, status int) string {
	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&out); err == nil && out.Error != "" {
		return out.Error
	}
	return fmt.Sprintf("unexpected status %d", status)
}
