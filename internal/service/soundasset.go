package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"pbxadmin/internal/model"
	"pbxadmin/internal/repository"
	"pbxadmin/internal/storage"
	"pbxadmin/internal/upload"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrNotFound      = errors.New("sound asset not found")
	ErrReaderNil     = errors.New("reader is nil")
	ErrNameRequired  = errors.New("name is required")
	ErrInvalidStatus = errors.New("invalid status")
)

// SoundAssetListResult is the service-level DTO for paginated assets.
type SoundAssetListResult struct {
	Items []model.SoundAsset `json:"data"`
	Total int                `json:"total"`
}

// UpdateFields carries the optional metadata-only mutations of an asset.
// Nil fields are left unchanged.
type UpdateFields struct {
	Name       *string
	Status     *model.AssetStatus
	AssignedTo *string
}

// SoundAssetService is the asset lifecycle orchestrator. It coordinates blob
// storage calls with metadata rows so a record's storage reference always
// resolves to retrievable bytes: a new blob is durably referenced before the
// old one is reclaimed, and reclamation failures are logged rather than
// surfaced. Records are created only through Create, never metadata-only.
//
// Concurrent updates to the same record are not serialized; the metadata row
// races last-write-wins and an intermediate blob may be orphaned. Accepted
// for operator-console usage.
type SoundAssetService interface {
	// Create stores the file via the active blob backend, then inserts the
	// metadata row carrying the resulting reference. A backend failure aborts
	// before any metadata write; a metadata failure after a successful store
	// triggers a best-effort delete of the fresh blob.
	Create(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, name, assignedTo string) (*model.SoundAsset, error)

	// Get returns a single asset by its ID.
	Get(ctx context.Context, id string) (*model.SoundAsset, error)

	// List returns assets using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*SoundAssetListResult, error)

	// Update applies metadata-only field edits. No backend interaction.
	Update(ctx context.Context, id string, fields UpdateFields) (*model.SoundAsset, error)

	// UpdateFile replaces the asset's file and applies field edits. The prior
	// blob is reclaimed only after the row points at the new one.
	UpdateFile(ctx context.Context, id string, r io.Reader, originalFilename, contentType string, size int64, fields UpdateFields) (*model.SoundAsset, error)

	// Delete best-effort-reclaims the blob and removes the metadata row. Row
	// deletion proceeds even when reclamation fails.
	Delete(ctx context.Context, id string) error
}

// soundAssetService is a concrete implementation of SoundAssetService.
type soundAssetService struct {
	store storage.BlobStore
	repo  repository.SoundAssetRepository
}

// NewSoundAssetService constructs a new SoundAssetService.
func NewSoundAssetService(store storage.BlobStore, repo repository.SoundAssetRepository) SoundAssetService {
	return &soundAssetService{store: store, repo: repo}
}

func (s *soundAssetService) Create(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, name, assignedTo string) (*model.SoundAsset, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if name == "" {
		name = originalFilename
	}
	if name == "" {
		return nil, ErrNameRequired
	}

	key := upload.GenerateKey(originalFilename)
	ref, err := s.store.Put(ctx, key, r, storage.PutOptions{Size: size, ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("store asset: %w", err)
	}

	asset := &model.SoundAsset{
		Name:       name,
		Reference:  ref,
		Status:     model.StatusActive,
		AssignedTo: assignedTo,
	}
	stored, err := s.repo.Create(ctx, asset)
	if err != nil {
		// The blob has no row pointing at it yet; reclaim it so the failed
		// create leaves nothing behind.
		if delErr := s.store.Delete(ctx, ref); delErr != nil {
			s.logReclaimFailure("create_rollback", ref, delErr)
		}
		return nil, fmt.Errorf("save metadata: %w", err)
	}
	return stored, nil
}

// Get returns an asset by ID.
func (s *soundAssetService) Get(ctx context.Context, id string) (*model.SoundAsset, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns paginated assets without exposing repository types.
func (s *soundAssetService) List(ctx context.Context, limit, offset int) (*SoundAssetListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &SoundAssetListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *soundAssetService) Update(ctx context.Context, id string, fields UpdateFields) (*model.SoundAsset, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyFields(cur, fields); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, cur)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *soundAssetService) UpdateFile(ctx context.Context, id string, r io.Reader, originalFilename, contentType string, size int64, fields UpdateFields) (*model.SoundAsset, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldRef := cur.Reference

	key := upload.GenerateKey(originalFilename)
	newRef, err := s.store.Put(ctx, key, r, storage.PutOptions{Size: size, ContentType: contentType})
	if err != nil {
		// Record still points at the original, still-valid blob.
		return nil, fmt.Errorf("store asset: %w", err)
	}

	if err := applyFields(cur, fields); err != nil {
		if delErr := s.store.Delete(ctx, newRef); delErr != nil {
			s.logReclaimFailure("update_rollback", newRef, delErr)
		}
		return nil, err
	}

	cur.Reference = newRef
	updated, err := s.repo.Update(ctx, cur)
	if err != nil {
		// The row was never switched over; reclaim the new blob and leave the
		// record on the old one.
		if delErr := s.store.Delete(ctx, newRef); delErr != nil {
			s.logReclaimFailure("update_rollback", newRef, delErr)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save metadata: %w", err)
	}

	// Only now, with the new reference durable, reclaim the prior blob.
	if delErr := s.store.Delete(ctx, oldRef); delErr != nil {
		s.logReclaimFailure("replace_old_blob", oldRef, delErr)
	}
	return updated, nil
}

func (s *soundAssetService) Delete(ctx context.Context, id string) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	// Best-effort reclamation; metadata deletion always proceeds so no
	// unreachable dashboard entry is left behind.
	if delErr := s.store.Delete(ctx, cur.Reference); delErr != nil {
		s.logReclaimFailure("delete_asset", cur.Reference, delErr)
	}
	return s.repo.Delete(ctx, id)
}

func applyFields(a *model.SoundAsset, fields UpdateFields) error {
	if fields.Name != nil {
		if *fields.Name == "" {
			return ErrNameRequired
		}
		a.Name = *fields.Name
	}
	if fields.Status != nil {
		if !fields.Status.Valid() {
			return ErrInvalidStatus
		}
		a.Status = *fields.Status
	}
	if fields.AssignedTo != nil {
		a.AssignedTo = *fields.AssignedTo
	}
	return nil
}

func (s *soundAssetService) logReclaimFailure(op string, ref model.StorageReference, err error) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     "error",
		"component": "soundasset_service",
		"event":     "blob_reclaim_failed",
		"operation": op,
		"ref_kind":  string(ref.Kind),
		"error":     err.Error(),
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
