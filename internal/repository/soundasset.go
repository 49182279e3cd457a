package repository

import (
	"context"

	"pbxadmin/internal/model"
)

// SoundAssetRepository defines data access for sound asset records using SQL
// queries only. No business logic here, strictly persistence operations.
// Timestamps are server-assigned: created_at/updated_at default to now() on
// insert and updated_at is refreshed by every update.
type SoundAssetRepository interface {
	// Create inserts a new asset record and returns the stored row including
	// values assigned by the database (id, timestamps).
	Create(ctx context.Context, a *model.SoundAsset) (*model.SoundAsset, error)

	// FindByID returns an asset by its ID.
	FindByID(ctx context.Context, id string) (*model.SoundAsset, error)

	// List returns a paginated list of assets and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.SoundAsset], error)

	// Update persists name, status, assigned_to and the storage reference of
	// an existing row, refreshing updated_at server-side. Returns the stored
	// row.
	Update(ctx context.Context, a *model.SoundAsset) (*model.SoundAsset, error)

	// Delete removes an asset by ID. It returns nil if the row was deleted or
	// did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
