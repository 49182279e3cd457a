package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pbxadmin/internal/model"
	"pbxadmin/internal/repository"
)

// SoundAssetPostgres is a PostgreSQL implementation of
// repository.SoundAssetRepository. It uses database/sql with parameterized
// queries and contains no business logic.
type SoundAssetPostgres struct {
	db *sql.DB
}

// NewSoundAssetPostgres creates a new SoundAssetPostgres repository.
func NewSoundAssetPostgres(db *sql.DB) *SoundAssetPostgres {
	return &SoundAssetPostgres{db: db}
}

var _ repository.SoundAssetRepository = (*SoundAssetPostgres)(nil)

// IsNoRowsError reports whether err means the requested row does not exist.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Create inserts a new asset row. Timestamps and id come from column defaults.
func (r *SoundAssetPostgres) Create(ctx context.Context, a *model.SoundAsset) (*model.SoundAsset, error) {
	const q = `
		INSERT INTO sound_assets (name, ref_kind, ref_value, status, assigned_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, ref_kind, ref_value, status, assigned_to, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		a.Name,
		string(a.Reference.Kind),
		a.Reference.Value,
		string(a.Status),
		a.AssignedTo,
	)
	return scanAsset(row)
}

// FindByID fetches a single asset by its ID.
func (r *SoundAssetPostgres) FindByID(ctx context.Context, id string) (*model.SoundAsset, error) {
	const q = `
		SELECT id, name, ref_kind, ref_value, status, assigned_to, created_at, updated_at
		FROM sound_assets
		WHERE id = $1
	`
	return scanAsset(r.db.QueryRowContext(ctx, q, id))
}

// List returns assets using LIMIT/OFFSET pagination and a total count.
func (r *SoundAssetPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.SoundAsset], error) {
	const qCount = `SELECT COUNT(*) FROM sound_assets`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, name, ref_kind, ref_value, status, assigned_to, created_at, updated_at
		FROM sound_assets
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SoundAsset, 0)
	for rows.Next() {
		var a model.SoundAsset
		var kind, status string
		if err := rows.Scan(
			&a.ID,
			&a.Name,
			&kind,
			&a.Reference.Value,
			&status,
			&a.AssignedTo,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.Reference.Kind = model.ReferenceKind(kind)
		a.Status = model.AssetStatus(status)
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.SoundAsset]{
		Items: items,
		Total: total,
	}, nil
}

// Update persists the mutable fields and the storage reference of an existing
// row. updated_at is refreshed server-side.
func (r *SoundAssetPostgres) Update(ctx context.Context, a *model.SoundAsset) (*model.SoundAsset, error) {
	const q = `
		UPDATE sound_assets
		SET name = $2, ref_kind = $3, ref_value = $4, status = $5, assigned_to = $6, updated_at = now()
		WHERE id = $1
		RETURNING id, name, ref_kind, ref_value, status, assigned_to, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Name,
		string(a.Reference.Kind),
		a.Reference.Value,
		string(a.Status),
		a.AssignedTo,
	)
	return scanAsset(row)
}

// Delete removes an asset by ID. It does not return an error if the row does
// not exist.
func (r *SoundAssetPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM sound_assets WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

func scanAsset(row *sql.Row) (*model.SoundAsset, error) {
	var a model.SoundAsset
	var kind, status string
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&kind,
		&a.Reference.Value,
		&status,
		&a.AssignedTo,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Reference.Kind = model.ReferenceKind(kind)
	a.Status = model.AssetStatus(status)
	return &a, nil
}
