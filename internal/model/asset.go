package model

import "time"

// AssetStatus is the lifecycle status of a sound asset as shown in the dashboard.
type AssetStatus string

const (
	StatusActive   AssetStatus = "active"
	StatusInactive AssetStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s AssetStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ReferenceKind identifies which storage backend variant owns a blob reference.
// The kind is fixed when the record is created and never changes afterwards.
type ReferenceKind string

const (
	// RefBucket means Value is a public object URL in a remote bucket.
	RefBucket ReferenceKind = "bucket"
	// RefDisk means Value is a bare filename resolved against the upload
	// gateway's soundfiles directory.
	RefDisk ReferenceKind = "disk"
	// RefInline means Value is a self-contained data URI; there is no blob
	// outside the metadata row.
	RefInline ReferenceKind = "inline"
)

// StorageReference is the backend-specific pointer a record uses to locate its
// blob. Exactly one shape of Value is populated per record, determined by Kind.
type StorageReference struct {
	Kind  ReferenceKind `json:"kind"`
	Value string        `json:"value"`
}

// IsZero reports whether the reference is unset.
func (r StorageReference) IsZero() bool {
	return r.Kind == "" && r.Value == ""
}

// SoundAsset represents one manageable voice resource (a sound file the PBX
// plays). This is a pure domain model with no database-specific dependencies
// or tags; it can be used across layers without coupling to persistence.
type SoundAsset struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Reference  StorageReference `json:"reference"`
	Status     AssetStatus      `json:"status"`
	AssignedTo string           `json:"assigned_to"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
