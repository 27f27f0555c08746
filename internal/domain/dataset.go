package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is a named collection of data entries owned by a user.
// Deleting a dataset cascades to its entries, meta, stars, and contributors.
type Dataset struct {
	ID          uuid.UUID
	Name        string
	Type        string
	Description *string
	IsPublic    bool
	CreatorID   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// EntryCount is populated by listing queries; not a stored column.
	EntryCount int
}

// DatasetUpdate is a partial dataset update; nil fields are left unchanged.
type DatasetUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

// DataEntry is one content-addressed structured item inside a dataset.
// HashKey is unique system-wide and is a pure function of
// (dataset id, canonical payload); see Fingerprint.
type DataEntry struct {
	ID        uuid.UUID
	DatasetID uuid.UUID
	Content   Payload
	Metadata  Payload
	HashKey   string
	CreatorID uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BulkResult reports the outcome of a bulk entry operation.
// Created + Skipped + Failed always equals Total.
type BulkResult struct {
	Total   int
	Created int
	Skipped int
	Failed  int
	Errors  []string
}
