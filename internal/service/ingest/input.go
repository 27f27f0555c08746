package ingest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
)

// EntryInput is one record to ingest.
type EntryInput struct {
	Content  domain.Payload
	Metadata domain.Payload
}

// Validate checks a single record.
func (in EntryInput) Validate() error {
	if len(in.Content) == 0 {
		return domain.NewValidationError("content", "content must not be empty")
	}
	return nil
}

// SingleInput is the input for Ingest.
type SingleInput struct {
	DatasetID uuid.UUID
	Entry     EntryInput
}

// Validate checks the single-ingest input.
func (in SingleInput) Validate() error {
	if in.DatasetID == uuid.Nil {
		return domain.NewValidationError("dataset_id", "dataset id is required")
	}
	return in.Entry.Validate()
}

// BulkInput is the input for BulkIngest.
type BulkInput struct {
	DatasetID uuid.UUID
	Entries   []EntryInput
}

// Validate checks the batch envelope; per-record problems are reported in
// the bulk result, not here.
func (in BulkInput) Validate() error {
	if in.DatasetID == uuid.Nil {
		return domain.NewValidationError("dataset_id", "dataset id is required")
	}
	if len(in.Entries) == 0 {
		return domain.NewValidationError("entries", "batch must contain at least one entry")
	}
	if len(in.Entries) > MaxBatchSize {
		return domain.NewValidationError("entries",
			fmt.Sprintf("batch exceeds %d entries", MaxBatchSize))
	}
	return nil
}

// SingleResult reports the outcome of a single ingest.
type SingleResult struct {
	Entry   *domain.DataEntry
	Created bool
}
