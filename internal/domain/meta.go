package domain

import (
	"time"

	"github.com/google/uuid"
)

// Counter identifies one of the aggregate counters on dataset meta.
type Counter string

const (
	CounterViews     Counter = "views_count"
	CounterDownloads Counter = "downloads_count"
	CounterStars     Counter = "stars_count"
)

// Valid reports whether c names a known counter column.
func (c Counter) Valid() bool {
	switch c {
	case CounterViews, CounterDownloads, CounterStars:
		return true
	}
	return false
}

// DatasetMeta holds derived statistics and documentation for a dataset.
// One-to-one with Dataset; created lazily on the first counter-affecting
// operation. Counters never go negative.
type DatasetMeta struct {
	DatasetID         uuid.UUID
	StarsCount        int
	DownloadsCount    int
	ViewsCount        int
	SizeBytes         int64
	Readme            *string
	Description       *string
	LicenseType       *string
	LicenseText       *string
	LastUpdatedUserID *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DatasetStar records that a user starred a dataset.
// A user may star a given dataset at most once.
type DatasetStar struct {
	ID        int64
	DatasetID uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// DatasetContributor tracks a user who added entries to a dataset they do
// not own. ContributionCount only grows; timestamps bracket the activity.
type DatasetContributor struct {
	ID                  int64
	DatasetID           uuid.UUID
	UserID              uuid.UUID
	ContributionCount   int
	FirstContributionAt time.Time
	LastContributionAt  time.Time
}
