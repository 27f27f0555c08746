package entry

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Filter contains filtering/pagination parameters for entry listings.
type Filter struct {
	DatasetID   *uuid.UUID
	DatasetType *string
	CreatorID   *uuid.UUID
	Limit       int
	Offset      int
}

func (f *Filter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

func (f *Filter) conditions() []sq.Sqlizer {
	var conds []sq.Sqlizer
	if f.DatasetID != nil {
		conds = append(conds, sq.Eq{"e.dataset_id": *f.DatasetID})
	}
	if f.DatasetType != nil {
		conds = append(conds, sq.Eq{"d.type": *f.DatasetType})
	}
	if f.CreatorID != nil {
		conds = append(conds, sq.Eq{"e.creator_id": *f.CreatorID})
	}
	return conds
}
