package dataset

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Filter contains filtering/pagination parameters for dataset listings.
type Filter struct {
	CreatorID *uuid.UUID
	Type      *string
	IsPublic  *bool
	Search    *string
	Limit     int
	Offset    int
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
	if f.CreatorID != nil {
		conds = append(conds, sq.Eq{"d.creator_id": *f.CreatorID})
	}
	if f.Type != nil {
		conds = append(conds, sq.Eq{"d.type": *f.Type})
	}
	if f.IsPublic != nil {
		conds = append(conds, sq.Eq{"d.is_public": *f.IsPublic})
	}
	if f.Search != nil && *f.Search != "" {
		conds = append(conds, sq.ILike{"d.name": "%" + *f.Search + "%"})
	}
	return conds
}
