package domain

import (
	"time"

	"github.com/google/uuid"
)

// Term is a crowd-sourced terminology entry. Terms are soft-deleted via
// DeletedAt (unlike datasets, which cascade-delete); soft-deleted terms
// stop counting toward their author's reputation.
type Term struct {
	ID         uuid.UUID
	Text       string
	Definition *string
	CreatorID  uuid.UUID
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsDeleted returns true if the term has been soft-deleted.
func (t *Term) IsDeleted() bool {
	return t.DeletedAt != nil
}

// PostType distinguishes discussion threads from long-form articles.
type PostType string

const (
	PostTypeDiscussion PostType = "discussion"
	PostTypeArticle    PostType = "article"
)

// Post is a discussion or article. Only the fields feeding reputation
// (ownership, type, likes) are modeled here.
type Post struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Type      PostType
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
