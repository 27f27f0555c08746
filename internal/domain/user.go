package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's authorization role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account. CreatedAt doubles as the deterministic
// tie-break for rank: of two users with equal score, the earlier
// registration ranks higher.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     *string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserMeta is the extended profile with the cached reputation score.
// Score is an optimization only; it must always be re-derivable from the
// contribution counts and is refreshed on every profile read.
type UserMeta struct {
	ID          int64
	UserID      uuid.UUID
	Nickname    *string
	Bio         *string
	GithubURL   *string
	TelegramURL *string
	WebsiteURL  *string
	Score       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
