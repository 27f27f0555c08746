package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ValidateToken checks an access token and returns the user ID and role
// encoded in it. Used by the HTTP auth middleware.
func (s *Service) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	userID, role, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("auth.ValidateToken: %w", err)
	}
	return userID, role, nil
}
