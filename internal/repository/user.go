package repository

import (
	"context"

	"carpool/internal/domain"
)

// UserRepository reads the identity projection of users.
type UserRepository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIDs retrieves several users at once. Unknown IDs are omitted.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}
