package memory

import (
	"context"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// UserRepository is the in-memory repository.UserRepository.
type UserRepository struct {
	s *Store
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	cell, ok := r.s.userCell(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	cell.mu.Lock()
	defer cell.mu.Unlock()
	user := cell.user
	return &user, nil
}

// GetByIDs retrieves several users. Unknown IDs are omitted.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if user, err := r.GetByID(ctx, id); err == nil {
			users[id] = user
		}
	}
	return users, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
