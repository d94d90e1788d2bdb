package service

import (
	"context"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// IdentityView is the public projection of a user.
type IdentityView struct {
	ID            string
	Name          string
	Phone         string
	Reputation    float64
	RatingCount   int64
	PhoneVerified bool
	IDVerified    bool
}

// IdentityService exposes read-only user profiles.
type IdentityService struct {
	userRepo repository.UserRepository
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// Profile returns the identity view of a user.
func (s *IdentityService) Profile(ctx context.Context, userID string) (*IdentityView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return newIdentityView(user), nil
}

func newIdentityView(user *domain.User) *IdentityView {
	phone := user.Phone
	if canonical, err := domain.CanonicalPhone(phone); err == nil {
		phone = canonical
	}
	return &IdentityView{
		ID:            user.ID,
		Name:          user.Name,
		Phone:         phone,
		Reputation:    user.Reputation(),
		RatingCount:   user.RatingCount,
		PhoneVerified: user.PhoneVerified,
		IDVerified:    user.IDVerified,
	}
}
