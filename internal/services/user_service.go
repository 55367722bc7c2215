package services

import (
	"context"
	"fmt"

	"social-go/internal/models"
	"social-go/internal/pagination"
	"social-go/internal/storage"
)

// UserService defines user profile and directory operations.
type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	SearchUsers(ctx context.Context, query string, currentUserID uint, page pagination.Params) (*pagination.Page[models.UserPublicInfo], error)
}

type userService struct {
	userRepo storage.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetProfile fetches a user account by ID.
func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// SearchUsers matches the query against email, first name and last name,
// excluding the searching user, and returns one page of public profiles.
func (s *userService) SearchUsers(ctx context.Context, query string, currentUserID uint, page pagination.Params) (*pagination.Page[models.UserPublicInfo], error) {
	users, total, err := s.userRepo.Search(ctx, query, currentUserID, page.Offset(), page.Limit())
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	results := make([]models.UserPublicInfo, 0, len(users))
	for i := range users {
		results = append(results, *users[i].PublicInfo())
	}
	return pagination.NewPage(results, total, page), nil
}
