package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Search(ctx context.Context, query string, excludeUserID uint, offset, limit int) ([]models.User, int64, error)
	GetPublicInfoByIDs(ctx context.Context, userIDs []uint) (map[uint]*models.UserPublicInfo, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record in the database.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Create(user).Error
	})
}

// GetByID retrieves a user by their ID.
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := withRetry(ctx, func() error {
		return r.db.WithContext(ctx).First(&user, id).Error
	})
	if err != nil {
		return nil, err // includes gorm.ErrRecordNotFound
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user with the given ID exists.
func (r *gormUserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Search performs a case-insensitive substring match over email, first name
// and last name, excluding the searching user, with a total count for
// pagination. Ordering by id keeps pages stable between calls.
func (r *gormUserRepository) Search(ctx context.Context, query string, excludeUserID uint, offset, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	searchTerm := "%" + strings.ToLower(query) + "%"
	base := r.db.WithContext(ctx).Model(&models.User{}).
		Where("(LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?) AND id <> ?",
			searchTerm, searchTerm, searchTerm, excludeUserID)

	err := withRetry(ctx, func() error {
		if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return err
		}
		return base.Session(&gorm.Session{}).
			Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return users, 0, nil
		}
		return nil, 0, err
	}
	return users, total, nil
}

// GetPublicInfoByIDs retrieves public profile info for a set of user IDs,
// keyed by ID for projection joins.
func (r *gormUserRepository) GetPublicInfoByIDs(ctx context.Context, userIDs []uint) (map[uint]*models.UserPublicInfo, error) {
	result := make(map[uint]*models.UserPublicInfo, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var infos []models.UserPublicInfo
	err := withRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Model(&models.User{}).
			Select("id", "email", "first_name", "last_name").
			Where("id IN ?", userIDs).
			Find(&infos).Error
	})
	if err != nil {
		return nil, err
	}

	for i := range infos {
		result[infos[i].ID] = &infos[i]
	}
	return result, nil
}
