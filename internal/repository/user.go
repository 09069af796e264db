// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"agentdate/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByHandle(ctx context.Context, handle string) (*models.User, error)
	GetByXUserID(ctx context.Context, xUserID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.XHandle = strings.ToLower(user.XHandle)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewDatabaseError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewDatabaseError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("x_handle = ?", strings.ToLower(handle)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no user registered for the handle
		}
		return nil, models.NewDatabaseError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByXUserID(ctx context.Context, xUserID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("x_user_id = ?", xUserID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewDatabaseError(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewDatabaseError(err)
	}
	return nil
}
