package repository

import (
	game_constants "Wordrush/constants/game"
	"Wordrush/models/postgres"
	"Wordrush/utils/apperrors"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*postgres.User, error) {
	var user postgres.User
	err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User")
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*postgres.User, error) {
	var user postgres.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User")
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &user, nil
}

// Create inserts the user with the default role, creating that role on
// first use.
func (r *UserRepository) Create(ctx context.Context, email, username, passwordHash string) (*postgres.User, error) {
	var user postgres.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&postgres.User{}).Where("email = ? OR username = ?", email, username).Count(&taken).Error; err != nil {
			return fmt.Errorf("error checking existing user: %w", err)
		}
		if taken > 0 {
			return apperrors.Conflict("Email or username already in use")
		}

		role := postgres.Role{Name: game_constants.DEFAULT_ROLE_NAME, Priority: game_constants.DEFAULT_ROLE_PRIORITY}
		if err := tx.Where(postgres.Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("error resolving default role: %w", err)
		}

		user = postgres.User{
			ID:           uuid.NewString(),
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
			RoleID:       role.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
