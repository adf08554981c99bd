package repository

import (
	"context"
	"errors"
	"fmt"

	userPkg "github.com/Keeferf/SYSC4806-AmazinBookstore/internal/user"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormUserRepository implements the user.Repository interface
type gormUserRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMUserRepository creates a new GORM-based user repository
func NewGORMUserRepository(db *gorm.DB, log *logger.Logger) userPkg.Repository {
	return &gormUserRepository{
		db:     db,
		logger: log.WithComponent("gorm-user-repository"),
	}
}

func (r *gormUserRepository) Create(ctx context.Context, user *userPkg.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return userPkg.ErrUserExists
		}
		r.logger.Error("Failed to create user " + user.Username + ": " + err.Error())
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("User created: " + user.ID.String() + " (" + user.Username + ")")

	return nil
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*userPkg.User, error) {
	return r.findOne(ctx, "username "+username, "LOWER(username) = LOWER(?)", username)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*userPkg.User, error) {
	return r.findOne(ctx, "email "+email, "LOWER(email) = LOWER(?)", email)
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userPkg.User, error) {
	return r.findOne(ctx, "ID "+id.String(), "id = ?", id)
}

func (r *gormUserRepository) findOne(ctx context.Context, label, query string, args ...any) (*userPkg.User, error) {
	var user userPkg.User

	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debug("User not found by " + label)
			return nil, userPkg.ErrUserNotFound
		}

		r.logger.Error("Database error finding user by " + label + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}
