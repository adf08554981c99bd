package repository

import (
	"context"
	"fmt"

	recommendationPkg "github.com/Keeferf/SYSC4806-AmazinBookstore/internal/recommendation"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormRecommendationUserStore implements the recommendation.UserStore interface
type gormRecommendationUserStore struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMRecommendationUserStore creates a user store over the users table
func NewGORMRecommendationUserStore(db *gorm.DB, log *logger.Logger) recommendationPkg.UserStore {
	return &gormRecommendationUserStore{
		db:     db,
		logger: log.WithComponent("gorm-recommendation-user-store"),
	}
}

func (r *gormRecommendationUserStore) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}

	// Registration order keeps nearest-neighbor ties deterministic
	err := r.db.WithContext(ctx).
		Table("users").
		Order("created_at ASC").Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Error("Database error listing user IDs: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return ids, nil
}

func (r *gormRecommendationUserStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).Table("users").Where("id = ?", userID).Count(&count).Error
	if err != nil {
		r.logger.Error("Database error checking user " + userID.String() + ": " + err.Error())
		return false, fmt.Errorf("database error: %w", err)
	}

	return count > 0, nil
}

// gormRecommendationPurchaseStore implements the recommendation.PurchaseStore interface
type gormRecommendationPurchaseStore struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMRecommendationPurchaseStore creates a purchase store over checkouts and their items
func NewGORMRecommendationPurchaseStore(db *gorm.DB, log *logger.Logger) recommendationPkg.PurchaseStore {
	return &gormRecommendationPurchaseStore{
		db:     db,
		logger: log.WithComponent("gorm-recommendation-purchase-store"),
	}
}

func (r *gormRecommendationPurchaseStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*recommendationPkg.Checkout, error) {
	checkouts := []*recommendationPkg.Checkout{}

	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Find(&checkouts).Error
	if err != nil {
		r.logger.Error("Database error loading checkouts for user " + userID.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return checkouts, nil
}

// gormRecommendationCatalogStore implements the recommendation.CatalogStore interface
type gormRecommendationCatalogStore struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMRecommendationCatalogStore creates a catalog store over the books table
func NewGORMRecommendationCatalogStore(db *gorm.DB, log *logger.Logger) recommendationPkg.CatalogStore {
	return &gormRecommendationCatalogStore{
		db:     db,
		logger: log.WithComponent("gorm-recommendation-catalog-store"),
	}
}

func (r *gormRecommendationCatalogStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recommendationPkg.Book, error) {
	books := []*recommendationPkg.Book{}
	if len(ids) == 0 {
		return books, nil
	}

	// IDs without a row are simply absent from the result
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("title ASC").
		Find(&books).Error
	if err != nil {
		r.logger.Error(fmt.Sprintf("Database error resolving %d books: %v", len(ids), err))
		return nil, fmt.Errorf("database error: %w", err)
	}

	return books, nil
}
