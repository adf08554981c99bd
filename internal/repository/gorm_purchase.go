package repository

import (
	"context"
	"fmt"

	purchasePkg "github.com/Keeferf/SYSC4806-AmazinBookstore/internal/purchase"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormPurchaseRepository implements the purchase.Repository interface
type gormPurchaseRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMPurchaseRepository creates a new GORM-based purchase repository
func NewGORMPurchaseRepository(db *gorm.DB, log *logger.Logger) purchasePkg.Repository {
	return &gormPurchaseRepository{
		db:     db,
		logger: log.WithComponent("gorm-purchase-repository"),
	}
}

func (r *gormPurchaseRepository) Create(ctx context.Context, checkout *purchasePkg.Checkout) error {
	// Checkout and its items are written in one transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(checkout).Error
	})
	if err != nil {
		r.logger.Error("Failed to create checkout " + checkout.ID.String() + " for user " + checkout.UserID.String() + ": " + err.Error())
		return fmt.Errorf("failed to create checkout: %w", err)
	}

	r.logger.Info(fmt.Sprintf("Checkout %s created with %d items", checkout.ID, len(checkout.Items)))

	return nil
}

func (r *gormPurchaseRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*purchasePkg.Checkout, error) {
	checkouts := []*purchasePkg.Checkout{}

	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Find(&checkouts).Error
	if err != nil {
		r.logger.Error("Database error finding checkouts for user " + userID.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return checkouts, nil
}
