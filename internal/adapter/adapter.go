package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/book"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/purchase"
	"github.com/google/uuid"
)

// BookServiceToPurchaseCatalog adapts book.Service to purchase.Catalog
type BookServiceToPurchaseCatalog struct {
	service book.Service
}

// NewBookServiceToPurchaseCatalog creates a new adapter
func NewBookServiceToPurchaseCatalog(s book.Service) purchase.Catalog {
	return &BookServiceToPurchaseCatalog{
		service: s,
	}
}

func (a *BookServiceToPurchaseCatalog) ReserveStock(ctx context.Context, bookID uuid.UUID, qty int) (*purchase.Book, error) {
	reserved, err := a.service.ReserveStock(ctx, bookID, qty)
	if err != nil {
		return nil, translate(err)
	}

	// Convert book.Book to purchase.Book
	return &purchase.Book{
		ID:        reserved.ID,
		Title:     reserved.Title,
		Price:     reserved.Price,
		Inventory: reserved.Inventory,
	}, nil
}

func (a *BookServiceToPurchaseCatalog) ReleaseStock(ctx context.Context, bookID uuid.UUID, qty int) error {
	return translate(a.service.ReleaseStock(ctx, bookID, qty))
}

// translate maps catalog errors onto the purchase package's sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, book.ErrBookNotFound):
		return fmt.Errorf("%w: %v", purchase.ErrBookNotFound, err)
	case errors.Is(err, book.ErrInsufficientInventory):
		return fmt.Errorf("%w: %v", purchase.ErrInsufficientStock, err)
	default:
		return err
	}
}
