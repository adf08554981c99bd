package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/metrics"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// service implements the Service interface
type service struct {
	repo    Repository
	catalog Catalog
	logger  *logger.Logger
}

// NewService creates a new purchase service
func NewService(repo Repository, catalog Catalog, log *logger.Logger) Service {
	return &service{
		repo:    repo,
		catalog: catalog,
		logger:  log.WithComponent("purchase-service"),
	}
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, lines []LineRequest) (checkout *Checkout, err error) {
	defer func() { metrics.RecordCheckout(err == nil) }()

	lines, err = mergeLines(lines)
	if err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("Checkout for user %s with %d distinct books", userID, len(lines)))

	checkout = &Checkout{
		ID:           uuid.New(),
		UserID:       userID,
		PurchaseDate: time.Now(),
	}

	var reserved []LineRequest
	for _, line := range lines {
		book, reserveErr := s.catalog.ReserveStock(ctx, line.BookID, line.Quantity)
		if reserveErr != nil {
			s.logger.Warn("Checkout rejected for user " + userID.String() + ": " + reserveErr.Error())
			s.release(ctx, reserved)
			return nil, reserveErr
		}
		reserved = append(reserved, line)

		checkout.Items = append(checkout.Items, PurchaseItem{
			ID:         uuid.New(),
			CheckoutID: checkout.ID,
			BookID:     line.BookID,
			Quantity:   line.Quantity,
			UnitPrice:  book.Price,
		})
	}

	if err = s.repo.Create(ctx, checkout); err != nil {
		s.logger.Error("Failed to record checkout for user " + userID.String() + ": " + err.Error())
		s.release(ctx, reserved)
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("Checkout %s recorded for user %s (total %.2f)", checkout.ID, userID, checkout.Total()))

	return checkout, nil
}

func (s *service) ListPurchases(ctx context.Context, userID uuid.UUID) ([]*Checkout, error) {
	checkouts, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load purchases for user " + userID.String() + ": " + err.Error())
		return nil, err
	}
	if checkouts == nil {
		checkouts = []*Checkout{}
	}
	return checkouts, nil
}

// release returns stock taken for a checkout that did not complete
func (s *service) release(ctx context.Context, lines []LineRequest) {
	for _, line := range lines {
		if err := s.catalog.ReleaseStock(ctx, line.BookID, line.Quantity); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to release %d copies of book %s: %v", line.Quantity, line.BookID, err))
		}
	}
}

// mergeLines validates lines and folds repeated books into one line, keeping first-seen order
func mergeLines(lines []LineRequest) ([]LineRequest, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCheckout
	}

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: book %s has quantity %d", ErrInvalidQuantity, line.BookID, line.Quantity)
		}
	}

	totals := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		totals[line.BookID] += line.Quantity
	}

	order := lo.Uniq(lo.Map(lines, func(line LineRequest, _ int) uuid.UUID { return line.BookID }))
	return lo.Map(order, func(id uuid.UUID, _ int) LineRequest {
		return LineRequest{BookID: id, Quantity: totals[id]}
	}), nil
}

// BuildPurchaseHistory converts checkouts to API responses
func BuildPurchaseHistory(checkouts []*Checkout) []*PurchaseResponse {
	return lo.Map(checkouts, func(c *Checkout, _ int) *PurchaseResponse { return c.ToResponse() })
}
