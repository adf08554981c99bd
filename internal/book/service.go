package book

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/config"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/metrics"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/utils"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultLowStockThreshold = 5

// service implements the Service interface
type service struct {
	repo              Repository
	lowStockThreshold int
	logger            *logger.Logger
}

// NewService creates a catalog service with validation and defaults
func NewService(cfg *config.CatalogConfig, repo Repository, log *logger.Logger) (Service, error) {
	threshold := defaultLowStockThreshold
	if cfg != nil && cfg.LowStockThreshold != "" {
		parsed, err := strconv.Atoi(cfg.LowStockThreshold)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid low stock threshold '%s'", cfg.LowStockThreshold)
		}
		threshold = parsed
	}

	return &service{
		repo:              repo,
		lowStockThreshold: threshold,
		logger:            log.WithComponent("book-service"),
	}, nil
}

func (s *service) ListBooks(ctx context.Context, page, limit int) ([]*Book, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > utils.MaxPageLimit {
		limit = utils.DefaultPageLimit
	}

	books, total, err := s.repo.FindAll(ctx, utils.Offset(page, limit), limit)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to list books (page %d, limit %d): %v", page, limit, err))
		return nil, 0, err
	}

	return books, total, nil
}

func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Search(ctx context.Context, field, keyword string) ([]*Book, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if !IsSearchField(field) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSearchField, field)
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []*Book{}, nil
	}

	return s.repo.Search(ctx, field, keyword)
}

func (s *service) FilterByPrice(ctx context.Context, min, max float64) ([]*Book, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("%w: price range [%.2f, %.2f]", ErrInvalidBook, min, max)
	}
	return s.repo.FindByPriceRange(ctx, min, max)
}

func (s *service) FilterByInventory(ctx context.Context, min int) ([]*Book, error) {
	return s.repo.FindByInventoryGreaterThan(ctx, min)
}

func (s *service) CreateBook(ctx context.Context, req *BookRequest) (*Book, error) {
	book := &Book{ID: uuid.New()}
	book.Apply(req)
	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureISBNAvailable(ctx, book.ISBN, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, book); err != nil {
		s.logger.Error("Failed to create book " + book.ISBN + ": " + err.Error())
		return nil, err
	}

	s.logger.Info("Book created: " + book.ID.String() + " (ISBN " + book.ISBN + ")")

	return book, nil
}

func (s *service) UpdateBook(ctx context.Context, id uuid.UUID, req *BookRequest) (*Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	readInventory := book.Inventory

	book.Apply(req)
	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureISBNAvailable(ctx, book.ISBN, book.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, book, readInventory); err != nil {
		if errors.Is(err, ErrInventoryChanged) {
			s.logger.Warn("Book " + id.String() + " sold copies during update, rejecting stale inventory")
			return nil, err
		}
		s.logger.Error("Failed to update book " + id.String() + ": " + err.Error())
		return nil, err
	}

	s.logger.Info("Book updated: " + id.String())

	return book, nil
}

func (s *service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrBookInUse):
			s.logger.Warn("Refusing to delete purchased book " + id.String())
		case !errors.Is(err, ErrBookNotFound):
			s.logger.Error("Failed to delete book " + id.String() + ": " + err.Error())
		}
		return err
	}

	s.logger.Info("Book deleted: " + id.String())

	return nil
}

func (s *service) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*Book, error) {
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be positive, got %d", qty)
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.Inventory < qty {
		return nil, fmt.Errorf("%w: %q has %d left, %d requested", ErrInsufficientInventory, book.Title, book.Inventory, qty)
	}

	if err := s.repo.DecrementInventory(ctx, id, qty); err != nil {
		return nil, err
	}
	book.Inventory -= qty

	return book, nil
}

func (s *service) ReleaseStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty < 1 {
		return nil
	}
	if err := s.repo.IncrementInventory(ctx, id, qty); err != nil {
		s.logger.Error(fmt.Sprintf("Failed to release %d copies of book %s: %v", qty, id, err))
		return err
	}
	return nil
}

func (s *service) ReportLowInventory() error {
	books, err := s.repo.FindLowStock(context.Background(), s.lowStockThreshold)
	if err != nil {
		s.logger.Error("Failed to load low stock books: " + err.Error())
		return err
	}

	metrics.LowStockBooks.Set(float64(len(books)))

	if len(books) == 0 {
		s.logger.Debug("No books at or below the low stock threshold")
		return nil
	}

	titles := lo.Map(books, func(b *Book, _ int) string {
		return fmt.Sprintf("%s (%d)", b.Title, b.Inventory)
	})
	s.logger.Warn(fmt.Sprintf("%d books at or below stock threshold %d: %s", len(books), s.lowStockThreshold, strings.Join(titles, ", ")))

	return nil
}

// ensureISBNAvailable rejects an ISBN already held by a different book
func (s *service) ensureISBNAvailable(ctx context.Context, isbn string, self uuid.UUID) error {
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return ErrISBNConflict
	}
	return nil
}

// BuildPaginationResponse builds a paginated response
func BuildPaginationResponse(books []*Book, total int64, page, limit int) *BookListResponse {
	pagination := utils.CalculatePagination(total, page, limit)

	return &BookListResponse{
		Books: ToResponses(books),
		Total: pagination.Total,
		Page:  pagination.Page,
		Limit: pagination.Limit,
		Pages: pagination.Pages,
	}
}

// ToResponses converts a book slice for API output
func ToResponses(books []*Book) []*BookResponse {
	return lo.Map(books, func(b *Book, _ int) *BookResponse { return b.ToResponse() })
}
