package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookPkg "github.com/Keeferf/SYSC4806-AmazinBookstore/internal/book"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// searchColumns maps search fields to columns; only these are ever interpolated into SQL
var searchColumns = map[string]string{
	bookPkg.FieldTitle:     "title",
	bookPkg.FieldISBN:      "isbn",
	bookPkg.FieldAuthor:    "author",
	bookPkg.FieldPublisher: "publisher",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// editableColumns are the columns an admin update may write
var editableColumns = []string{
	"isbn", "title", "description", "author", "publisher", "image_name", "price", "inventory", "updated_at",
}

// gormBookRepository implements the book.Repository interface
type gormBookRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMBookRepository creates a new GORM-based book repository
func NewGORMBookRepository(db *gorm.DB, log *logger.Logger) bookPkg.Repository {
	return &gormBookRepository{
		db:     db,
		logger: log.WithComponent("gorm-book-repository"),
	}
}

func (r *gormBookRepository) Create(ctx context.Context, book *bookPkg.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return bookPkg.ErrISBNConflict
		}
		r.logger.Error("Failed to create book " + book.ISBN + ": " + err.Error())
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *gormBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookPkg.Book, error) {
	var book bookPkg.Book

	err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookPkg.ErrBookNotFound
		}

		r.logger.Error("Database error finding book " + id.String() + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &book, nil
}

func (r *gormBookRepository) FindByISBN(ctx context.Context, isbn string) (*bookPkg.Book, error) {
	var book bookPkg.Book

	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookPkg.ErrBookNotFound
		}

		r.logger.Error("Database error finding book by ISBN " + isbn + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &book, nil
}

func (r *gormBookRepository) FindAll(ctx context.Context, offset, limit int) ([]*bookPkg.Book, int64, error) {
	var (
		books []*bookPkg.Book
		total int64
	)

	db := r.db.WithContext(ctx)
	if err := db.Model(&bookPkg.Book{}).Count(&total).Error; err != nil {
		r.logger.Error("Database error counting books: " + err.Error())
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	err := db.Order("title ASC").Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error
	if err != nil {
		r.logger.Error(fmt.Sprintf("Database error listing books (offset %d, limit %d): %v", offset, limit, err))
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return books, total, nil
}

func (r *gormBookRepository) Search(ctx context.Context, field, keyword string) ([]*bookPkg.Book, error) {
	column, ok := searchColumns[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", bookPkg.ErrInvalidSearchField, field)
	}

	return r.findWhere(ctx, "search by "+field, column+" ILIKE ?", "%"+likeEscaper.Replace(keyword)+"%")
}

func (r *gormBookRepository) FindByPriceRange(ctx context.Context, min, max float64) ([]*bookPkg.Book, error) {
	return r.findWhere(ctx, "price range", "price BETWEEN ? AND ?", min, max)
}

func (r *gormBookRepository) FindByInventoryGreaterThan(ctx context.Context, min int) ([]*bookPkg.Book, error) {
	return r.findWhere(ctx, "inventory filter", "inventory > ?", min)
}

func (r *gormBookRepository) FindLowStock(ctx context.Context, threshold int) ([]*bookPkg.Book, error) {
	var books []*bookPkg.Book

	err := r.db.WithContext(ctx).
		Where("inventory <= ?", threshold).
		Order("inventory ASC").Order("title ASC").
		Find(&books).Error
	if err != nil {
		r.logger.Error("Database error finding low stock books: " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return books, nil
}

func (r *gormBookRepository) Update(ctx context.Context, book *bookPkg.Book, readInventory int) error {
	// Guarded on the inventory the caller read so a concurrent checkout is not overwritten
	result := r.db.WithContext(ctx).Model(book).
		Where("inventory = ?", readInventory).
		Select(editableColumns).
		Updates(book)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return bookPkg.ErrISBNConflict
		}
		r.logger.Error("Failed to update book " + book.ID.String() + ": " + err.Error())
		return fmt.Errorf("failed to update book: %w", err)
	}

	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, book.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: expected %d in stock", bookPkg.ErrInventoryChanged, readInventory)
	}

	return nil
}

func (r *gormBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&bookPkg.Book{}, "id = ?", id)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: %s", bookPkg.ErrBookInUse, id)
		}
		r.logger.Error("Failed to delete book " + id.String() + ": " + err.Error())
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("No book found to delete: " + id.String())
		return bookPkg.ErrBookNotFound
	}

	return nil
}

func (r *gormBookRepository) DecrementInventory(ctx context.Context, id uuid.UUID, qty int) error {
	// Conditional update so concurrent checkouts cannot oversell
	result := r.db.WithContext(ctx).Model(&bookPkg.Book{}).
		Where("id = ? AND inventory >= ?", id, qty).
		UpdateColumn("inventory", gorm.Expr("inventory - ?", qty))
	if err := result.Error; err != nil {
		r.logger.Error("Failed to decrement inventory for book " + id.String() + ": " + err.Error())
		return fmt.Errorf("database error: %w", err)
	}

	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return bookPkg.ErrInsufficientInventory
	}

	return nil
}

func (r *gormBookRepository) IncrementInventory(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).Model(&bookPkg.Book{}).
		Where("id = ?", id).
		UpdateColumn("inventory", gorm.Expr("inventory + ?", qty))
	if err := result.Error; err != nil {
		r.logger.Error("Failed to increment inventory for book " + id.String() + ": " + err.Error())
		return fmt.Errorf("database error: %w", err)
	}

	if result.RowsAffected == 0 {
		return bookPkg.ErrBookNotFound
	}

	return nil
}

func (r *gormBookRepository) findWhere(ctx context.Context, label, query string, args ...any) ([]*bookPkg.Book, error) {
	books := []*bookPkg.Book{}

	err := r.db.WithContext(ctx).Where(query, args...).Order("title ASC").Find(&books).Error
	if err != nil {
		r.logger.Error("Database error in book " + label + ": " + err.Error())
		return nil, fmt.Errorf("database error: %w", err)
	}

	return books, nil
}
