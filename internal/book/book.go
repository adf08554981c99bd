package book

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBookNotFound          = errors.New("book not found")
	ErrISBNConflict          = errors.New("a book with this ISBN already exists")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidBook           = errors.New("invalid book")
	ErrInvalidSearchField    = errors.New("invalid search field")
	ErrInventoryChanged      = errors.New("inventory changed since the book was read")
	ErrBookInUse             = errors.New("book has purchase history and cannot be deleted")
)

// Book represents a catalog entry
type Book struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ISBN        string    `json:"isbn" gorm:"column:isbn;uniqueIndex;not null;size:32"`
	Title       string    `json:"title" gorm:"not null;size:500;index"`
	Description string    `json:"description" gorm:"type:text"`
	Author      string    `json:"author" gorm:"size:255;index"`
	Publisher   string    `json:"publisher" gorm:"size:255"`
	ImageName   string    `json:"image_name" gorm:"size:255"`
	Price       float64   `json:"price" gorm:"not null;default:0;check:price >= 0"`
	Inventory   int       `json:"inventory" gorm:"not null;default:0;check:inventory >= 0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Searchable fields
const (
	FieldTitle     = "title"
	FieldISBN      = "isbn"
	FieldAuthor    = "author"
	FieldPublisher = "publisher"
)

// IsSearchField reports whether field can be passed to Search
func IsSearchField(field string) bool {
	switch field {
	case FieldTitle, FieldISBN, FieldAuthor, FieldPublisher:
		return true
	}
	return false
}

// Repository defines the interface for book data access
type Repository interface {
	Create(ctx context.Context, book *Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*Book, error)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	FindAll(ctx context.Context, offset, limit int) ([]*Book, int64, error)
	Search(ctx context.Context, field, keyword string) ([]*Book, error)
	FindByPriceRange(ctx context.Context, min, max float64) ([]*Book, error)
	FindByInventoryGreaterThan(ctx context.Context, min int) ([]*Book, error)
	FindLowStock(ctx context.Context, threshold int) ([]*Book, error)
	// Update writes the editable columns only while the stored inventory
	// still equals readInventory, otherwise it returns ErrInventoryChanged
	Update(ctx context.Context, book *Book, readInventory int) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementInventory removes qty copies only if at least qty are in stock
	DecrementInventory(ctx context.Context, id uuid.UUID, qty int) error
	IncrementInventory(ctx context.Context, id uuid.UUID, qty int) error
}

// Service defines the interface for catalog business logic
type Service interface {
	ListBooks(ctx context.Context, page, limit int) ([]*Book, int64, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	Search(ctx context.Context, field, keyword string) ([]*Book, error)
	FilterByPrice(ctx context.Context, min, max float64) ([]*Book, error)
	FilterByInventory(ctx context.Context, min int) ([]*Book, error)

	CreateBook(ctx context.Context, req *BookRequest) (*Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req *BookRequest) (*Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error

	// Used by checkout and the low stock worker
	ReserveStock(ctx context.Context, id uuid.UUID, qty int) (*Book, error)
	ReleaseStock(ctx context.Context, id uuid.UUID, qty int) error
	ReportLowInventory() error
}

// BookRequest is the admin create/update payload
type BookRequest struct {
	ISBN        string  `json:"isbn" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Author      string  `json:"author" binding:"required"`
	Publisher   string  `json:"publisher"`
	ImageName   string  `json:"image_name"`
	Price       float64 `json:"price" binding:"gte=0"`
	Inventory   int     `json:"inventory" binding:"gte=0"`
}

// BookResponse represents a book in API responses
type BookResponse struct {
	ID          uuid.UUID `json:"id"`
	ISBN        string    `json:"isbn"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Publisher   string    `json:"publisher"`
	ImageName   string    `json:"image_name"`
	Price       float64   `json:"price"`
	Inventory   int       `json:"inventory"`
	InStock     bool      `json:"in_stock"`
}

// BookListResponse represents a paginated book list
type BookListResponse struct {
	Books []*BookResponse `json:"books"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Pages int             `json:"pages"`
}

// Validate checks the numeric constraints of a book
func (b *Book) Validate() error {
	if b.Price < 0 {
		return errors.Join(ErrInvalidBook, errors.New("price must not be negative"))
	}
	if b.Inventory < 0 {
		return errors.Join(ErrInvalidBook, errors.New("inventory must not be negative"))
	}
	return nil
}

// Apply copies request fields onto the book
func (b *Book) Apply(req *BookRequest) {
	b.ISBN = req.ISBN
	b.Title = req.Title
	b.Description = req.Description
	b.Author = req.Author
	b.Publisher = req.Publisher
	b.ImageName = req.ImageName
	b.Price = req.Price
	b.Inventory = req.Inventory
}

// ToResponse converts Book to BookResponse
func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Description: b.Description,
		Author:      b.Author,
		Publisher:   b.Publisher,
		ImageName:   b.ImageName,
		Price:       b.Price,
		Inventory:   b.Inventory,
		InStock:     b.Inventory > 0,
	}
}

// TableName returns the table name for GORM
func (Book) TableName() string {
	return "books"
}
