package purchase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyCheckout     = errors.New("checkout has no items")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrBookNotFound      = errors.New("book not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Checkout is one completed purchase by a user
type Checkout struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_user_checkouts"`
	PurchaseDate time.Time      `json:"purchase_date" gorm:"not null;index"`
	Items        []PurchaseItem `json:"items" gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE"`

	// Associations (forward declarations)
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// PurchaseItem is a single book line of a checkout
type PurchaseItem struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CheckoutID uuid.UUID `json:"checkout_id" gorm:"type:uuid;not null;index"`
	BookID     uuid.UUID `json:"book_id" gorm:"type:uuid;not null;index"`
	Quantity   int       `json:"quantity" gorm:"not null;default:1;check:quantity > 0"`
	UnitPrice  float64   `json:"unit_price" gorm:"not null;default:0"`

	Book *Book `json:"-" gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT"`
}

// User represents user for foreign key relationship (forward declaration)
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// Book represents the catalog entry seen by checkout (forward declaration)
type Book struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string
	Price     float64
	Inventory int
}

// Repository defines the interface for purchase data access
type Repository interface {
	Create(ctx context.Context, checkout *Checkout) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Checkout, error)
}

// Catalog reserves stock for checkout lines. Implementations report unknown
// books with ErrBookNotFound and short stock with ErrInsufficientStock.
type Catalog interface {
	ReserveStock(ctx context.Context, bookID uuid.UUID, qty int) (*Book, error)
	ReleaseStock(ctx context.Context, bookID uuid.UUID, qty int) error
}

// Service defines the interface for purchase business logic
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, lines []LineRequest) (*Checkout, error)
	ListPurchases(ctx context.Context, userID uuid.UUID) ([]*Checkout, error)
}

// LineRequest is one requested book and quantity
type LineRequest struct {
	BookID   uuid.UUID `json:"book_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	Items []LineRequest `json:"items" binding:"required,min=1,dive"`
}

// ItemResponse represents a purchased line in API responses
type ItemResponse struct {
	BookID    uuid.UUID `json:"book_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

// PurchaseResponse represents a checkout in API responses
type PurchaseResponse struct {
	ID           uuid.UUID       `json:"id"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Items        []*ItemResponse `json:"items"`
	Total        float64         `json:"total"`
}

// Total is the sum of all line amounts
func (c *Checkout) Total() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// ToResponse converts Checkout to PurchaseResponse
func (c *Checkout) ToResponse() *PurchaseResponse {
	items := make([]*ItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = &ItemResponse{
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	return &PurchaseResponse{
		ID:           c.ID,
		PurchaseDate: c.PurchaseDate,
		Items:        items,
		Total:        c.Total(),
	}
}

// TableName returns the table name for GORM
func (Checkout) TableName() string {
	return "checkouts"
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}
