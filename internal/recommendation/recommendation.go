package recommendation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when the requesting user does not exist
var ErrUserNotFound = errors.New("user not found")

// Engine interface for recommendation algorithms
type Engine interface {
	Recommend(ctx context.Context, userID uuid.UUID) ([]*RecommendedBook, error)
	Name() string
}

// RecommendedBook represents a recommended book with scoring
type RecommendedBook struct {
	Book            *Book   `json:"book"`
	Score           float64 `json:"score"`
	Reason          string  `json:"reason"`
	RecommenderUsed string  `json:"recommender_used"`
}

// UserStore lists the user population
type UserStore interface {
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PurchaseStore reads purchase records. A user without purchases yields an empty slice, not an error.
type PurchaseStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Checkout, error)
}

// CatalogStore resolves book IDs to full records. Unknown IDs are absent from the result.
type CatalogStore interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Book, error)
}

// Service defines the interface for recommendation business logic
type Service interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID) ([]*RecommendedBook, error)
	EngineName() string
}

// Forward declarations for GORM relationships
type Book struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ISBN        string    `json:"isbn" gorm:"column:isbn"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Publisher   string    `json:"publisher"`
	ImageName   string    `json:"image_name"`
	Price       float64   `json:"price"`
	Inventory   int       `json:"inventory"`
}

type Checkout struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null"`
	PurchaseDate time.Time
	Items        []PurchaseItem `gorm:"foreignKey:CheckoutID"`
}

type PurchaseItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CheckoutID uuid.UUID `gorm:"type:uuid;not null"`
	BookID     uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int
}

// Response DTOs
type RecommendationResponse struct {
	Recommendations []*RecommendedBook `json:"recommendations"`
	GeneratedAt     time.Time          `json:"generated_at"`
	EngineUsed      string             `json:"engine_used"`
	UserID          uuid.UUID          `json:"user_id"`
	Count           int                `json:"count"`
}

// BuildRecommendationResponse wraps recommendations for the API
func BuildRecommendationResponse(recommendations []*RecommendedBook, userID uuid.UUID, engineUsed string) *RecommendationResponse {
	if recommendations == nil {
		recommendations = []*RecommendedBook{}
	}
	return &RecommendationResponse{
		Recommendations: recommendations,
		GeneratedAt:     time.Now(),
		EngineUsed:      engineUsed,
		UserID:          userID,
		Count:           len(recommendations),
	}
}

// Books strips the scoring wrapper
func Books(recommendations []*RecommendedBook) []*Book {
	books := make([]*Book, 0, len(recommendations))
	for _, rec := range recommendations {
		books = append(books, rec.Book)
	}
	return books
}
