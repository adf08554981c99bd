package recommendation

import (
	"context"
	"fmt"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/metrics"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const similarReaderReason = "Purchased by a reader with a similar purchase history"

// UserSimilarityEngine recommends books owned by the reader whose purchase
// history overlaps most with the requester's
type UserSimilarityEngine struct {
	users     UserStore
	purchases PurchaseStore
	catalog   CatalogStore
	logger    *logger.Logger
}

// NewUserSimilarityEngine creates a new user-similarity recommendation engine
func NewUserSimilarityEngine(users UserStore, purchases PurchaseStore, catalog CatalogStore, log *logger.Logger) *UserSimilarityEngine {
	return &UserSimilarityEngine{
		users:     users,
		purchases: purchases,
		catalog:   catalog,
		logger:    log.WithComponent("recommendation-engine"),
	}
}

func (e *UserSimilarityEngine) Name() string {
	return "user-similarity"
}

// ExtractPurchasedItems flattens every checkout of the user into the set of
// distinct book IDs. No checkouts is a valid, empty result.
func (e *UserSimilarityEngine) ExtractPurchasedItems(ctx context.Context, userID uuid.UUID) (ItemSet, error) {
	checkouts, err := e.purchases.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases for user %s: %w", userID, err)
	}

	items := lo.FlatMap(checkouts, func(checkout *Checkout, _ int) []PurchaseItem {
		return checkout.Items
	})

	set := make(ItemSet, len(items))
	for _, item := range items {
		set.Add(item.BookID)
	}
	return set, nil
}

// BuildIndex extracts the purchase set of every user except excludedUserID.
// Users are indexed in the order the user store lists them.
func (e *UserSimilarityEngine) BuildIndex(ctx context.Context, excludedUserID uuid.UUID) (*SimilarityIndex, error) {
	userIDs, err := e.users.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	index := NewSimilarityIndex()
	for _, userID := range userIDs {
		if userID == excludedUserID {
			continue
		}

		set, err := e.ExtractPurchasedItems(ctx, userID)
		if err != nil {
			return nil, err
		}
		index.Put(userID, set)
	}

	return index, nil
}

// Recommend returns the books the nearest neighbor bought that userID has not.
// It returns an empty slice when userID has no purchases or when nobody shares
// at least one book with them. userID is not validated here.
func (e *UserSimilarityEngine) Recommend(ctx context.Context, userID uuid.UUID) ([]*RecommendedBook, error) {
	start := time.Now()
	log := e.logger.WithField("user_id", userID.String())

	recommendations, outcome, err := e.recommend(ctx, userID, log)
	metrics.RecordRecommendation(e.Name(), outcome, time.Since(start), len(recommendations))

	return recommendations, err
}

func (e *UserSimilarityEngine) recommend(ctx context.Context, userID uuid.UUID, log *logger.Logger) ([]*RecommendedBook, string, error) {
	target, err := e.ExtractPurchasedItems(ctx, userID)
	if err != nil {
		log.Error("Failed to extract purchase history: " + err.Error())
		return nil, metrics.OutcomeError, err
	}

	if target.Len() == 0 {
		log.Info("No purchase history, skipping neighbor search")
		return []*RecommendedBook{}, metrics.OutcomeNoHistory, nil
	}

	index, err := e.BuildIndex(ctx, userID)
	if err != nil {
		log.Error("Failed to build similarity index: " + err.Error())
		return nil, metrics.OutcomeError, err
	}
	metrics.RecordIndex(index.Len())

	neighbor, found := SelectNearest(target, index)
	if !found {
		log.Info(fmt.Sprintf("No reader shares a purchase with this user (%d candidates)", index.Len()))
		return []*RecommendedBook{}, metrics.OutcomeNoNeighbor, nil
	}
	metrics.RecordNeighbor(neighbor.Similarity)

	candidates := neighbor.Items.Difference(target)
	if candidates.Len() == 0 {
		log.Info("Nearest reader " + neighbor.UserID.String() + " owns nothing new")
		return []*RecommendedBook{}, metrics.OutcomeRecommended, nil
	}

	books, err := e.catalog.FindByIDs(ctx, candidates.IDs())
	if err != nil {
		log.Error("Failed to resolve recommended books: " + err.Error())
		return nil, metrics.OutcomeError, fmt.Errorf("failed to resolve books: %w", err)
	}

	books = lo.Filter(books, func(book *Book, _ int) bool {
		return book != nil && candidates.Contains(book.ID)
	})

	recommendations := lo.Map(books, func(book *Book, _ int) *RecommendedBook {
		return &RecommendedBook{
			Book:            book,
			Score:           neighbor.Similarity,
			Reason:          similarReaderReason,
			RecommenderUsed: e.Name(),
		}
	})

	log.Info(fmt.Sprintf("Recommended %d books from reader %s (similarity %.3f)",
		len(recommendations), neighbor.UserID, neighbor.Similarity))

	return recommendations, metrics.OutcomeRecommended, nil
}
