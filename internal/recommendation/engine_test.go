package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves users, purchases and books from memory and counts calls
type fakeStore struct {
	users     []uuid.UUID
	purchases map[uuid.UUID][]*Checkout
	books     map[uuid.UUID]*Book

	listErr     error
	purchaseErr error
	catalogErr  error

	listCalls     int
	purchaseCalls map[uuid.UUID]int
	catalogCalls  int
	lastLookup    []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		purchases:     make(map[uuid.UUID][]*Checkout),
		books:         make(map[uuid.UUID]*Book),
		purchaseCalls: make(map[uuid.UUID]int),
	}
}

// addUser registers a user and one checkout per group of book IDs
func (f *fakeStore) addUser(checkouts ...[]uuid.UUID) uuid.UUID {
	userID := uuid.New()
	f.users = append(f.users, userID)
	for _, bookIDs := range checkouts {
		checkout := &Checkout{ID: uuid.New(), UserID: userID, PurchaseDate: time.Now()}
		for _, bookID := range bookIDs {
			checkout.Items = append(checkout.Items, PurchaseItem{
				ID:         uuid.New(),
				CheckoutID: checkout.ID,
				BookID:     bookID,
				Quantity:   1,
			})
		}
		f.purchases[userID] = append(f.purchases[userID], checkout)
	}
	return userID
}

func (f *fakeStore) addBooks(titles ...string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(titles))
	for _, title := range titles {
		id := uuid.New()
		f.books[id] = &Book{ID: id, Title: title}
		out = append(out, id)
	}
	return out
}

func (f *fakeStore) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *fakeStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	for _, id := range f.users {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Checkout, error) {
	f.purchaseCalls[userID]++
	if f.purchaseErr != nil {
		return nil, f.purchaseErr
	}
	return f.purchases[userID], nil
}

func (f *fakeStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Book, error) {
	f.catalogCalls++
	f.lastLookup = ids
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	var out []*Book
	for _, id := range ids {
		if book, ok := f.books[id]; ok {
			out = append(out, book)
		}
	}
	return out, nil
}

func newTestEngine(store *fakeStore) *UserSimilarityEngine {
	return NewUserSimilarityEngine(store, store, store, logger.Nop())
}

func titles(recs []*RecommendedBook) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Book.Title)
	}
	return out
}

func TestExtractPurchasedItems(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2", "B3")

	t.Run("flattens and deduplicates checkouts", func(t *testing.T) {
		userID := store.addUser([]uuid.UUID{b[0], b[1]}, []uuid.UUID{b[1], b[2]}, []uuid.UUID{b[0]})

		set, err := newTestEngine(store).ExtractPurchasedItems(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, NewItemSet(b...), set)
	})

	t.Run("no checkouts is an empty set", func(t *testing.T) {
		userID := store.addUser()

		set, err := newTestEngine(store).ExtractPurchasedItems(context.Background(), userID)

		require.NoError(t, err)
		assert.NotNil(t, set)
		assert.Equal(t, 0, set.Len())
	})

	t.Run("store failure propagates", func(t *testing.T) {
		failing := newFakeStore()
		failing.purchaseErr = errors.New("connection refused")

		_, err := newTestEngine(failing).ExtractPurchasedItems(context.Background(), uuid.New())

		require.Error(t, err)
		assert.ErrorIs(t, err, failing.purchaseErr)
	})
}

func TestBuildIndex(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2")
	requester := store.addUser([]uuid.UUID{b[0]})
	buyer := store.addUser([]uuid.UUID{b[0], b[1]})
	store.addUser() // no purchases
	other := store.addUser([]uuid.UUID{b[1]})

	index, err := newTestEngine(store).BuildIndex(context.Background(), requester)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{buyer, other}, index.UserIDs())
	_, ok := index.Get(requester)
	assert.False(t, ok, "excluded user must not be indexed")
	assert.Equal(t, 1, store.listCalls)
}

func TestBuildIndex_ListFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("users table unavailable")

	_, err := newTestEngine(store).BuildIndex(context.Background(), uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, store.listErr)
}

func TestRecommend_NearestNeighborBooks(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2", "B3", "B4")
	target := store.addUser([]uuid.UUID{b[0]}, []uuid.UUID{b[1]})
	x := store.addUser([]uuid.UUID{b[0], b[1], b[2]})
	store.addUser([]uuid.UUID{b[3]})

	engine := newTestEngine(store)
	recs, err := engine.Recommend(context.Background(), target)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "B3", recs[0].Book.Title)
	assert.InDelta(t, 2.0/3.0, recs[0].Score, 1e-12)
	assert.Equal(t, "user-similarity", recs[0].RecommenderUsed)
	assert.NotEmpty(t, recs[0].Reason)
	assert.Equal(t, []uuid.UUID{b[2]}, store.lastLookup)
	assert.Equal(t, 1, store.purchaseCalls[x])
}

func TestRecommend_NoPurchaseHistorySkipsIndex(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1")
	target := store.addUser()
	other := store.addUser([]uuid.UUID{b[0]})

	recs, err := newTestEngine(store).Recommend(context.Background(), target)

	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Equal(t, 0, store.listCalls, "index must not be built")
	assert.Equal(t, 0, store.purchaseCalls[other])
	assert.Equal(t, 0, store.catalogCalls)
}

func TestRecommend_AllSimilaritiesZero(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2", "B3")
	target := store.addUser([]uuid.UUID{b[0]})
	store.addUser([]uuid.UUID{b[1]})
	store.addUser([]uuid.UUID{b[1], b[2]})

	recs, err := newTestEngine(store).Recommend(context.Background(), target)

	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 0, store.catalogCalls)
}

func TestRecommend_OnlyUser(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1")
	target := store.addUser([]uuid.UUID{b[0]})

	recs, err := newTestEngine(store).Recommend(context.Background(), target)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommend_TieKeepsFirstListedUser(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2", "Y-only", "X-only")
	target := store.addUser([]uuid.UUID{b[0], b[1]})
	store.addUser([]uuid.UUID{b[0], b[2]}) // listed first
	store.addUser([]uuid.UUID{b[0], b[3]})

	recs, err := newTestEngine(store).Recommend(context.Background(), target)

	require.NoError(t, err)
	assert.Equal(t, []string{"Y-only"}, titles(recs))
}

func TestRecommend_NeverReturnsOwnedBooks(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2", "B3", "B4", "B5")
	target := store.addUser([]uuid.UUID{b[0], b[1], b[2]})
	store.addUser([]uuid.UUID{b[0], b[1], b[3], b[4]})

	recs, err := newTestEngine(store).Recommend(context.Background(), target)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B4", "B5"}, titles(recs))
	owned := NewItemSet(b[0], b[1], b[2])
	for _, rec := range recs {
		assert.False(t, owned.Contains(rec.Book.ID))
	}
}

func TestRecommend_NeighborOwnsNothingNew(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2")
	target := store.addUser([]uuid.UUID{b[0], b[1]})
	store.addUser([]uuid.UUID{b[0]})

	recs, err := newTestEngine(store).Recommend(context.Background(), target)

	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 0, store.catalogCalls)
}

func TestRecommend_MissingCatalogEntriesAreOmitted(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2")
	deleted := uuid.New()
	target := store.addUser([]uuid.UUID{b[0]})
	store.addUser([]uuid.UUID{b[0], b[1], deleted})

	recs, err := newTestEngine(store).Recommend(context.Background(), target)

	require.NoError(t, err)
	assert.Equal(t, []string{"B2"}, titles(recs))
	assert.ElementsMatch(t, []uuid.UUID{b[1], deleted}, store.lastLookup)
}

func TestRecommend_StoreFailures(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(f *fakeStore)
	}{
		{"purchase store", func(f *fakeStore) { f.purchaseErr = errors.New("purchase store down") }},
		{"user store", func(f *fakeStore) { f.listErr = errors.New("user store down") }},
		{"catalog store", func(f *fakeStore) { f.catalogErr = errors.New("catalog store down") }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			b := store.addBooks("B1", "B2")
			target := store.addUser([]uuid.UUID{b[0]})
			store.addUser([]uuid.UUID{b[0], b[1]})
			tc.setup(store)

			recs, err := newTestEngine(store).Recommend(context.Background(), target)

			assert.Error(t, err)
			assert.Nil(t, recs)
		})
	}
}

func TestRecommend_Idempotent(t *testing.T) {
	store := newFakeStore()
	b := store.addBooks("B1", "B2", "B3")
	target := store.addUser([]uuid.UUID{b[0]})
	store.addUser([]uuid.UUID{b[0], b[1], b[2]})

	engine := newTestEngine(store)
	first, err := engine.Recommend(context.Background(), target)
	require.NoError(t, err)
	second, err := engine.Recommend(context.Background(), target)
	require.NoError(t, err)

	assert.ElementsMatch(t, titles(first), titles(second))
	assert.Equal(t, 2, store.listCalls, "index is rebuilt for every request")
}
