package purchase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/metrics"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/utils"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository records checkouts in memory
type mockRepository struct {
	checkouts map[uuid.UUID][]*Checkout
	err       error
}

func newMockRepository() *mockRepository {
	return &mockRepository{checkouts: make(map[uuid.UUID][]*Checkout)}
}

func (m *mockRepository) Create(ctx context.Context, checkout *Checkout) error {
	if m.err != nil {
		return m.err
	}
	m.checkouts[checkout.UserID] = append(m.checkouts[checkout.UserID], checkout)
	return nil
}

func (m *mockRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Checkout, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.checkouts[userID], nil
}

// mockCatalog tracks stock per book
type mockCatalog struct {
	books map[uuid.UUID]*Book
}

func (m *mockCatalog) add(title string, price float64, inventory int) uuid.UUID {
	id := uuid.New()
	m.books[id] = &Book{ID: id, Title: title, Price: price, Inventory: inventory}
	return id
}

func (m *mockCatalog) ReserveStock(ctx context.Context, bookID uuid.UUID, qty int) (*Book, error) {
	b, ok := m.books[bookID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	if b.Inventory < qty {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, b.Title)
	}
	b.Inventory -= qty
	return b, nil
}

func (m *mockCatalog) ReleaseStock(ctx context.Context, bookID uuid.UUID, qty int) error {
	if b, ok := m.books[bookID]; ok {
		b.Inventory += qty
	}
	return nil
}

func newFixture() (*mockRepository, *mockCatalog, Service) {
	repo := newMockRepository()
	catalog := &mockCatalog{books: make(map[uuid.UUID]*Book)}
	return repo, catalog, NewService(repo, catalog, logger.Nop())
}

func TestCheckout_Total(t *testing.T) {
	checkout := Checkout{
		ID:           uuid.New(),
		PurchaseDate: time.Now(),
		Items: []PurchaseItem{
			{BookID: uuid.New(), Quantity: 2, UnitPrice: 10},
			{BookID: uuid.New(), Quantity: 1, UnitPrice: 5.5},
		},
	}

	assert.Equal(t, 25.5, checkout.Total())

	response := checkout.ToResponse()
	assert.Equal(t, checkout.ID, response.ID)
	assert.Len(t, response.Items, 2)
	assert.Equal(t, 25.5, response.Total)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "checkouts", Checkout{}.TableName())
	assert.Equal(t, "purchase_items", PurchaseItem{}.TableName())
}

func TestService_Checkout(t *testing.T) {
	repo, catalog, svc := newFixture()
	dune := catalog.add("Dune", 10, 5)
	emma := catalog.add("Emma", 4, 1)
	userID := uuid.New()

	before := testutil.ToFloat64(metrics.CheckoutsTotal.WithLabelValues("success"))

	checkout, err := svc.Checkout(context.Background(), userID, []LineRequest{
		{BookID: dune, Quantity: 1},
		{BookID: emma, Quantity: 1},
		{BookID: dune, Quantity: 2},
	})

	require.NoError(t, err)
	require.Len(t, checkout.Items, 2, "repeated books are merged")
	assert.Equal(t, dune, checkout.Items[0].BookID)
	assert.Equal(t, 3, checkout.Items[0].Quantity)
	assert.Equal(t, 10.0, checkout.Items[0].UnitPrice)
	assert.Equal(t, 34.0, checkout.Total())
	assert.Equal(t, 2, catalog.books[dune].Inventory)
	assert.Equal(t, 0, catalog.books[emma].Inventory)
	assert.Len(t, repo.checkouts[userID], 1)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CheckoutsTotal.WithLabelValues("success")))
}

func TestService_Checkout_Rejections(t *testing.T) {
	testCases := []struct {
		name     string
		lines    func(dune, emma uuid.UUID) []LineRequest
		expected error
	}{
		{"no lines", func(_, _ uuid.UUID) []LineRequest { return nil }, ErrEmptyCheckout},
		{"zero quantity", func(dune, _ uuid.UUID) []LineRequest {
			return []LineRequest{{BookID: dune, Quantity: 0}}
		}, ErrInvalidQuantity},
		{"unknown book", func(dune, _ uuid.UUID) []LineRequest {
			return []LineRequest{{BookID: dune, Quantity: 1}, {BookID: uuid.New(), Quantity: 1}}
		}, ErrBookNotFound},
		{"not enough stock", func(dune, emma uuid.UUID) []LineRequest {
			return []LineRequest{{BookID: dune, Quantity: 2}, {BookID: emma, Quantity: 2}}
		}, ErrInsufficientStock},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, catalog, svc := newFixture()
			dune := catalog.add("Dune", 10, 5)
			emma := catalog.add("Emma", 4, 1)
			userID := uuid.New()

			_, err := svc.Checkout(context.Background(), userID, tc.lines(dune, emma))

			assert.ErrorIs(t, err, tc.expected)
			assert.Empty(t, repo.checkouts[userID])
			assert.Equal(t, 5, catalog.books[dune].Inventory, "reserved stock is released")
			assert.Equal(t, 1, catalog.books[emma].Inventory)
		})
	}
}

func TestService_Checkout_RepositoryFailureReleasesStock(t *testing.T) {
	repo, catalog, svc := newFixture()
	dune := catalog.add("Dune", 10, 5)
	repo.err = errors.New("insert failed")

	_, err := svc.Checkout(context.Background(), uuid.New(), []LineRequest{{BookID: dune, Quantity: 2}})

	assert.ErrorIs(t, err, repo.err)
	assert.Equal(t, 5, catalog.books[dune].Inventory)
}

func TestService_ListPurchases(t *testing.T) {
	repo, catalog, svc := newFixture()
	dune := catalog.add("Dune", 10, 5)
	userID := uuid.New()

	empty, err := svc.ListPurchases(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.Checkout(context.Background(), userID, []LineRequest{{BookID: dune, Quantity: 1}})
	require.NoError(t, err)

	checkouts, err := svc.ListPurchases(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, checkouts, 1)
	assert.Len(t, BuildPurchaseHistory(checkouts), 1)

	repo.err = errors.New("db down")
	_, err = svc.ListPurchases(context.Background(), userID)
	assert.Error(t, err)
}

func setupRouter(svc Service, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := func(c *gin.Context) {
		c.Set(utils.UserIDKey, userID)
		c.Next()
	}
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"), auth)
	return router
}

func postCheckout(router *gin.Engine, body any) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	_ = json.NewEncoder(&payload).Encode(body)
	req, _ := http.NewRequest("POST", "/api/v1/purchases", &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Checkout(t *testing.T) {
	_, catalog, svc := newFixture()
	dune := catalog.add("Dune", 10, 1)
	router := setupRouter(svc, uuid.New())

	testCases := []struct {
		name string
		body any
		code int
	}{
		{"success", CheckoutRequest{Items: []LineRequest{{BookID: dune, Quantity: 1}}}, http.StatusCreated},
		{"sold out", CheckoutRequest{Items: []LineRequest{{BookID: dune, Quantity: 1}}}, http.StatusConflict},
		{"unknown book", CheckoutRequest{Items: []LineRequest{{BookID: uuid.New(), Quantity: 1}}}, http.StatusNotFound},
		{"empty items", map[string]any{"items": []any{}}, http.StatusBadRequest},
		{"zero quantity", map[string]any{"items": []any{map[string]any{"book_id": dune, "quantity": 0}}}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postCheckout(router, tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
}

func TestHandler_ListPurchases(t *testing.T) {
	_, catalog, svc := newFixture()
	dune := catalog.add("Dune", 10, 3)
	userID := uuid.New()
	router := setupRouter(svc, userID)

	require.Equal(t, http.StatusCreated, postCheckout(router, CheckoutRequest{Items: []LineRequest{{BookID: dune, Quantity: 2}}}).Code)

	req, _ := http.NewRequest("GET", "/api/v1/purchases", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var history []*PurchaseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, 20.0, history[0].Total)
	require.Len(t, history[0].Items, 1)
	assert.Equal(t, dune, history[0].Items[0].BookID)
}
