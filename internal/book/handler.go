package book

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for catalog operations
type Handler struct {
	service Service
}

// NewHandler creates a new book handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// ListBooks handles the paginated catalog listing
func (h *Handler) ListBooks(c *gin.Context) {
	page, limit := utils.ParsePageParams(c.Query("page"), c.Query("limit"))

	books, total, err := h.service.ListBooks(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}

	c.JSON(http.StatusOK, BuildPaginationResponse(books, total, page, limit))
}

// GetBook returns a single book
func (h *Handler) GetBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch book")
		return
	}

	c.JSON(http.StatusOK, book.ToResponse())
}

// Search handles GET /books/search?field=title&q=...
func (h *Handler) Search(c *gin.Context) {
	field := c.DefaultQuery("field", FieldTitle)

	books, err := h.service.Search(c.Request.Context(), field, c.Query("q"))
	if err != nil {
		writeError(c, err, "Failed to search books")
		return
	}

	c.JSON(http.StatusOK, ToResponses(books))
}

// FilterByPrice handles GET /books/filter/price?min=..&max=..
func (h *Handler) FilterByPrice(c *gin.Context) {
	min, errMin := strconv.ParseFloat(c.DefaultQuery("min", "0"), 64)
	max, errMax := strconv.ParseFloat(c.Query("max"), 64)
	if errMin != nil || errMax != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min and max must be numbers"})
		return
	}

	books, err := h.service.FilterByPrice(c.Request.Context(), min, max)
	if err != nil {
		writeError(c, err, "Failed to filter books")
		return
	}

	c.JSON(http.StatusOK, ToResponses(books))
}

// FilterByInventory handles GET /books/filter/inventory?min=..
func (h *Handler) FilterByInventory(c *gin.Context) {
	min, err := strconv.Atoi(c.DefaultQuery("min", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min must be an integer"})
		return
	}

	books, err := h.service.FilterByInventory(c.Request.Context(), min)
	if err != nil {
		writeError(c, err, "Failed to filter books")
		return
	}

	c.JSON(http.StatusOK, ToResponses(books))
}

// CreateBook handles admin book creation
func (h *Handler) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create book")
		return
	}

	c.JSON(http.StatusCreated, book.ToResponse())
}

// UpdateBook handles admin book updates
func (h *Handler) UpdateBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), id, &req)
	if err != nil {
		writeError(c, err, "Failed to update book")
		return
	}

	c.JSON(http.StatusOK, book.ToResponse())
}

// DeleteBook handles admin book deletion
func (h *Handler) DeleteBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
	case errors.Is(err, ErrISBNConflict), errors.Is(err, ErrInventoryChanged), errors.Is(err, ErrBookInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidBook), errors.Is(err, ErrInvalidSearchField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// RegisterRoutes registers all book routes. Reads are public, writes require an admin.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware, adminMiddleware gin.HandlerFunc) {
	books := router.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/search", h.Search)
		books.GET("/filter/price", h.FilterByPrice)
		books.GET("/filter/inventory", h.FilterByInventory)
		books.GET("/:id", h.GetBook)
	}

	admin := books.Group("")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("", h.CreateBook)
		admin.PUT("/:id", h.UpdateBook)
		admin.DELETE("/:id", h.DeleteBook)
	}
}
