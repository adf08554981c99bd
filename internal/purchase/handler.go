package purchase

import (
	"errors"
	"net/http"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for purchase operations
type Handler struct {
	service Service
}

// NewHandler creates a new purchase handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Checkout handles POST /purchases
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetAuthenticatedUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	checkout, err := h.service.Checkout(c.Request.Context(), userID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCheckout), errors.Is(err, ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete checkout"})
		}
		return
	}

	c.JSON(http.StatusCreated, checkout.ToResponse())
}

// ListPurchases handles GET /purchases for the current user
func (h *Handler) ListPurchases(c *gin.Context) {
	userID, err := utils.GetAuthenticatedUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	checkouts, err := h.service.ListPurchases(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchases"})
		return
	}

	c.JSON(http.StatusOK, BuildPurchaseHistory(checkouts))
}

// RegisterRoutes registers all purchase routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	purchases := router.Group("/purchases")
	purchases.Use(authMiddleware)
	{
		purchases.POST("", h.Checkout)
		purchases.GET("", h.ListPurchases)
	}
}
