package recommendation

import (
	"errors"
	"net/http"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for recommendation operations
type Handler struct {
	service Service
}

// NewHandler creates a new recommendation handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// GetRecommendations returns scored recommendations for the authenticated user
func (h *Handler) GetRecommendations(c *gin.Context) {
	userID, err := utils.GetAuthenticatedUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	recommendations, err := h.service.GetRecommendations(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, BuildRecommendationResponse(recommendations, userID, h.service.EngineName()))
}

// GetRecommendedBooks returns the recommended books as a plain list
func (h *Handler) GetRecommendedBooks(c *gin.Context) {
	userID, err := utils.GetAuthenticatedUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	recommendations, err := h.service.GetRecommendations(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Books(recommendations))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
}

// RegisterRoutes registers all recommendation routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	recommendations := router.Group("/recommendations")
	recommendations.Use(authMiddleware)
	{
		recommendations.GET("", h.GetRecommendations)
	}

	router.GET("/books/recommended", authMiddleware, h.GetRecommendedBooks)
}
