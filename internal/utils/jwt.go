package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the auth middleware
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

var (
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidClaims = errors.New("token has no valid user_id claim")
)

// GetAuthenticatedUserID returns the user ID stored by the auth middleware.
// Routes must run behind that middleware: the raw Authorization header is
// never trusted here, so an unauthenticated context yields ErrMissingToken.
func GetAuthenticatedUserID(c *gin.Context) (uuid.UUID, error) {
	value, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, ErrMissingToken
	}

	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, ErrInvalidClaims
	}

	return userID, nil
}
