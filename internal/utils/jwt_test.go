package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(authHeader string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	return c
}

func TestGetAuthenticatedUserID_FromMiddlewareContext(t *testing.T) {
	userID := uuid.New()
	c := newContext("")
	c.Set(UserIDKey, userID)

	result, err := GetAuthenticatedUserID(c)

	require.NoError(t, err)
	assert.Equal(t, userID, result)
}

func TestGetAuthenticatedUserID_IgnoresUnverifiedHeader(t *testing.T) {
	// A forged token signed with an unknown key must not authenticate anyone
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": uuid.NewString()})
	tokenString, err := forged.SignedString([]byte("attacker-secret"))
	require.NoError(t, err)

	result, err := GetAuthenticatedUserID(newContext("Bearer " + tokenString))

	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, uuid.Nil, result)
}

func TestGetAuthenticatedUserID_NoContextValue(t *testing.T) {
	result, err := GetAuthenticatedUserID(newContext(""))

	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, uuid.Nil, result)
}

func TestGetAuthenticatedUserID_WrongContextType(t *testing.T) {
	testCases := []struct {
		name  string
		value any
	}{
		{"string id", uuid.NewString()},
		{"nil uuid", uuid.Nil},
		{"number", 42},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newContext("")
			c.Set(UserIDKey, tc.value)

			result, err := GetAuthenticatedUserID(c)

			assert.ErrorIs(t, err, ErrInvalidClaims)
			assert.Equal(t, uuid.Nil, result)
		})
	}
}
