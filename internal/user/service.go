package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/config"
	"github.com/Keeferf/SYSC4806-AmazinBookstore/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// service implements the Service interface
type service struct {
	repo      Repository
	jwtSecret string
	jwtExpiry time.Duration
	jwtIssuer string
	logger    *logger.Logger
}

// NewService creates a user service with JWT validation and defaults
func NewService(cfg *config.JWTConfig, repo Repository, log *logger.Logger) (Service, error) {
	// Set defaults for nil or empty config values
	secret := "change-me-in-production"
	if cfg != nil && cfg.Secret != "" {
		secret = cfg.Secret
	}

	var expiry time.Duration = 24 * time.Hour
	if cfg != nil && cfg.Expiration != "" {
		duration, err := time.ParseDuration(cfg.Expiration)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT expiration '%s': %v", cfg.Expiration, err)
		}
		expiry = duration
	}

	issuer := "amazin-bookstore"
	if cfg != nil && cfg.Issuer != "" {
		issuer = cfg.Issuer
	}

	return &service{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
		jwtIssuer: issuer,
		logger:    log.WithComponent("user-service"),
	}, nil
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	s.logger.Info("Registration attempt for username: " + username)

	taken, err := s.isTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		s.logger.Info("Registration failed - username or email already in use: " + username)
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password for " + username + ": " + err.Error())
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         RoleCustomer,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user " + username + ": " + err.Error())
		return nil, err
	}

	s.logger.Info("User registered: " + username + " (ID: " + user.ID.String() + ")")

	return user, nil
}

// isTaken checks both unique keys, ignoring case
func (s *service) isTaken(ctx context.Context, username, email string) (bool, error) {
	for _, lookup := range []func() (*User, error){
		func() (*User, error) { return s.repo.FindByUsername(ctx, username) },
		func() (*User, error) { return s.repo.FindByEmail(ctx, email) },
	} {
		existing, err := lookup()
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return false, err
		}
		if existing != nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	s.logger.Info("Login attempt for username: " + username)

	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return "", err
		}
		s.logger.Info("Login failed - user not found: " + username)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("Login failed - invalid password for " + username + " (ID: " + user.ID.String() + ")")
		return "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		s.logger.Error("Failed to generate JWT token for " + username + ": " + err.Error())
		return "", err
	}

	s.logger.Info("User logged in: " + username + " (ID: " + user.ID.String() + ")")

	return token, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ValidateToken(ctx context.Context, tokenString string) (*User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.jwtIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user_id claim", ErrInvalidToken)
	}

	return s.repo.FindByID(ctx, userID)
}

func (s *service) generateToken(user *User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.jwtIssuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
