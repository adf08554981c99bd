package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Roles
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents a bookstore account
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"not null;size:100;uniqueIndex:idx_users_username_lower,expression:lower(username)"`
	Email        string    `json:"email" gorm:"not null;size:255;uniqueIndex:idx_users_email_lower,expression:lower(email)"`
	PasswordHash string    `json:"-" gorm:"not null;size:255"`
	FirstName    string    `json:"first_name" gorm:"size:100"`
	LastName     string    `json:"last_name" gorm:"size:100"`
	Role         string    `json:"role" gorm:"not null;size:20;default:'CUSTOMER'"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Repository defines the interface for user data access.
// Username and email lookups ignore case.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// Service defines the interface for user business logic
type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*User, error)
	Login(ctx context.Context, username, password string) (string, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	ValidateToken(ctx context.Context, tokenString string) (*User, error)
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents user in API responses (without password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// IsAdmin reports whether the user may manage the catalog
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}
