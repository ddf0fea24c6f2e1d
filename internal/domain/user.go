package domain

import (
	"context"
	"time"
)

// ProviderLocal tags accounts registered with email and password
const ProviderLocal = "local"

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the public projection of a user
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Profile returns the fields safe to expose to clients
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Email: u.Email, Name: u.Name}
}

// UserCreate represents user registration data
type UserCreate struct {
	Name     string `json:"name" validate:"max=255"`
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// UserLogin represents login credentials. Missing fields are treated as
// wrong credentials, not as a malformed request.
type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BearerToken is the token part of a login response
type BearerToken struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// LoginResult is returned after a successful login
type LoginResult struct {
	Token BearerToken `json:"token"`
	User  Profile     `json:"user"`
}

// UserRepository defines the interface for account storage
type UserRepository interface {
	// Create assigns the ID and persists the user. A duplicate email yields ErrConflict.
	Create(ctx context.Context, user *User) error
	// FindByEmail returns nil, nil when no account matches.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByID returns nil, nil when no account matches.
	FindByID(ctx context.Context, id string) (*User, error)
}
