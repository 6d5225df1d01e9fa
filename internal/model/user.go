package model

import (
	"net/mail"
	"time"
	"unicode/utf8"
)

// UserRole represents the account type
type UserRole string

const (
	UserRoleCouple UserRole = "couple" // Default role, plans a wedding
	UserRoleVendor UserRole = "vendor" // Lists services and venues
	UserRoleAdmin  UserRole = "admin"  // Approves vendor submissions
)

// Password limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// User represents an account
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Hash      *string    `json:"-"`
	Firstname *string    `json:"firstname,omitempty"`
	Lastname  *string    `json:"lastname,omitempty"`
	Role      UserRole   `json:"role"`
	CreatedOn time.Time  `json:"created_on"`
	UpdatedOn time.Time  `json:"updated_on"`
	LoginOn   *time.Time `json:"login_on,omitempty"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsVendor returns true for vendor accounts
func (u *User) IsVendor() bool {
	return u.Role == UserRoleVendor
}

// RegisterRequest creates an account
type RegisterRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Firstname   *string  `json:"firstname,omitempty"`
	Lastname    *string  `json:"lastname,omitempty"`
	AccountType UserRole `json:"account_type,omitempty"`
}

// Validate checks the registration request
func (r *RegisterRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.Email) {
		errors = append(errors, FieldError{Field: "email", Message: "email is required"})
	} else if !IsValidEmail(r.Email) {
		errors = append(errors, FieldError{Field: "email", Message: "email is not valid"})
	}
	n := utf8.RuneCountInString(r.Password)
	if n < MinPasswordLength {
		errors = append(errors, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	} else if n > MaxPasswordLength {
		errors = append(errors, FieldError{Field: "password", Message: "password must be 128 characters or less"})
	} else if len(r.Password) > MaxPasswordBytes {
		errors = append(errors, FieldError{Field: "password", Message: "password must be 72 bytes or less"})
	}
	switch r.AccountType {
	case "", UserRoleCouple, UserRoleVendor:
	default:
		errors = append(errors, FieldError{Field: "account_type", Message: "account_type must be 'couple' or 'vendor'"})
	}

	return errors
}

// LoginRequest signs in with email and password
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest exchanges a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPair is returned by register, login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResponse bundles the user with fresh tokens
type AuthResponse struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// RefreshToken is the stored form of an opaque refresh token
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedOn time.Time `json:"created_on"`
}

// IsValid reports whether the token may still be exchanged
func (t *RefreshToken) IsValid() bool {
	return !t.Revoked && time.Now().Before(t.ExpiresAt)
}

// IsValidEmail reports whether s parses as a bare address
func IsValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
