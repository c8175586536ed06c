package dto

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"QROLY_BACK-END/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate trims the payload, lowercases the email and checks every field.
// The username becomes a path segment of the public link, so it is limited
// to URL-safe characters.
func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return errors.New("username, email, and password are required")
	}
	if !usernamePattern.MatchString(r.Username) {
		return errors.New("username must be 3-50 characters of letters, digits, '.', '_' or '-'")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("email is not valid")
	}
	if len(r.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	// Identifier is an email address or a username.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Validate checks that both fields are present.
func (r *LoginRequest) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" || r.Password == "" {
		return errors.New("identifier and password are required")
	}
	return nil
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Provider    string `json:"provider"`
	HasPassword bool   `json:"has_password"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// NewUserResponse converts a user model for the API.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Username:    u.Username,
		Provider:    u.Provider,
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is returned by endpoints that only acknowledge success.
type MessageResponse struct {
	Message string `json:"message"`
}
