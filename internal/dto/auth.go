package dto

import (
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
)

// LoginRequest defines the structure for user login requests.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse defines the structure for the login response.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterRequest defines the payload for creating a local staff user.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// GoogleExchangeCodeRequest carries the authorization code returned by Google.
type GoogleExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// UserResponse defines the user data returned by the API.
type UserResponse struct {
	UserID       string    `json:"userID"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"authProvider"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain user to its API representation.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:       u.UserID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		AuthProvider: string(u.AuthProvider),
		CreatedAt:    u.CreatedAt,
	}
}
