package domain

import "time"

// UserRole defines what a staff member may do in the billing desk.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleBilling  UserRole = "BILLING"  // Can record payments, adjustments and statements
	RoleReadOnly UserRole = "READONLY" // Can view clients, invoices and reports
)

// rank orders roles so that a higher role satisfies a lower requirement.
func (r UserRole) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleBilling:
		return 2
	case RoleReadOnly:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether r grants at least the access of required.
func (r UserRole) Satisfies(required UserRole) bool {
	return r.rank() > 0 && r.rank() >= required.rank()
}

// AuthProvider identifies how a user signs in.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User represents a lab staff member.
type User struct {
	UserID         string       `json:"userID"`
	Username       string       `json:"username"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	PasswordHash   string       `json:"-"`
	Role           UserRole     `json:"role"`
	AuthProvider   AuthProvider `json:"authProvider"`
	ProviderUserID string       `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// GoogleUserInfo holds the verified identity claims of a Google sign-in.
type GoogleUserInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}
