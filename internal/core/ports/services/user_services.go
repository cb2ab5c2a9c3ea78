package services

import (
	"context"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/SscSPs/dental_lab_app/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// RegisterUser creates a local user. The first user of the system becomes an admin.
	RegisterUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// FindOrCreateGoogleUser returns the user linked to a Google subject, creating it on first sign-in.
	FindOrCreateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error)
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser checks a local username and password.
	AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error)
}

// UserAuthorizerSvc checks a user's role before an action.
type UserAuthorizerSvc interface {
	// AuthorizeUserAction returns ErrForbidden unless the user's role satisfies requiredRole.
	AuthorizeUserAction(ctx context.Context, userID string, requiredRole domain.UserRole) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
	UserAuthorizerSvc
}
