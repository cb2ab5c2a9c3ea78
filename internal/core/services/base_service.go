package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Authorizer portssvc.UserAuthorizerSvc
	clock      func() time.Time
}

// BaseOption configures the BaseService embedded in every service.
type BaseOption func(*BaseService)

// WithAuthorizer makes the service check the caller's role before each action.
func WithAuthorizer(authorizer portssvc.UserAuthorizerSvc) BaseOption {
	return func(s *BaseService) {
		s.Authorizer = authorizer
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) BaseOption {
	return func(s *BaseService) {
		s.clock = clock
	}
}

func (s *BaseService) apply(opts []BaseOption) {
	for _, opt := range opts {
		opt(s)
	}
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

// Today returns the current UTC date at midnight.
func (s *BaseService) Today() time.Time {
	now := s.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser checks if a user has at least the required role.
// Without an authorizer (the CLI) every action is allowed.
func (s *BaseService) AuthorizeUser(ctx context.Context, userID string, requiredRole domain.UserRole) error {
	if s.Authorizer != nil {
		return s.Authorizer.AuthorizeUserAction(ctx, userID, requiredRole)
	}
	s.LogDebug(ctx, "No authorizer configured, access granted",
		slog.String("user_id", userID),
		slog.String("required_role", string(requiredRole)))
	return nil
}
