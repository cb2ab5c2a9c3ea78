package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils"
	"github.com/google/uuid"
)

// userService implements the UserSvcFacade interface
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service.
func NewUserService(repo portsrepo.UserRepositoryFacade, opts ...BaseOption) portssvc.UserSvcFacade {
	svc := &userService{userRepo: repo}
	svc.apply(opts)
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// initialRole makes the very first user of an empty system its administrator.
func (s *userService) initialRole(ctx context.Context) (domain.UserRole, error) {
	count, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count users: %w", err)
	}
	if count == 0 {
		return domain.RoleAdmin, nil
	}
	return domain.RoleReadOnly, nil
}

func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	_, err := s.userRepo.FindUserByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("username %q is taken: %w", username, apperrors.ErrDuplicate)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up username", slog.String("username", username))
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
		}
		return nil, err
	}

	role, err := s.initialRole(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to determine role for new user")
		return nil, err
	}

	now := s.Now()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Username:     username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		AuthProvider: domain.ProviderLocal,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("username", username))
		return nil, err
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", userID), slog.String("role", string(role)))
	return &user, nil
}

func (s *userService) FindOrCreateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	if info.Subject == "" || info.Email == "" {
		return nil, fmt.Errorf("google identity is missing subject or email: %w", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindUserByProvider(ctx, domain.ProviderGoogle, info.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up Google user", slog.String("google_user_id", info.Subject))
		return nil, err
	}

	role, err := s.initialRole(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	userID := uuid.NewString()
	name := info.Name
	if name == "" {
		name = info.Email
	}
	newUser := domain.User{
		UserID:         userID,
		Username:       strings.ToLower(info.Email),
		Name:           name,
		Email:          info.Email,
		Role:           role,
		AuthProvider:   domain.ProviderGoogle,
		ProviderUserID: info.Subject,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		s.LogError(ctx, err, "Failed to save Google user", slog.String("google_user_id", info.Subject))
		return nil, err
	}

	s.LogInfo(ctx, "Google user created", slog.String("user_id", userID), slog.String("role", string(role)))
	return &newUser, nil
}

func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}

	if user.AuthProvider != domain.ProviderLocal || !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogDebug(ctx, "Password check failed", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// AuthorizeUserAction checks if a user's role satisfies requiredRole.
func (s *userService) AuthorizeUserAction(ctx context.Context, userID string, requiredRole domain.UserRole) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "Unknown user denied", slog.String("user_id", userID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to load user for authorization", slog.String("user_id", userID))
		return err
	}
	if user.DeletedAt != nil || !user.Role.Satisfies(requiredRole) {
		s.LogDebug(ctx, "User lacks required role",
			slog.String("user_id", userID),
			slog.String("role", string(user.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}
	return nil
}
