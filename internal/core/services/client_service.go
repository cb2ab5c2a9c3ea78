package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
	"github.com/google/uuid"
)

// clientService implements the ClientSvcFacade interface
type clientService struct {
	BaseService
	clientRepo portsrepo.ClientRepositoryFacade
}

// NewClientService creates a new client service with the provided options
func NewClientService(repo portsrepo.ClientRepositoryFacade, opts ...BaseOption) portssvc.ClientSvcFacade {
	svc := &clientService{clientRepo: repo}
	svc.apply(opts)
	return svc
}

var _ portssvc.ClientSvcFacade = (*clientService)(nil)

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest, userID string) (*domain.Client, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		s.LogError(ctx, err, "User not authorized to create client", slog.String("user_id", userID))
		return nil, err
	}

	now := s.Now()
	client := domain.Client{
		ClientID:      uuid.NewString(),
		ClientName:    strings.TrimSpace(req.ClientName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.clientRepo.SaveClient(ctx, client); err != nil {
		s.LogError(ctx, err, "Failed to save client", slog.String("account_number", client.AccountNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Client created", slog.String("client_id", client.ClientID))
	return &client, nil
}

func (s *clientService) GetClientByID(ctx context.Context, clientID string, userID string) (*domain.Client, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find client", slog.String("client_id", clientID))
		}
		return nil, err
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, state listview.State, userID string) ([]domain.Client, int, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, 0, err
	}

	state = state.Normalize(portsrepo.ClientSortColumns, "client_name")
	clients, total, err := s.clientRepo.FindClients(ctx, state)
	if err != nil {
		s.LogError(ctx, err, "Failed to list clients")
		return nil, 0, err
	}
	return clients, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest, userID string) (*domain.Client, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.ClientName != nil {
		client.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	client.LastUpdatedAt = s.Now()
	client.LastUpdatedBy = userID

	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		s.LogError(ctx, err, "Failed to update client", slog.String("client_id", clientID))
		return nil, err
	}
	return client, nil
}

func (s *clientService) DeactivateClient(ctx context.Context, clientID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		return err
	}

	if err := s.clientRepo.DeactivateClient(ctx, clientID, userID, s.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate client", slog.String("client_id", clientID))
		}
		return err
	}

	s.LogInfo(ctx, "Client deactivated", slog.String("client_id", clientID))
	return nil
}
