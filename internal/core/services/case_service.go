package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/google/uuid"
)

type caseService struct {
	BaseService
	caseRepo   portsrepo.CaseRepositoryFacade
	clientRepo portsrepo.ClientReader
}

// NewCaseService creates a new lab case service.
func NewCaseService(caseRepo portsrepo.CaseRepositoryFacade, clientRepo portsrepo.ClientReader, opts ...BaseOption) portssvc.CaseSvcFacade {
	svc := &caseService{caseRepo: caseRepo, clientRepo: clientRepo}
	svc.apply(opts)
	return svc
}

var _ portssvc.CaseSvcFacade = (*caseService)(nil)

func (s *caseService) CreateCase(ctx context.Context, clientID string, req dto.CreateCaseRequest, userID string) (*domain.Case, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, fmt.Errorf("client %s is inactive: %w", clientID, apperrors.ErrValidation)
	}

	dueDate, err := dto.ParseOptionalDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	now := s.Now()
	labCase := domain.Case{
		CaseID:      uuid.NewString(),
		CaseNumber:  req.CaseNumber,
		ClientID:    clientID,
		PatientName: req.PatientName,
		Product:     req.Product,
		Status:      domain.CaseReceived,
		DueDate:     dueDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.caseRepo.SaveCase(ctx, labCase); err != nil {
		s.LogError(ctx, err, "Failed to save case", slog.String("case_number", req.CaseNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Case received", slog.String("case_id", labCase.CaseID), slog.String("client_id", clientID))
	return &labCase, nil
}

func (s *caseService) GetCaseByID(ctx context.Context, caseID string, userID string) (*domain.Case, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.caseRepo.FindCaseByID(ctx, caseID)
}

func (s *caseService) ListCasesByClient(ctx context.Context, clientID string, limit, offset int, userID string) ([]domain.Case, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.FindClientByID(ctx, clientID); err != nil {
		return nil, err
	}

	cases, err := s.caseRepo.FindCasesByClient(ctx, clientID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list cases", slog.String("client_id", clientID))
		return nil, err
	}
	return cases, nil
}
