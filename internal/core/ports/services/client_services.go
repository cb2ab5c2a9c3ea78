package services

import (
	"context"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
)

// ClientReaderSvc defines read operations for clients.
type ClientReaderSvc interface {
	GetClientByID(ctx context.Context, clientID string, userID string) (*domain.Client, error)

	// ListClients returns one page of clients for the view state along with the total count.
	ListClients(ctx context.Context, state listview.State, userID string) ([]domain.Client, int, error)
}

// ClientWriterSvc defines write operations for clients.
type ClientWriterSvc interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest, userID string) (*domain.Client, error)
	UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest, userID string) (*domain.Client, error)
	DeactivateClient(ctx context.Context, clientID string, userID string) error
}

// ClientSvcFacade combines all client service interfaces.
type ClientSvcFacade interface {
	ClientReaderSvc
	ClientWriterSvc
}

// CaseSvcFacade defines operations on lab cases.
type CaseSvcFacade interface {
	CreateCase(ctx context.Context, clientID string, req dto.CreateCaseRequest, userID string) (*domain.Case, error)
	GetCaseByID(ctx context.Context, caseID string, userID string) (*domain.Case, error)
	ListCasesByClient(ctx context.Context, clientID string, limit, offset int, userID string) ([]domain.Case, error)
}

// SearchSvc runs the global search across clients and cases.
type SearchSvc interface {
	// Search returns merged results ordered by priority, type and title.
	Search(ctx context.Context, term string, limit int, userID string) ([]domain.SearchResult, error)
}
