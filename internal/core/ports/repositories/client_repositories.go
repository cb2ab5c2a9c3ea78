package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
)

// ClientSortColumns are the sort fields accepted by FindClients.
var ClientSortColumns = []string{"client_name", "account_number", "created_at"}

// ClientReader defines read operations for clients.
type ClientReader interface {
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// FindClients lists clients matching the view state and returns the total match count.
	// Filter "active" = "true"/"false" restricts on IsActive.
	FindClients(ctx context.Context, state listview.State) ([]domain.Client, int, error)

	// SearchClients matches term against client name and account number.
	SearchClients(ctx context.Context, term string, limit int) ([]domain.Client, error)
}

// ClientWriter defines write operations for clients.
type ClientWriter interface {
	SaveClient(ctx context.Context, client domain.Client) error
	UpdateClient(ctx context.Context, client domain.Client) error
	DeactivateClient(ctx context.Context, clientID string, userID string, now time.Time) error
}

// ClientRepositoryFacade combines all client repository interfaces.
type ClientRepositoryFacade interface {
	ClientReader
	ClientWriter
}

// CaseRepositoryFacade defines persistence operations for lab cases.
type CaseRepositoryFacade interface {
	SaveCase(ctx context.Context, c domain.Case) error
	FindCaseByID(ctx context.Context, caseID string) (*domain.Case, error)
	FindCasesByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Case, error)

	// SearchCases matches term against case number and patient name.
	SearchCases(ctx context.Context, term string, limit int) ([]domain.Case, error)
}
