package services

import (
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The user service is built first since every other service authorizes through it.
	container.User = NewUserService(repos.UserRepo)
	authz := WithAuthorizer(container.User)

	container.Token = NewTokenService(cfg)
	container.GoogleOAuth = NewGoogleOAuthService(cfg)

	container.Client = NewClientService(repos.ClientRepo, authz)
	container.Case = NewCaseService(repos.CaseRepo, repos.ClientRepo, authz)
	container.Invoice = NewInvoiceService(repos.InvoiceRepo, repos.ClientRepo, repos.CaseRepo, authz)
	container.Payment = NewPaymentService(repos.PaymentRepo, repos.InvoiceRepo, repos.ClientRepo, authz)
	container.Adjustment = NewAdjustmentService(repos.AdjustmentRepo, repos.InvoiceRepo, repos.ClientRepo, authz)
	container.Balance = NewBalanceService(repos.ClientRepo, repos.InvoiceRepo, authz)
	container.Statement = NewStatementService(repos.StatementRepo, repos.InvoiceRepo, cfg.StatementNumberPrefix, authz)
	container.Search = NewSearchService(repos.ClientRepo, repos.CaseRepo, authz)

	return container
}
