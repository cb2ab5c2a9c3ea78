package pgsql

import (
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:       newPgxUserRepository(dbPool),
		ClientRepo:     newPgxClientRepository(dbPool),
		CaseRepo:       newPgxCaseRepository(dbPool),
		InvoiceRepo:    newPgxInvoiceRepository(dbPool),
		PaymentRepo:    newPgxPaymentRepository(dbPool),
		AdjustmentRepo: newPgxAdjustmentRepository(dbPool),
		StatementRepo:  newPgxStatementRepository(dbPool),
	}
}
