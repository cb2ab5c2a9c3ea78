package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UserRepo       UserRepositoryFacade
	ClientRepo     ClientRepositoryFacade
	CaseRepo       CaseRepositoryFacade
	InvoiceRepo    InvoiceRepositoryFacade
	PaymentRepo    PaymentRepositoryFacade
	AdjustmentRepo AdjustmentRepositoryFacade
	StatementRepo  StatementRepositoryFacade
}
