package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/handlers"
	"github.com/SscSPs/dental_lab_app/internal/platform/config"
	"github.com/SscSPs/dental_lab_app/internal/utils"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

const (
	testUserID = "user-billing-1"
	testIssuer = "dental-lab-test"
)

type HandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	cfg    *config.Config

	users      *MockUserService
	tokens     *MockTokenService
	google     *MockGoogleOAuthService
	clients    *MockClientService
	cases      *MockCaseService
	invoices   *MockInvoiceService
	payments   *MockPaymentService
	adjusts    *MockAdjustmentService
	balances   *MockBalanceService
	statements *MockStatementService
	search     *MockSearchService
}

func (s *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(dto.RegisterValidators())
}

func (s *HandlerTestSuite) SetupTest() {
	s.cfg = &config.Config{
		JWTSecret:         "test-secret-key-that-is-long-enough",
		JWTIssuer:         testIssuer,
		JWTExpiryDuration: time.Hour,
		LoginRateLimit:    "100-M",
		APIRateLimit:      "1000-M",
		IsProduction:      true,
	}
	s.users = new(MockUserService)
	s.tokens = new(MockTokenService)
	s.google = new(MockGoogleOAuthService)
	s.clients = new(MockClientService)
	s.cases = new(MockCaseService)
	s.invoices = new(MockInvoiceService)
	s.payments = new(MockPaymentService)
	s.adjusts = new(MockAdjustmentService)
	s.balances = new(MockBalanceService)
	s.statements = new(MockStatementService)
	s.search = new(MockSearchService)

	container := &portssvc.ServiceContainer{
		User:        s.users,
		Token:       s.tokens,
		GoogleOAuth: s.google,
		Client:      s.clients,
		Case:        s.cases,
		Invoice:     s.invoices,
		Payment:     s.payments,
		Adjustment:  s.adjusts,
		Balance:     s.balances,
		Statement:   s.statements,
		Search:      s.search,
	}

	s.router = gin.New()
	s.Require().NoError(handlers.RegisterRoutes(s.router, s.cfg, container))
}

func (s *HandlerTestSuite) TearDownTest() {
	s.users.AssertExpectations(s.T())
	s.tokens.AssertExpectations(s.T())
	s.google.AssertExpectations(s.T())
	s.clients.AssertExpectations(s.T())
	s.payments.AssertExpectations(s.T())
	s.adjusts.AssertExpectations(s.T())
	s.balances.AssertExpectations(s.T())
	s.statements.AssertExpectations(s.T())
	s.search.AssertExpectations(s.T())
}

func (s *HandlerTestSuite) token() string {
	token, err := utils.GenerateJWT(testUserID, s.cfg.JWTSecret, time.Hour, testIssuer)
	s.Require().NoError(err)
	return token
}

func (s *HandlerTestSuite) do(method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+s.token())
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) errorMessage(w *httptest.ResponseRecorder) string {
	var resp handlers.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func decEq(want string) func(decimal.Decimal) bool {
	return func(got decimal.Decimal) bool { return got.Equal(decimal.RequireFromString(want)) }
}

func (s *HandlerTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, false)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *HandlerTestSuite) TestProtectedRouteRequiresToken() {
	w := s.do(http.MethodGet, "/api/v1/clients", nil, false)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestProtectedRouteRejectsForeignIssuer() {
	token, err := utils.GenerateJWT(testUserID, s.cfg.JWTSecret, time.Hour, "someone-else")
	s.Require().NoError(err)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestLogin_Success() {
	user := &domain.User{UserID: testUserID, Username: "frontdesk"}
	expires := time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)
	s.users.On("AuthenticateUser", mock.Anything, "frontdesk", "correct horse").Return(user, nil).Once()
	s.tokens.On("GenerateAccessToken", mock.Anything, user).Return("signed.jwt.token", expires, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "frontdesk", Password: "correct horse"}, false)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("signed.jwt.token", resp.Token)
	s.True(expires.Equal(resp.ExpiresAt))
}

func (s *HandlerTestSuite) TestLogin_BadCredentials() {
	s.users.On("AuthenticateUser", mock.Anything, "frontdesk", "wrong").
		Return(nil, fmt.Errorf("bad password: %w", apperrors.ErrUnauthorized)).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "frontdesk", Password: "wrong"}, false)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid username or password", s.errorMessage(w))
}

func (s *HandlerTestSuite) TestLogin_RateLimited() {
	s.cfg.LoginRateLimit = "1-M"
	s.router = gin.New()
	s.Require().NoError(handlers.RegisterRoutes(s.router, s.cfg, &portssvc.ServiceContainer{User: s.users, Token: s.tokens}))
	s.users.On("AuthenticateUser", mock.Anything, "frontdesk", "wrong").
		Return(nil, apperrors.ErrUnauthorized).Once()

	first := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "frontdesk", Password: "wrong"}, false)
	second := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "frontdesk", Password: "wrong"}, false)

	s.Equal(http.StatusUnauthorized, first.Code)
	s.Equal(http.StatusTooManyRequests, second.Code)
}

func (s *HandlerTestSuite) TestRegister_Duplicate() {
	req := dto.RegisterRequest{Username: "frontdesk", Password: "long-enough-password", Name: "Front Desk"}
	s.users.On("RegisterUser", mock.Anything, req).
		Return(nil, fmt.Errorf("username frontdesk: %w", apperrors.ErrDuplicate)).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/register", req, false)

	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestRegister_ShortPasswordRejectedByBinding() {
	w := s.do(http.MethodPost, "/api/v1/auth/register",
		dto.RegisterRequest{Username: "frontdesk", Password: "short", Name: "Front Desk"}, false)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestGoogleExchange_Success() {
	token := (&oauth2.Token{AccessToken: "google-access"}).WithExtra(map[string]interface{}{"id_token": "raw-id-token"})
	payload := &idtoken.Payload{
		Subject: "google-sub-1",
		Claims:  map[string]interface{}{"email": "lab@example.com", "name": "Lab Owner", "email_verified": true},
	}
	user := &domain.User{UserID: "user-google-1"}
	expires := time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC)

	s.google.On("ExchangeCodeForToken", mock.Anything, "auth-code").Return(token, nil).Once()
	s.google.On("ValidateGoogleIDToken", mock.Anything, "raw-id-token").Return(payload, nil).Once()
	s.users.On("FindOrCreateGoogleUser", mock.Anything, domain.GoogleUserInfo{
		Subject: "google-sub-1", Email: "lab@example.com", EmailVerified: true, Name: "Lab Owner",
	}).Return(user, nil).Once()
	s.tokens.On("GenerateAccessToken", mock.Anything, user).Return("app.jwt", expires, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/google/exchange-code", dto.GoogleExchangeCodeRequest{Code: "auth-code"}, false)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("app.jwt", resp.Token)
}

func (s *HandlerTestSuite) TestGoogleExchange_InvalidGrant() {
	s.google.On("ExchangeCodeForToken", mock.Anything, "stale").
		Return(nil, errors.New("oauth2: \"invalid_grant\" \"Bad Request\"")).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/google/exchange-code", dto.GoogleExchangeCodeRequest{Code: "stale"}, false)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestListClients_BuildsViewState() {
	clients := []domain.Client{{ClientID: "c1", ClientName: "Bright Smiles"}}
	s.clients.On("ListClients", mock.Anything, mock.MatchedBy(func(st listview.State) bool {
		return st.Search == "smile" && st.SortBy == "account_number" && st.SortDesc &&
			st.Page == 2 && st.PageSize == 10 && st.Filter("active") == "true"
	}), testUserID).Return(clients, 11, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/clients?q=smile&sort=account_number&desc=true&page=2&pageSize=10&active=true", nil, true)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ListClientsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(11, resp.Total)
	s.Equal(2, resp.Page)
	s.Len(resp.Clients, 1)
}

func (s *HandlerTestSuite) TestGetClient_NotFound() {
	s.clients.On("GetClientByID", mock.Anything, "missing", testUserID).
		Return(nil, fmt.Errorf("client missing: %w", apperrors.ErrNotFound)).Once()

	w := s.do(http.MethodGet, "/api/v1/clients/missing", nil, true)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestDeactivateClient_NoContent() {
	s.clients.On("DeactivateClient", mock.Anything, "c1", testUserID).Return(nil).Once()

	w := s.do(http.MethodDelete, "/api/v1/clients/c1", nil, true)

	s.Equal(http.StatusNoContent, w.Code)
}

func (s *HandlerTestSuite) TestPreviewPayment() {
	result := &accounting.AllocationResult{
		Allocations: []accounting.InvoiceAllocation{
			{InvoiceID: "inv-1", AllocatedAmount: decimal.RequireFromString("60.00")},
			{InvoiceID: "inv-2", AllocatedAmount: decimal.RequireFromString("40.00")},
		},
		TotalDue:         decimal.RequireFromString("150.00"),
		TotalAllocated:   decimal.RequireFromString("100.00"),
		Overpayment:      decimal.Zero,
		RemainingBalance: decimal.RequireFromString("50.00"),
	}
	s.payments.On("PreviewAllocation", mock.Anything, "c1", mock.MatchedBy(decEq("100")), []string{"inv-1", "inv-2"}, testUserID).
		Return(result, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/clients/c1/payments/preview",
		map[string]any{"amount": "100.00", "invoiceIDs": []string{"inv-1", "inv-2"}}, true)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp accounting.AllocationResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Allocations, 2)
	s.True(resp.RemainingBalance.Equal(decimal.RequireFromString("50")))
}

func (s *HandlerTestSuite) TestRecordPayment_Created() {
	payment := &domain.Payment{
		PaymentID:   "pay-1",
		ClientID:    "c1",
		Amount:      decimal.RequireFromString("250.00"),
		Overpayment: decimal.RequireFromString("50.00"),
		Allocations: []domain.PaymentAllocation{{InvoiceID: "inv-1", Amount: decimal.RequireFromString("200.00")}},
	}
	s.payments.On("RecordPayment", mock.Anything, "c1", mock.MatchedBy(func(r dto.RecordPaymentRequest) bool {
		return r.Method == "check" && r.Amount.Equal(decimal.RequireFromString("250")) && len(r.InvoiceIDs) == 1
	}), testUserID).Return(payment, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/clients/c1/payments", map[string]any{
		"paymentDate": "2026-09-15",
		"method":      "check",
		"amount":      "250.00",
		"invoiceIDs":  []string{"inv-1"},
	}, true)

	s.Require().Equal(http.StatusCreated, w.Code)
	var resp domain.Payment
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("pay-1", resp.PaymentID)
	s.True(resp.Overpayment.Equal(decimal.RequireFromString("50")))
}

func (s *HandlerTestSuite) TestRecordPayment_BindingErrors() {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"negative amount", map[string]any{"method": "cash", "amount": "-5.00"}},
		{"zero amount", map[string]any{"method": "cash", "amount": "0"}},
		{"three decimals", map[string]any{"method": "cash", "amount": "10.005"}},
		{"unknown method", map[string]any{"method": "barter", "amount": "10.00"}},
		{"bad date", map[string]any{"method": "cash", "amount": "10.00", "paymentDate": "15/09/2026"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/api/v1/clients/c1/payments", tt.body, true)
			s.Equal(http.StatusBadRequest, w.Code)
		})
	}
	s.payments.AssertNotCalled(s.T(), "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestRecordPayment_ServiceErrors() {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", fmt.Errorf("invoice inv-9 is already paid: %w", apperrors.ErrValidation), http.StatusBadRequest, "invoice inv-9 is already paid: validation error"},
		{"forbidden", fmt.Errorf("role READONLY: %w", apperrors.ErrForbidden), http.StatusForbidden, ""},
		{"not found", fmt.Errorf("client c1: %w", apperrors.ErrNotFound), http.StatusNotFound, ""},
		{"backend", errors.New("connection refused"), http.StatusInternalServerError, "Failed to record payment"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.payments.On("RecordPayment", mock.Anything, "c1", mock.Anything, testUserID).Return(nil, tt.err).Once()

			w := s.do(http.MethodPost, "/api/v1/clients/c1/payments",
				map[string]any{"method": "cash", "amount": "10.00", "invoiceIDs": []string{"inv-9"}}, true)

			s.Equal(tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				s.Equal(tt.wantMsg, s.errorMessage(w))
			}
		})
	}
}

func (s *HandlerTestSuite) TestListPayments_PassesToken() {
	payments := []domain.Payment{{PaymentID: "pay-3"}, {PaymentID: "pay-2"}}
	s.payments.On("ListPayments", mock.Anything, "c1", 2, "tok-1", testUserID).Return(payments, "tok-2", nil).Once()

	w := s.do(http.MethodGet, "/api/v1/clients/c1/payments?limit=2&nextToken=tok-1", nil, true)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ListPaymentsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("tok-2", resp.NextToken)
	s.Len(resp.Payments, 2)
}

func (s *HandlerTestSuite) TestCreateAdjustment_InvalidTypeRejected() {
	w := s.do(http.MethodPost, "/api/v1/clients/c1/adjustments",
		map[string]any{"description": "remake", "amount": "20.00", "type": "refund"}, true)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestCreateAdjustment_Created() {
	adj := &domain.Adjustment{AdjustmentID: "adj-1", Type: domain.AdjustmentCredit, CreditMode: domain.CreditAccount}
	s.adjusts.On("CreateAdjustment", mock.Anything, "c1", mock.MatchedBy(func(r dto.CreateAdjustmentRequest) bool {
		return r.Type == "credit" && r.CreditMode == "account"
	}), testUserID).Return(adj, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/clients/c1/adjustments",
		map[string]any{"description": "goodwill", "amount": "20.00", "type": "credit", "creditMode": "account"}, true)

	s.Equal(http.StatusCreated, w.Code)
}

func (s *HandlerTestSuite) TestClientBalance_InvalidMonth() {
	w := s.do(http.MethodGet, "/api/v1/clients/c1/balance?month=2026-9", nil, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestClientBalance() {
	summary := &domain.BalanceSummary{ClientID: "c1", OutstandingBalance: decimal.RequireFromString("180.00")}
	s.balances.On("GetClientBalance", mock.Anything, "c1", "2026-09", testUserID).Return(summary, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/clients/c1/balance?month=2026-09", nil, true)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp domain.BalanceSummary
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.OutstandingBalance.Equal(decimal.RequireFromString("180")))
}

func (s *HandlerTestSuite) TestGenerateStatements() {
	statements := []domain.Statement{{StatementID: "st-1", StatementNumber: "ST-202609-0001"}}
	s.statements.On("GenerateStatements", mock.Anything, "2026-09", testUserID).Return(statements, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/statements/generate", dto.GenerateStatementsRequest{Period: "2026-09"}, true)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.StatementsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("2026-09", resp.Period)
	s.Len(resp.Statements, 1)
}

func (s *HandlerTestSuite) TestGenerateStatements_InvalidPeriod() {
	w := s.do(http.MethodPost, "/api/v1/statements/generate", dto.GenerateStatementsRequest{Period: "2026-13"}, true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestSearch() {
	results := []domain.SearchResult{
		{Type: domain.SearchCase, ID: "k1", Title: "C-1001", Priority: domain.PriorityExact},
		{Type: domain.SearchClient, ID: "c1", Title: "C-1001 Dental", Priority: domain.PriorityPrefix},
	}
	s.search.On("Search", mock.Anything, "C-1001", 20, testUserID).Return(results, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/search?q=C-1001", nil, true)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.SearchResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("C-1001", resp.Query)
	s.Equal("k1", resp.Results[0].ID)
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
