package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler serves balances, statements and the global search.
type reportingHandler struct {
	balanceService   portssvc.BalanceSvcFacade
	statementService portssvc.StatementSvcFacade
	searchService    portssvc.SearchSvc
}

func registerReportingRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &reportingHandler{
		balanceService:   services.Balance,
		statementService: services.Statement,
		searchService:    services.Search,
	}

	rg.GET("/search", h.search)
	rg.GET("/balances", h.listBalances)
	rg.GET("/clients/:clientID/balance", h.getClientBalance)

	statements := rg.Group("/statements")
	{
		statements.POST("/generate", h.generateStatements)
		statements.GET("", h.listStatements)
		statements.GET("/:statementID", h.getStatement)
		statements.POST("/:statementID/send", h.markStatementSent)
	}
}

// search godoc
// @Summary Global search
// @Description Searches clients and cases together; exact matches first, then prefix, then contains
// @Tags search
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Max results" default(20)
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /search [get]
func (h *reportingHandler) search(c *gin.Context) {
	var params dto.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), params.Q, params.Limit, userID)
	if err != nil {
		respondWithError(c, err, "Search failed")
		return
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Query: params.Q, Results: results})
}

// getClientBalance godoc
// @Summary Client balance with aging buckets
// @Tags balances
// @Produce json
// @Param clientID path string true "Client ID"
// @Param month query string false "Month (YYYY-MM), defaults to the current month"
// @Success 200 {object} domain.BalanceSummary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID}/balance [get]
func (h *reportingHandler) getClientBalance(c *gin.Context) {
	var params dto.BalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.balanceService.GetClientBalance(c.Request.Context(), c.Param("clientID"), params.Month, userID)
	if err != nil {
		respondWithError(c, err, "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// listBalances godoc
// @Summary Balances of active clients
// @Tags balances
// @Produce json
// @Param month query string false "Month (YYYY-MM), defaults to the current month"
// @Param q query string false "Search on client name or account number"
// @Param sort query string false "Sort field"
// @Param desc query bool false "Sort descending"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.ListBalancesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /balances [get]
func (h *reportingHandler) listBalances(c *gin.Context) {
	var params dto.ListBalancesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	state := params.ToState("client_name")
	balances, total, err := h.balanceService.ListBalances(c.Request.Context(), params.Month, state, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list balances")
		return
	}

	c.JSON(http.StatusOK, dto.ListBalancesResponse{
		Balances: balances,
		Total:    total,
		Page:     state.Page,
		PageSize: state.PageSize,
	})
}

// generateStatements godoc
// @Summary Generate statements for a period
// @Description Builds or refreshes one statement per client with open invoices due in the period
// @Tags statements
// @Accept json
// @Produce json
// @Param request body dto.GenerateStatementsRequest true "Billing period"
// @Success 200 {object} dto.StatementsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /statements/generate [post]
func (h *reportingHandler) generateStatements(c *gin.Context) {
	var req dto.GenerateStatementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	statements, err := h.statementService.GenerateStatements(c.Request.Context(), req.Period, userID)
	if err != nil {
		respondWithError(c, err, "Failed to generate statements")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Statements generated",
		slog.String("period", req.Period), slog.Int("count", len(statements)))
	c.JSON(http.StatusOK, dto.StatementsResponse{Period: req.Period, Statements: statements})
}

// listStatements godoc
// @Summary List statements of a period
// @Tags statements
// @Produce json
// @Param period query string true "Billing period (YYYY-MM)"
// @Success 200 {object} dto.StatementsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /statements [get]
func (h *reportingHandler) listStatements(c *gin.Context) {
	var params dto.ListStatementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	statements, err := h.statementService.ListStatements(c.Request.Context(), params.Period, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list statements")
		return
	}
	c.JSON(http.StatusOK, dto.StatementsResponse{Period: params.Period, Statements: statements})
}

// getStatement godoc
// @Summary Get a statement
// @Tags statements
// @Produce json
// @Param statementID path string true "Statement ID"
// @Success 200 {object} domain.Statement
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /statements/{statementID} [get]
func (h *reportingHandler) getStatement(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	statement, err := h.statementService.GetStatement(c.Request.Context(), c.Param("statementID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve statement")
		return
	}
	c.JSON(http.StatusOK, statement)
}

// markStatementSent godoc
// @Summary Mark a statement as sent
// @Tags statements
// @Produce json
// @Param statementID path string true "Statement ID"
// @Success 200 {object} domain.Statement
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /statements/{statementID}/send [post]
func (h *reportingHandler) markStatementSent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	statement, err := h.statementService.MarkStatementSent(c.Request.Context(), c.Param("statementID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to mark statement sent")
		return
	}
	c.JSON(http.StatusOK, statement)
}
