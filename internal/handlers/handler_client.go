package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// clientHandler handles HTTP requests for clients and their cases.
type clientHandler struct {
	clientService portssvc.ClientSvcFacade
	caseService   portssvc.CaseSvcFacade
}

func newClientHandler(cs portssvc.ClientSvcFacade, cas portssvc.CaseSvcFacade) *clientHandler {
	return &clientHandler{clientService: cs, caseService: cas}
}

// registerClientRoutes registers client and case routes.
func registerClientRoutes(rg *gin.RouterGroup, clientService portssvc.ClientSvcFacade, caseService portssvc.CaseSvcFacade) {
	h := newClientHandler(clientService, caseService)

	clients := rg.Group("/clients")
	{
		clients.POST("", h.createClient)
		clients.GET("", h.listClients)
		clients.GET("/:clientID", h.getClient)
		clients.PUT("/:clientID", h.updateClient)
		clients.DELETE("/:clientID", h.deactivateClient)
		clients.POST("/:clientID/cases", h.createCase)
		clients.GET("/:clientID/cases", h.listCases)
	}
	rg.GET("/cases/:caseID", h.getCase)
}

// createClient godoc
// @Summary Create a client
// @Description Registers a dental practice as a billing client
// @Tags clients
// @Accept json
// @Produce json
// @Param client body dto.CreateClientRequest true "Client details"
// @Success 201 {object} domain.Client
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Account number already in use"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients [post]
func (h *clientHandler) createClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create client")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Client created", slog.String("client_id", client.ClientID))
	c.JSON(http.StatusCreated, client)
}

// listClients godoc
// @Summary List clients
// @Description Searches, sorts and pages through clients
// @Tags clients
// @Produce json
// @Param q query string false "Search on name or account number"
// @Param sort query string false "Sort field (client_name, account_number, created_at)"
// @Param desc query bool false "Sort descending"
// @Param active query string false "Filter on active flag (true/false)"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.ListClientsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients [get]
func (h *clientHandler) listClients(c *gin.Context) {
	var params dto.ListClientsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	state := params.ToState("client_name")
	if params.Active != "" {
		state = state.WithFilter("active", params.Active).WithPage(params.Page)
	}

	clients, total, err := h.clientService.ListClients(c.Request.Context(), state, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list clients")
		return
	}

	c.JSON(http.StatusOK, dto.ListClientsResponse{
		Clients:  clients,
		Total:    total,
		Page:     state.Page,
		PageSize: state.PageSize,
	})
}

// getClient godoc
// @Summary Get a client
// @Tags clients
// @Produce json
// @Param clientID path string true "Client ID"
// @Success 200 {object} domain.Client
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID} [get]
func (h *clientHandler) getClient(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	client, err := h.clientService.GetClientByID(c.Request.Context(), c.Param("clientID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// updateClient godoc
// @Summary Update a client
// @Description Changes contact details; omitted fields are left unchanged
// @Tags clients
// @Accept json
// @Produce json
// @Param clientID path string true "Client ID"
// @Param client body dto.UpdateClientRequest true "Fields to change"
// @Success 200 {object} domain.Client
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID} [put]
func (h *clientHandler) updateClient(c *gin.Context) {
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), c.Param("clientID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// deactivateClient godoc
// @Summary Deactivate a client
// @Description Marks the client inactive; history is kept
// @Tags clients
// @Param clientID path string true "Client ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID} [delete]
func (h *clientHandler) deactivateClient(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	clientID := c.Param("clientID")
	if err := h.clientService.DeactivateClient(c.Request.Context(), clientID, userID); err != nil {
		respondWithError(c, err, "Failed to deactivate client")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Client deactivated", slog.String("client_id", clientID))
	c.Status(http.StatusNoContent)
}

// createCase godoc
// @Summary Receive a lab case
// @Tags cases
// @Accept json
// @Produce json
// @Param clientID path string true "Client ID"
// @Param case body dto.CreateCaseRequest true "Case details"
// @Success 201 {object} domain.Case
// @Failure 400 {object} ErrorResponse "Invalid input or inactive client"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Case number already in use"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID}/cases [post]
func (h *clientHandler) createCase(c *gin.Context) {
	var req dto.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	labCase, err := h.caseService.CreateCase(c.Request.Context(), c.Param("clientID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create case")
		return
	}
	c.JSON(http.StatusCreated, labCase)
}

// listCases godoc
// @Summary List a client's cases
// @Tags cases
// @Produce json
// @Param clientID path string true "Client ID"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Case
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID}/cases [get]
func (h *clientHandler) listCases(c *gin.Context) {
	var params dto.OffsetParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cases, err := h.caseService.ListCasesByClient(c.Request.Context(), c.Param("clientID"), params.Limit, params.Offset, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list cases")
		return
	}
	c.JSON(http.StatusOK, cases)
}

// getCase godoc
// @Summary Get a case
// @Tags cases
// @Produce json
// @Param caseID path string true "Case ID"
// @Success 200 {object} domain.Case
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /cases/{caseID} [get]
func (h *clientHandler) getCase(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	labCase, err := h.caseService.GetCaseByID(c.Request.Context(), c.Param("caseID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve case")
		return
	}
	c.JSON(http.StatusOK, labCase)
}
