package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := &invoiceHandler{invoiceService: invoiceService}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:invoiceID", h.getInvoice)
	}
}

// createInvoice godoc
// @Summary Create an invoice
// @Description Bills a case or a standalone charge; the full amount starts due
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} domain.Invoice
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Client or case not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create invoice")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Invoice created",
		slog.String("invoice_id", invoice.InvoiceID), slog.String("invoice_number", invoice.InvoiceNumber))
	c.JSON(http.StatusCreated, invoice)
}

// listInvoices godoc
// @Summary List invoices
// @Description Filters invoices by client, status and due-date range (inclusive); status "open" selects unpaid and partially paid
// @Tags invoices
// @Produce json
// @Param clientID query string false "Client ID"
// @Param status query string false "unpaid, partially_paid, paid, credit or open"
// @Param dueFrom query string false "Due on or after (YYYY-MM-DD)"
// @Param dueTo query string false "Due on or before (YYYY-MM-DD)"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Success 200 {array} domain.Invoice
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), params, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{invoiceID} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), c.Param("invoiceID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}
