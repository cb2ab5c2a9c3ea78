package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles payments and manual adjustments of a client.
type paymentHandler struct {
	paymentService    portssvc.PaymentSvcFacade
	adjustmentService portssvc.AdjustmentSvcFacade
}

func newPaymentHandler(ps portssvc.PaymentSvcFacade, as portssvc.AdjustmentSvcFacade) *paymentHandler {
	return &paymentHandler{paymentService: ps, adjustmentService: as}
}

func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade, adjustmentService portssvc.AdjustmentSvcFacade) {
	h := newPaymentHandler(paymentService, adjustmentService)

	client := rg.Group("/clients/:clientID")
	{
		client.POST("/payments/preview", h.previewPayment)
		client.POST("/payments", h.recordPayment)
		client.GET("/payments", h.listPayments)
		client.POST("/adjustments", h.createAdjustment)
		client.GET("/adjustments", h.listAdjustments)
	}
	rg.GET("/payments/:paymentID", h.getPayment)
}

// previewPayment godoc
// @Summary Preview a payment allocation
// @Description Shows how an amount would be spread over the selected open invoices. A payment below the total due is split proportionally and rounded per invoice, so the shares may differ from the amount by a few cents. Nothing is stored.
// @Tags payments
// @Accept json
// @Produce json
// @Param clientID path string true "Client ID"
// @Param preview body dto.PreviewPaymentRequest true "Amount and invoices"
// @Success 200 {object} accounting.AllocationResult
// @Failure 400 {object} ErrorResponse "Invalid amount or invoice selection"
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID}/payments/preview [post]
func (h *paymentHandler) previewPayment(c *gin.Context) {
	var req dto.PreviewPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.paymentService.PreviewAllocation(c.Request.Context(), c.Param("clientID"), req.Amount, req.InvoiceIDs, userID)
	if err != nil {
		respondWithError(c, err, "Failed to preview payment")
		return
	}
	c.JSON(http.StatusOK, result)
}

// recordPayment godoc
// @Summary Record a payment
// @Description Allocates the payment (explicit allocations win over invoiceIDs), lowers invoice balances and keeps any excess as client credit
// @Tags payments
// @Accept json
// @Produce json
// @Param clientID path string true "Client ID"
// @Param payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} domain.Payment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID}/payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), c.Param("clientID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to record payment")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("amount", payment.Amount.StringFixed(2)),
		slog.Int("allocations", len(payment.Allocations)))
	c.JSON(http.StatusCreated, payment)
}

// listPayments godoc
// @Summary List a client's payments
// @Description Newest first, paged with an opaque token
// @Tags payments
// @Produce json
// @Param clientID path string true "Client ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} ErrorResponse "Invalid token"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID}/payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	payments, nextToken, err := h.paymentService.ListPayments(c.Request.Context(), c.Param("clientID"), params.Limit, params.NextToken, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ListPaymentsResponse{Payments: payments, NextToken: nextToken})
}

// getPayment godoc
// @Summary Get a payment with its allocations
// @Tags payments
// @Produce json
// @Param paymentID path string true "Payment ID"
// @Success 200 {object} domain.Payment
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /payments/{paymentID} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), c.Param("paymentID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// createAdjustment godoc
// @Summary Enter a credit or debit
// @Description Debits add a charge. Credits either reduce the listed open invoices in order or stay on the account as credit.
// @Tags adjustments
// @Accept json
// @Produce json
// @Param clientID path string true "Client ID"
// @Param adjustment body dto.CreateAdjustmentRequest true "Adjustment details"
// @Success 201 {object} domain.Adjustment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID}/adjustments [post]
func (h *paymentHandler) createAdjustment(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	adjustment, err := h.adjustmentService.CreateAdjustment(c.Request.Context(), c.Param("clientID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create adjustment")
		return
	}
	c.JSON(http.StatusCreated, adjustment)
}

// listAdjustments godoc
// @Summary List a client's adjustments
// @Tags adjustments
// @Produce json
// @Param clientID path string true "Client ID"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Adjustment
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /clients/{clientID}/adjustments [get]
func (h *paymentHandler) listAdjustments(c *gin.Context) {
	var params dto.OffsetParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	adjustments, err := h.adjustmentService.ListAdjustments(c.Request.Context(), c.Param("clientID"), params.Limit, params.Offset, userID)
	if err != nil {
		respondWithError(c, err, "Failed to list adjustments")
		return
	}
	c.JSON(http.StatusOK, adjustments)
}
