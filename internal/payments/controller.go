package payments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cinely/internal/bookings"
	"cinely/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// WebhookRequest is the gateway callback body. The gateway is trusted to
// have verified the payment; VerifiedAmount is what it actually captured.
type WebhookRequest struct {
	TransactionRef string `json:"transaction_ref" binding:"required"`
	VerifiedAmount int64  `json:"verified_amount" binding:"required,gt=0"`
	Outcome        string `json:"outcome" binding:"required,oneof=SUCCESS FAILURE"`
}

// HandleWebhook handles POST /api/v1/payments/webhook
func (c *Controller) HandleWebhook(ctx *gin.Context) {
	var req WebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid webhook body", nil, err.Error())
		return
	}

	result, err := c.service.ProcessOutcome(ctx.Request.Context(), PaymentOutcome{
		TransactionRef: req.TransactionRef,
		VerifiedAmount: req.VerifiedAmount,
		Outcome:        Outcome(req.Outcome),
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrOrderNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Order not found", nil, err.Error())
		case errors.Is(err, ErrAmountMismatch):
			response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Amount mismatch", nil, err.Error())
		case errors.Is(err, ErrReconciliationRequired):
			// 200 so the gateway stops retrying; the RECONCILE flag and
			// the published event carry the follow-up.
			response.RespondJSON(ctx, "success", http.StatusOK, "Outcome recorded, reconciliation required", result, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process outcome", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Outcome processed", result, nil)
}

// GetOrderStatus handles GET /api/v1/payments/orders/:txnRef
func (c *Controller) GetOrderStatus(ctx *gin.Context) {
	txnRef := ctx.Param("txnRef")
	if txnRef == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Missing transaction ref", nil, nil)
		return
	}

	order, err := c.service.GetOrderStatus(ctx.Request.Context(), txnRef)
	if err != nil {
		if errors.Is(err, bookings.ErrOrderNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Order not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get order", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Order retrieved successfully", order, nil)
}
