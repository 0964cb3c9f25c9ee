package payments

import (
	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures payment callback routes. The webhook is
// unauthenticated at the app layer; gateway signature verification happens
// at the edge before requests reach this service.
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller) {
	payments := rg.Group("/payments")
	{
		payments.POST("/webhook", controller.HandleWebhook)        // POST /api/v1/payments/webhook
		payments.GET("/orders/:txnRef", controller.GetOrderStatus) // GET /api/v1/payments/orders/:txnRef
	}
}
