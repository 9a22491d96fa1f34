package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/cinevault/cinevault/internal/application"
	"github.com/cinevault/cinevault/internal/infrastructure/stripe"
	"github.com/cinevault/cinevault/pkg/response"
)

type WebhookHandler struct {
	Payments *app.PaymentService
	Logger   *logrus.Logger
}

func NewWebhookHandler(payments *app.PaymentService, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{Payments: payments, Logger: logger}
}

// Payment consumes provider webhook events. The provider only needs a 2xx;
// the envelope stays minimal.
func (h *WebhookHandler) Payment(c *gin.Context) {
	var event stripe.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid event payload", nil)
		return
	}
	if err := h.Payments.HandleWebhook(c.Request.Context(), &event); err != nil {
		h.Logger.WithError(err).WithField("event_id", event.ID).Error("webhook handling failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"received": true}, "event processed", nil)
}
