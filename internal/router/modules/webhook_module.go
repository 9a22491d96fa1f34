package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/cinevault/cinevault/internal/interface/http"
)

// WebhookModule wires the payment-provider webhook endpoint. No auth; the
// handler only acts on sessions already present in the ledger.
type WebhookModule struct {
	Handler *handlers.WebhookHandler
}

func NewWebhookModule(h *handlers.WebhookHandler) *WebhookModule {
	return &WebhookModule{Handler: h}
}

func (m *WebhookModule) Register(rg *gin.RouterGroup) {
	rg.POST("/webhooks/payment", m.Handler.Payment)
}
