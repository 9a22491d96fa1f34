package mailer

import (
	"fmt"
	"strings"
)

// Job types understood by the email worker.
const (
	TypeWelcome         = "welcome"
	TypePurchaseReceipt = "purchase_receipt"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
type EmailJob struct {
	To   string         `json:"to"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Subject derives the email subject for a job.
func (j EmailJob) Subject() string {
	switch strings.ToLower(j.Type) {
	case TypeWelcome:
		return "Welcome to CineVault"
	case TypePurchaseReceipt:
		return "Your CineVault purchase receipt"
	default:
		return "Notification"
	}
}

// Body renders a plain-text body for a job.
func (j EmailJob) Body() string {
	name := str(j.Data, "Name")
	switch strings.ToLower(j.Type) {
	case TypeWelcome:
		return fmt.Sprintf("Hi %s,\n\nYour CineVault account is ready. Enjoy the catalog!\n", name)
	case TypePurchaseReceipt:
		return fmt.Sprintf(
			"Hi %s,\n\nThanks for your purchase of %q.\nAmount: %s %s\nReference: %s\n\nThe movie is now available in your library.\n",
			name,
			str(j.Data, "MovieTitle"),
			str(j.Data, "Amount"),
			strings.ToUpper(str(j.Data, "Currency")),
			str(j.Data, "Reference"),
		)
	default:
		return str(j.Data, "Text")
	}
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
