package entity

import "time"

// Transaction statuses
const (
	TxPending = "pending"
	TxPaid    = "paid"
	TxFailed  = "failed"
)

// Transaction records one purchase attempt. ProviderSessionID is unique in
// the store; that constraint is what makes payment verification idempotent.
// Amount is in major currency units.
type Transaction struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"userId"`
	MovieID               string    `json:"movieId"`
	ProviderSessionID     string    `json:"externalSessionId"`
	ProviderPaymentIntent string    `json:"externalPaymentIntentId,omitempty"`
	Amount                float64   `json:"amount"`
	Currency              string    `json:"currency"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
}

// Paid reports whether this attempt captured the payment.
func (t *Transaction) Paid() bool { return t.Status == TxPaid }
