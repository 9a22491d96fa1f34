package stripe

import "encoding/json"

// CheckoutSession is the provider's session object. PaymentIntent is a
// bare id on creation and webhooks, a full object when retrieved with
// expand[]=payment_intent; RawPaymentIntent absorbs both shapes.
type CheckoutSession struct {
	ID               string          `json:"id"`
	URL              string          `json:"url"`
	Status           string          `json:"status"`
	AmountTotal      int64           `json:"amount_total"`
	Currency         string          `json:"currency"`
	RawPaymentIntent json.RawMessage `json:"payment_intent"`
}

// PaymentIntent returns the expanded intent, or nil when the session has
// none attached (or carries only an id).
func (s *CheckoutSession) PaymentIntent() *PaymentIntent {
	if len(s.RawPaymentIntent) == 0 || string(s.RawPaymentIntent) == "null" {
		return nil
	}
	var pi PaymentIntent
	if err := json.Unmarshal(s.RawPaymentIntent, &pi); err != nil || pi.ID == "" {
		return nil
	}
	return &pi
}

// PaymentIntentID returns the intent id whether the field is expanded or not.
func (s *CheckoutSession) PaymentIntentID() string {
	if pi := s.PaymentIntent(); pi != nil {
		return pi.ID
	}
	var id string
	if err := json.Unmarshal(s.RawPaymentIntent, &id); err == nil {
		return id
	}
	return ""
}

type PaymentIntent struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	AmountReceived int64  `json:"amount_received"`
	Currency       string `json:"currency"`
}

// Event is a webhook payload. Only checkout.session.completed is acted on.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

// EventCheckoutCompleted is the only webhook event type the platform consumes.
const EventCheckoutCompleted = "checkout.session.completed"

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
