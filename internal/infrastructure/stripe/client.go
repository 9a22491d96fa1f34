// Package stripe is a thin client for the hosted-checkout API of the
// payment provider. Only the endpoints the purchase flow needs are
// implemented: session creation and session retrieval with the payment
// intent expanded.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

func NewClient(secretKey, apiURL string) *Client {
	if apiURL == "" {
		apiURL = "https://api.stripe.com/v1"
	}
	return &Client{
		secretKey:  secretKey,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe: %s (%s)", apiErr.Error.Message, resp.Status)
		}
		return fmt.Errorf("stripe: unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SessionParams describes one single-item checkout.
type SessionParams struct {
	MovieID     string
	UserID      string
	ProductName string
	AmountCents int64 // minor units
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// CreateCheckoutSession creates a hosted checkout session with a single
// line item and movie/user metadata. The success URL is templated so the
// provider fills in its session id on redirect.
func (c *Client) CreateCheckoutSession(ctx context.Context, p SessionParams) (*CheckoutSession, error) {
	successURL := p.SuccessURL
	sep := "?"
	if strings.Contains(successURL, "?") {
		sep = "&"
	}
	successURL += sep + "session_id={CHECKOUT_SESSION_ID}&movieId=" + url.QueryEscape(p.MovieID)

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[]", "card")
	form.Set("line_items[0][price_data][currency]", p.Currency)
	form.Set("line_items[0][price_data][product_data][name]", p.ProductName)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.AmountCents, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[movieId]", p.MovieID)
	form.Set("metadata[userId]", p.UserID)
	form.Set("success_url", successURL)
	form.Set("cancel_url", p.CancelURL)

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RetrieveSession fetches a checkout session with its payment intent
// expanded so the verification flow can inspect the capture result.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	path := "/checkout/sessions/" + url.PathEscape(sessionID) + "?expand[]=payment_intent"
	var session CheckoutSession
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
