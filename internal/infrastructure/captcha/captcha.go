// Package captcha verifies reCAPTCHA tokens against the provider's
// siteverify endpoint. The check only runs when explicitly enabled by
// configuration; an unconfigured deployment skips it entirely.
package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const siteverifyURL = "https://www.google.com/recaptcha/api/siteverify"

type Verifier struct {
	enabled    bool
	secret     string
	endpoint   string
	httpClient *http.Client
}

func NewVerifier(enabled bool, secret string) *Verifier {
	return &Verifier{
		enabled:    enabled && secret != "",
		secret:     secret,
		endpoint:   siteverifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether verification runs at all.
func (v *Verifier) Enabled() bool { return v.enabled }

// Verify checks a client token. When the verifier is disabled it always
// passes (documented fail-open deployment choice). Network errors count as
// failed verification, not as server errors.
func (v *Verifier) Verify(ctx context.Context, token string) bool {
	if !v.enabled {
		return true
	}
	if token == "" {
		return false
	}
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false
	}
	return parsed.Success
}
