// Package payment talks to the hosted payment page provider: it acquires a
// bearer token, renders the self-submitting redirect form, and reconciles
// asynchronous results by encrypted reference.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"
)

// ErrAuthenticationFailed covers every unsuccessful token acquisition,
// including timeouts. Callers must not retry automatically.
var ErrAuthenticationFailed = errors.New("payment authentication failed")

// Status is the reconciled outcome of a checkout attempt.
type Status int

const (
	StatusUnknown Status = iota
	StatusConfirmed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what the provider reported for one encrypted reference.
type Result struct {
	Status    Status
	TrackID   string
	Reference string
	Message   string
}

// Client holds merchant credentials and the provider base URL. All calls
// share one HTTP client with a hard 30s timeout; a timeout is treated the
// same as an authentication failure.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	clientID      string
	clientSecret  string
	encryptionKey string
}

func NewClient(baseURL, clientID, clientSecret, encryptionKey string) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       baseURL,
		clientID:      clientID,
		clientSecret:  clientSecret,
		encryptionKey: encryptionKey,
	}
}

type tokenResponse struct {
	Status  string `json:"status"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// GetAccessToken posts the merchant credentials as a JSON body to the token
// endpoint. Success requires status "1" and a non-empty token; anything else
// is ErrAuthenticationFailed.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"clientId":     c.clientID,
		"clientSecret": c.clientSecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	defer resp.Body.Close()

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: bad response: %v", ErrAuthenticationFailed, err)
	}

	if parsed.Status != "1" || parsed.Token == "" {
		return "", fmt.Errorf("%w: status=%q", ErrAuthenticationFailed, parsed.Status)
	}

	return parsed.Token, nil
}

// RedirectParams feed the hosted-page form. Amount is rendered as a
// fixed-point string (three decimals, KWD).
type RedirectParams struct {
	AccessToken string
	Amount      float64
	TrackID     string
	Reference   string
	ReturnURL   string
	Language    string
}

var redirectFormTmpl = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body onload="document.forms[0].submit()">
<form method="post" action="{{.Action}}">
<input type="hidden" name="tranportalId" value="{{.TranportalID}}">
<input type="hidden" name="tranportalKey" value="{{.TranportalKey}}">
<input type="hidden" name="token" value="{{.Token}}">
<input type="hidden" name="amt" value="{{.Amount}}">
<input type="hidden" name="trackId" value="{{.TrackID}}">
<input type="hidden" name="udf1" value="{{.Reference}}">
<input type="hidden" name="responseURL" value="{{.ReturnURL}}">
<input type="hidden" name="langid" value="{{.Language}}">
</form>
</body>
</html>
`))

type redirectFormData struct {
	Action        string
	TranportalID  string
	TranportalKey string
	Token         string
	Amount        string
	TrackID       string
	Reference     string
	ReturnURL     string
	Language      string
}

// BuildRedirectForm renders the auto-submitting HTML form the client returns
// as the response body. No session state is kept between this step and the
// later result callback; the track id is the only correlation.
func (c *Client) BuildRedirectForm(p RedirectParams) (string, error) {
	lang := p.Language
	if lang == "" {
		lang = "en"
	}

	var buf bytes.Buffer
	err := redirectFormTmpl.Execute(&buf, redirectFormData{
		Action:        c.baseURL + "/payment",
		TranportalID:  c.clientID,
		TranportalKey: c.encryptionKey,
		Token:         p.AccessToken,
		Amount:        FormatAmount(p.Amount),
		TrackID:       p.TrackID,
		Reference:     p.Reference,
		ReturnURL:     p.ReturnURL,
		Language:      lang,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

type transactionResponse struct {
	Status    string `json:"status"`
	TrackID   string `json:"trackId"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// ReconcileResult re-authenticates and asks the provider for the transaction
// behind an encrypted reference. Status "1" maps to Confirmed, "0" and "-1"
// to Failed; everything else comes back as Unknown with an error. The order
// document is never touched here.
func (c *Client) ReconcileResult(ctx context.Context, encryptedRef string) (Result, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return Result{Status: StatusUnknown}, err
	}

	body, err := json.Marshal(map[string]string{
		"reference": encryptedRef,
		"token":     token,
	})
	if err != nil {
		return Result{Status: StatusUnknown}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction", bytes.NewReader(body))
	if err != nil {
		return Result{Status: StatusUnknown}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Status: StatusUnknown}, err
	}
	defer resp.Body.Close()

	var parsed transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{Status: StatusUnknown}, err
	}

	result := Result{
		TrackID:   parsed.TrackID,
		Reference: parsed.Reference,
		Message:   parsed.Message,
	}

	switch parsed.Status {
	case "1":
		result.Status = StatusConfirmed
		return result, nil
	case "0", "-1":
		result.Status = StatusFailed
		return result, nil
	default:
		result.Status = StatusUnknown
		return result, fmt.Errorf("unexpected transaction status %q", parsed.Status)
	}
}

// FormatAmount renders the fixed-point amount string the provider expects
// (KWD, three decimals).
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 3, 64)
}
