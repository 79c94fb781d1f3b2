package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignatzorin/sponsorship-backend/internal/config"
)

// ErrNotConfigured возвращается, если ключи Twilio не заданы.
var ErrNotConfigured = errors.New("Twilio credentials are not configured")

// StatusApproved статус успешной проверки кода.
const StatusApproved = "approved"

// APIError ошибка, которую вернул Twilio.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio: %d %s", e.StatusCode, e.Message)
}

// Verification ответ Verify API.
type Verification struct {
	SID     string `json:"sid"`
	To      string `json:"to"`
	Channel string `json:"channel"`
	Status  string `json:"status"`
	Valid   bool   `json:"valid"`
}

// Client работает с Twilio Verify v2.
type Client struct {
	cfg        config.TwilioConfig
	httpClient *http.Client
}

// NewClient создаёт клиента.
func NewClient(cfg config.TwilioConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://verify.twilio.com"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured сообщает, можно ли отправлять запросы.
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// StartVerification отправляет SMS с кодом.
func (c *Client) StartVerification(ctx context.Context, phone string) (*Verification, error) {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("Channel", "sms")
	return c.post(ctx, "Verifications", form)
}

// CheckVerification проверяет введённый код.
func (c *Client) CheckVerification(ctx context.Context, phone, code string) (*Verification, error) {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("Code", code)
	return c.post(ctx, "VerificationCheck", form)
}

func (c *Client) post(ctx context.Context, resource string, form url.Values) (*Verification, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/v2/Services/%s/%s", c.cfg.BaseURL, c.cfg.VerifyServiceSID, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio: create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("twilio: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.StatusCode = resp.StatusCode
		return nil, apiErr
	}

	var v Verification
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("twilio: decode response: %w", err)
	}
	return &v, nil
}
