package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ignatzorin/sponsorship-backend/internal/config"
)

// ErrNotConfigured возвращается, если ENRICHMENT_BASE_URL пуст.
var ErrNotConfigured = errors.New("enrichment: service is not configured")

// SupportedPlatforms соцсети, для которых есть публичные метаданные.
var SupportedPlatforms = map[string]bool{
	"instagram": true,
	"tiktok":    true,
	"youtube":   true,
	"twitter":   true,
	"linkedin":  true,
	"facebook":  true,
}

// SocialProfile публичные данные аккаунта.
type SocialProfile struct {
	Platform    string    `json:"platform"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	Followers   int64     `json:"followers"`
	AvatarURL   string    `json:"avatar_url"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Client ходит во внешний сервис метаданных соцсетей.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиента.
func NewClient(cfg config.EnrichmentConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NormalizeHandle убирает @ и пробелы.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// Lookup получает метаданные аккаунта.
func (c *Client) Lookup(ctx context.Context, platform, handle string) (*SocialProfile, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	if !SupportedPlatforms[platform] {
		return nil, fmt.Errorf("enrichment: unsupported platform %q", platform)
	}
	handle = NormalizeHandle(handle)
	if handle == "" {
		return nil, fmt.Errorf("enrichment: handle is required")
	}

	endpoint := fmt.Sprintf("%s/v1/profiles/%s/%s", c.baseURL, url.PathEscape(platform), url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("enrichment: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment: unexpected status %d", resp.StatusCode)
	}

	var p SocialProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("enrichment: decode response: %w", err)
	}
	p.Platform = platform
	if p.Handle == "" {
		p.Handle = handle
	}
	if p.FetchedAt.IsZero() {
		p.FetchedAt = time.Now().UTC()
	}
	return &p, nil
}
