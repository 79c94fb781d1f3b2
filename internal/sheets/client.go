package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured возвращается, если FUNDRAISING_SHEET_URL пуст.
var ErrNotConfigured = errors.New("sheets: sheet url is not configured")

// Total сумма сборов из таблицы.
type Total struct {
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	Rows      int       `json:"rows"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Client читает опубликованную таблицу в формате CSV.
type Client struct {
	sheetURL   string
	httpClient *http.Client
}

// NewClient создаёт клиента.
func NewClient(sheetURL string) *Client {
	return &Client{
		sheetURL:   sheetURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchTotal скачивает таблицу и суммирует колонку amount.
func (c *Client) FetchTotal(ctx context.Context) (*Total, error) {
	if c.sheetURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sheetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets: unexpected status %d", resp.StatusCode)
	}

	total, err := SumAmounts(resp.Body)
	if err != nil {
		return nil, err
	}
	total.FetchedAt = time.Now().UTC()
	return total, nil
}

// SumAmounts суммирует колонку amount. Валюта берётся из колонки currency, по умолчанию USD.
func SumAmounts(r io.Reader) (*Total, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("sheets: read header: %w", err)
	}

	amountIdx, currencyIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "amount":
			amountIdx = i
		case "currency":
			currencyIdx = i
		}
	}
	if amountIdx < 0 {
		return nil, fmt.Errorf("sheets: column amount not found")
	}

	out := &Total{Currency: "USD"}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheets: read row: %w", err)
		}
		if amountIdx >= len(record) {
			continue
		}
		amount, ok := parseAmount(record[amountIdx])
		if !ok {
			continue
		}
		out.Total += amount
		out.Rows++
		if currencyIdx >= 0 && currencyIdx < len(record) {
			if cur := strings.ToUpper(strings.TrimSpace(record[currencyIdx])); cur != "" {
				out.Currency = cur
			}
		}
	}
	out.Total = math.Round(out.Total*100) / 100
	return out, nil
}

// parseAmount понимает "$1,250.50" и "1250".
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
