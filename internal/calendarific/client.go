package calendarific

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

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Client provides typed access to the Calendarific holidays API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Config holds Calendarific client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New builds a client. Timeout defaults to 10s when unset.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// holidaysResponse mirrors the relevant slice of Calendarific's envelope.
type holidaysResponse struct {
	Response struct {
		Holidays []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Date        struct {
				ISO string `json:"iso"`
			} `json:"date"`
		} `json:"holidays"`
	} `json:"response"`
}

// Holidays fetches the holiday list for a country and year, normalized to
// domain records ordered as the provider returns them (ascending by date).
func (c *Client) Holidays(ctx context.Context, country string, year int) ([]domain.Holiday, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("country", country)
	q.Set("year", strconv.Itoa(year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/holidays?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendarific request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("calendarific status %d", resp.StatusCode)
	}

	var env holidaysResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("calendarific decode: %w", err)
	}

	res := make([]domain.Holiday, 0, len(env.Response.Holidays))
	for _, h := range env.Response.Holidays {
		// ISO field may carry a time component; keep the day only.
		day, _, _ := strings.Cut(h.Date.ISO, "T")
		if day == "" {
			continue
		}
		res = append(res, domain.Holiday{
			Date:        day,
			Name:        h.Name,
			Description: h.Description,
		})
	}
	return res, nil
}
