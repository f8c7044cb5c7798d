package mvg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public MVG backend.
const DefaultBaseURL = "https://www.mvg.de/api/bgw-pt/v3"

// Client is an HTTP client for the MVG departures API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates an MVG API client. Requests taking longer than timeout fail.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Departures fetches upcoming departures for a stop global id such as "de:09162:6".
// A response body that is valid JSON but not an array yields no departures and no error.
func (c *Client) Departures(ctx context.Context, globalID string, limit int, transportTypes []string) ([]RawDeparture, error) {
	u := c.departuresURL(globalID, limit, transportTypes)

	resp, err := c.doGet(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("departures for stop %s: %w", globalID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Warn("departures response is not a list", "stop", globalID)
		return nil, nil
	}

	var result []RawDeparture
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode departures: %w", err)
	}
	return result, nil
}

// departuresURL builds the request URL. The id is percent-encoded; the
// transport type list stays comma separated as the backend expects.
func (c *Client) departuresURL(globalID string, limit int, transportTypes []string) string {
	var sb strings.Builder
	sb.WriteString(c.baseURL)
	sb.WriteString("/departures?globalId=")
	sb.WriteString(url.QueryEscape(globalID))
	sb.WriteString("&limit=")
	sb.WriteString(strconv.Itoa(limit))
	if types := normalizeTypes(transportTypes); len(types) > 0 {
		sb.WriteString("&transportTypes=")
		sb.WriteString(strings.Join(types, ","))
	}
	return sb.String()
}

// normalizeTypes upper-cases, escapes and de-duplicates transport types, keeping order.
func normalizeTypes(types []string) []string {
	seen := make(map[string]bool, len(types))
	var out []string
	for _, t := range types {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, url.QueryEscape(t))
	}
	return out
}

func (c *Client) doGet(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return resp, nil
}
