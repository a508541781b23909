// Package airtable is a minimal REST client for the Airtable v0 API, covering
// only what cache population needs: listing every record of a table, with a
// view filter and offset pagination.
package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Jairajmehra/projects-api/internal/logger"
	"github.com/Jairajmehra/projects-api/internal/metrics"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Record is one raw Airtable row: an opaque id plus the raw field mapping.
// Field values arrive as whatever JSON produced (string, number, list).
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Table identifies one logical dataset: base, table id or name, and an
// optional view restricting the listing.
type Table struct {
	Base string
	ID   string
	View string
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// Client calls the Airtable REST API with a server key.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient builds a client. A nil http.Client falls back to a 30s-timeout
// default; Airtable responses for large tables can take a while per page.
func NewClient(apiKey string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, http: hc}
}

// FetchAll lists every record of the table, following offset pagination until
// the API stops returning a next-page offset. One retry per page on HTTP 429,
// after the standard 30s Airtable cool-off.
func (c *Client) FetchAll(ctx context.Context, t Table) ([]Record, error) {
	if c.apiKey == "" {
		return nil, errors.New("missing airtable api key")
	}
	var out []Record
	offset := ""
	for {
		page, next, err := c.listPage(ctx, t, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if next == "" {
			return out, nil
		}
		offset = next
	}
}

func (c *Client) listPage(ctx context.Context, t Table, offset string) ([]Record, string, error) {
	q := url.Values{}
	if t.View != "" {
		q.Set("view", t.View)
	}
	if offset != "" {
		q.Set("offset", offset)
	}
	u := c.baseURL + "/" + url.PathEscape(t.Base) + "/" + url.PathEscape(t.ID)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	retried := false
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, "", err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		t0 := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			logger.L().Error("airtable_http_error", "table", t.ID, "err", err)
			return nil, "", err
		}
		if resp.StatusCode == http.StatusTooManyRequests && !retried {
			resp.Body.Close()
			logger.L().Warn("airtable_rate_limited", "table", t.ID)
			retried = true
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return nil, "", ctx.Err()
			}
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("airtable: unexpected status %d for table %s", resp.StatusCode, t.ID)
		}
		var lr listResponse
		err = json.NewDecoder(resp.Body).Decode(&lr)
		resp.Body.Close()
		if err != nil {
			logger.L().Error("airtable_decode_error", "table", t.ID, "err", err)
			return nil, "", err
		}
		logger.L().Debug("airtable_page", "table", t.ID, "records", len(lr.Records), "duration_ms", time.Since(t0).Milliseconds())
		metrics.RecordsFetchedTotal.WithLabelValues(t.ID).Add(float64(len(lr.Records)))
		return lr.Records, lr.Offset, nil
	}
}

// WithBaseURL overrides the API endpoint; used by tests against httptest.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}
