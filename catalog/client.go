// Package catalog fetches entities from a Backstage-style catalog API.
package catalog

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yairfalse/silta/types"
)

const defaultPageSize = 100

// Config holds catalog client settings
type Config struct {
	BaseURL   string
	Token     string // optional bearer token
	PageSize  int
	VerifySSL bool
}

// Client pages through the catalog entities endpoint.
// It drains all pages for a kind before returning; the mapping core
// depends on a fully materialized set.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a catalog client
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("catalog base URL must be http(s), got %q", cfg.BaseURL)
	}
	cfg.BaseURL = base
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	transport := http.DefaultTransport
	if !cfg.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- explicit opt-out for self-signed instances
		}
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		logger: logger.With().Str("component", "catalog").Logger(),
	}, nil
}

// Ping checks the catalog API is reachable
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.fetchPage(ctx, "", 0, 1)
	return err
}

// FetchEntities returns every entity of one kind, in catalog order
func (c *Client) FetchEntities(ctx context.Context, kind string) ([]*types.Entity, error) {
	var all []*types.Entity
	offset := 0

	for {
		items, err := c.fetchPage(ctx, kind, offset, c.cfg.PageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch %s entities at offset %d: %w", kind, offset, err)
		}
		if len(items) == 0 {
			break
		}

		for _, raw := range items {
			var e types.Entity
			if err := json.Unmarshal(raw, &e); err != nil {
				c.logger.Warn().Err(err).Str("kind", kind).Msg("skipping undecodable entity")
				continue
			}
			all = append(all, &e)
		}

		if len(items) < c.cfg.PageSize {
			break
		}
		offset += len(items)
	}

	c.logger.Debug().Str("kind", kind).Int("count", len(all)).Msg("fetched entities")
	return all, nil
}

// entitiesResponse covers both response shapes the API serves:
// a bare array or an object with an items field
func decodeEntities(body []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode entity array: %w", err)
		}
		return items, nil
	}

	var wrapped struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode entities response: %w", err)
	}
	return wrapped.Items, nil
}

func (c *Client) fetchPage(ctx context.Context, kind string, offset, limit int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if kind != "" {
		params.Set("filter", "kind="+kind)
	}

	endpoint := c.cfg.BaseURL + "/api/catalog/entities?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get entities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return decodeEntities(body)
}
