package glean

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultTimeout = 60 * time.Second

// Config holds client settings
type Config struct {
	Instance   string // instance name, e.g. "mycompany"
	APIKey     string
	Datasource string
	BatchSize  int
	BaseURL    string // overrides the instance URL, used in tests
}

// Client pushes documents and identities to the indexing API in batches.
// Transport and batching live here; callers hand over full ordered sets.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates an indexing API client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s-be.glean.com/api/index/v1", cfg.Instance)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.With().Str("component", "glean").Logger(),
	}
}

// Ping checks connectivity by fetching the datasource config.
// A 404 is fine: the datasource just does not exist yet.
func (c *Client) Ping(ctx context.Context) error {
	body := map[string]string{"datasource": c.cfg.Datasource}
	err := c.post(ctx, "/getdatasourceconfig", body)
	if se, ok := err.(*StatusError); ok && se.Code == http.StatusNotFound {
		return nil
	}
	return err
}

// SetupDatasource creates the datasource configuration when missing
func (c *Client) SetupDatasource(ctx context.Context, displayName, urlRegex string) error {
	err := c.post(ctx, "/getdatasourceconfig", map[string]string{"datasource": c.cfg.Datasource})
	if err == nil {
		c.logger.Debug().Str("datasource", c.cfg.Datasource).Msg("datasource already exists")
		return nil
	}
	if se, ok := err.(*StatusError); !ok || se.Code != http.StatusNotFound {
		return fmt.Errorf("check datasource: %w", err)
	}

	req := map[string]any{
		"name":        c.cfg.Datasource,
		"displayName": displayName,
		"urlRegex":    urlRegex,
	}
	if err := c.post(ctx, "/adddatasource", req); err != nil {
		return fmt.Errorf("create datasource: %w", err)
	}
	c.logger.Info().Str("datasource", c.cfg.Datasource).Msg("created datasource")
	return nil
}

// PushDocuments indexes documents in batches.
// A failed batch is logged and counted; remaining batches still run.
func (c *Client) PushDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		c.logger.Warn().Msg("no documents to push")
		return nil
	}

	var failed int
	for start := 0; start < len(docs); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(docs))
		req := map[string]any{
			"datasource": c.cfg.Datasource,
			"documents":  docs[start:end],
		}
		if err := c.post(ctx, "/indexdocuments", req); err != nil {
			c.logger.Error().Err(err).Int("batch_start", start).Msg("document batch failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d document batches failed", failed)
	}
	c.logger.Info().Int("documents", len(docs)).Msg("pushed documents")
	return nil
}

// PushUsers bulk-uploads datasource users with paging flags
func (c *Client) PushUsers(ctx context.Context, users []User) error {
	if len(users) == 0 {
		return nil
	}
	uploadID := fmt.Sprintf("%s-users-%s", c.cfg.Datasource, uuid.NewString())
	return c.bulkUpload(ctx, "/bulkindexusers", uploadID, len(users), func(start, end int, page map[string]any) {
		page["users"] = users[start:end]
	})
}

// PushGroups bulk-uploads datasource groups with paging flags
func (c *Client) PushGroups(ctx context.Context, groups []Group) error {
	if len(groups) == 0 {
		return nil
	}
	uploadID := fmt.Sprintf("%s-groups-%s", c.cfg.Datasource, uuid.NewString())
	return c.bulkUpload(ctx, "/bulkindexgroups", uploadID, len(groups), func(start, end int, page map[string]any) {
		page["groups"] = groups[start:end]
	})
}

// PushMemberships bulk-uploads membership edges, one upload per group
func (c *Client) PushMemberships(ctx context.Context, memberships []Membership) error {
	if len(memberships) == 0 {
		return nil
	}

	// Bulk membership uploads are scoped per group
	byGroup := map[string][]map[string]string{}
	var order []string
	for _, m := range memberships {
		if _, seen := byGroup[m.GroupName]; !seen {
			order = append(order, m.GroupName)
		}
		byGroup[m.GroupName] = append(byGroup[m.GroupName], map[string]string{"memberUserId": m.MemberUserID})
	}

	for _, group := range order {
		req := map[string]any{
			"uploadId":           fmt.Sprintf("%s-%s-memberships-%s", c.cfg.Datasource, group, uuid.NewString()),
			"datasource":         c.cfg.Datasource,
			"group":              group,
			"memberships":        byGroup[group],
			"isFirstPage":        true,
			"isLastPage":         true,
			"forceRestartUpload": true,
		}
		if err := c.post(ctx, "/bulkindexmemberships", req); err != nil {
			return fmt.Errorf("push memberships for group %s: %w", group, err)
		}
	}
	c.logger.Info().
		Int("memberships", len(memberships)).
		Int("groups", len(order)).
		Msg("pushed memberships")
	return nil
}

// bulkUpload pages one logical upload, flagging first and last pages
func (c *Client) bulkUpload(ctx context.Context, path, uploadID string, total int, fill func(start, end int, page map[string]any)) error {
	batches := (total + c.cfg.BatchSize - 1) / c.cfg.BatchSize
	for i := 0; i < batches; i++ {
		start := i * c.cfg.BatchSize
		end := min(start+c.cfg.BatchSize, total)
		req := map[string]any{
			"uploadId":           uploadID,
			"datasource":         c.cfg.Datasource,
			"isFirstPage":        i == 0,
			"isLastPage":         i == batches-1,
			"forceRestartUpload": i == 0,
		}
		fill(start, end, req)
		if err := c.post(ctx, path, req); err != nil {
			return fmt.Errorf("bulk upload page %d/%d: %w", i+1, batches, err)
		}
	}
	return nil
}

// StatusError carries a non-2xx HTTP response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("indexing API returned %d: %s", e.Code, e.Body)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	return nil
}
