// Package notion is a minimal client for the Notion pages API, covering
// page create/update/fetch and database introspection. All outbound calls
// share one rate gate (Pacer) and one retry policy (Retrier), so the
// client never exceeds the integration quota even when retrying.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL    = "https://api.notion.com"
	defaultAPIVersion = "2022-06-28"
)

// ClientOptions configures a Client. The zero value of every field has a
// usable default except Token, which is required.
type ClientOptions struct {
	Token       string
	BaseURL     string
	APIVersion  string
	UserAgent   string
	HTTPClient  *http.Client
	MaxRetries  int
	Backoff     []time.Duration
	MinInterval time.Duration
}

// Client talks to the Notion HTTP API.
type Client struct {
	baseURL    string
	token      string
	apiVersion string
	userAgent  string
	httpClient *http.Client
	retrier    *Retrier
}

// NewClient builds a Client from opts, filling in defaults for anything
// unset. The embedded Pacer and Retrier are shared by every call made
// through the returned client.
func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	pacer := NewPacer(opts.MinInterval)
	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(opts.Token),
		apiVersion: apiVersion,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		httpClient: httpClient,
		retrier:    NewRetrier(maxRetries, opts.Backoff, pacer),
	}
}

// Page is the subset of a Notion page object this service reads back.
type Page struct {
	ID             string `json:"id"`
	URL            string `json:"url,omitempty"`
	CreatedTime    string `json:"created_time,omitempty"`
	LastEditedTime string `json:"last_edited_time,omitempty"`
	Archived       bool   `json:"archived,omitempty"`
}

// DatabaseProperty describes one property of a Notion database schema.
type DatabaseProperty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Database is the subset of a Notion database object this service reads.
type Database struct {
	ID         string                      `json:"id"`
	Properties map[string]DatabaseProperty `json:"properties"`
}

type createPageRequest struct {
	Parent     pageParent          `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

type updatePageRequest struct {
	Properties map[string]Property `json:"properties"`
}

// CreatePage creates a page in the given database and returns the created
// page, including the remote identifier callers persist for later updates.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props map[string]Property) (*Page, error) {
	var page Page
	body := createPageRequest{Parent: pageParent{DatabaseID: databaseID}, Properties: props}
	if err := c.do(ctx, http.MethodPost, "/v1/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage overwrites the given properties of an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, props map[string]Property) (*Page, error) {
	var page Page
	body := updatePageRequest{Properties: props}
	if err := c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchPage retrieves a page by its identifier.
func (c *Client) FetchPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DescribeDatabase retrieves the schema of a database. Used at startup to
// verify credentials and the configured database id before any sync runs.
func (c *Client) DescribeDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+databaseID, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// do marshals body once, then runs the exchange under the shared retry
// policy. out is populated from the response body on success.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.token == "" {
		return fmt.Errorf("notion: api token is empty")
	}
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("notion: marshal request: %w", err)
		}
	}
	url := c.baseURL + path

	return c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.roundTrip(ctx, method, url, payload, out)
	})
}

// roundTrip performs one HTTP exchange and maps non-2xx responses to
// *APIError for classification by the retry policy.
func (c *Client) roundTrip(ctx context.Context, method, url string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("notion: decode response: %w", err)
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(respBody, &parsed) == nil {
		apiErr.Code = parsed.Code
		if strings.TrimSpace(parsed.Message) != "" {
			apiErr.Message = parsed.Message
		}
	}
	return apiErr
}
