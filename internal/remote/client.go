// Package remote implements the authenticated HTTP client for the
// GhostLock case-management API. All reads return full collections;
// mutations return the created record or an acknowledgement. A 401
// from any authenticated call triggers the configured session-teardown
// handler before the error is surfaced.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ghostlock/console/internal/model"
)

// Client talks to one GhostLock server on behalf of one user session.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger

	// onUnauthorized runs once per rejected credential, before the
	// call returns ErrUnauthorized. Used to clear the session file.
	onUnauthorized func()
	teardownOnce   *sync.Once
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  *log.Logger

	// OnUnauthorized is invoked when the server rejects the bearer
	// credential. Optional.
	OnUnauthorized func()
}

// NewClient creates a client for the given server.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("server base URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		logger:         logger,
		onUnauthorized: opts.OnUnauthorized,
		teardownOnce:   &sync.Once{},
	}, nil
}

// SetToken replaces the bearer credential, e.g. after Login. The new
// credential gets its own teardown on rejection.
func (c *Client) SetToken(token string) {
	c.token = token
	c.teardownOnce = &sync.Once{}
}

// detailPayload is the error body shape the server uses for rejections.
type detailPayload struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// do issues one request and decodes a 2xx response into out (when out
// is non-nil). It never retries: retry policy belongs to callers.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Printf("credential rejected on %s %s, tearing down session", method, endpoint)
		if c.onUnauthorized != nil {
			c.teardownOnce.Do(c.onUnauthorized)
		}
		return ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload detailPayload
		if data, readErr := io.ReadAll(resp.Body); readErr == nil {
			if json.Unmarshal(data, &payload) == nil {
				if payload.Detail != "" {
					apiErr.Detail = payload.Detail
				} else {
					apiErr.Detail = payload.Message
				}
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login exchanges credentials for a bearer token and installs it on
// the client. Login itself carries no credential.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	payload := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, &result); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	c.SetToken(result.AccessToken)
	return result.AccessToken, nil
}

// Register creates a new account. The caller still has to Login.
func (c *Client) Register(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, nil); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// ListCases returns every case owned by the session user.
func (c *Client) ListCases(ctx context.Context) ([]model.Case, error) {
	var cases []model.Case
	if err := c.do(ctx, http.MethodGet, "/cases/", nil, &cases); err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// CreateCase creates a case and returns the stored record.
func (c *Client) CreateCase(ctx context.Context, name, description string) (*model.Case, error) {
	payload := map[string]string{"name": name, "description": description}
	var created model.Case
	if err := c.do(ctx, http.MethodPost, "/cases/", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	return &created, nil
}

// DeleteCase deletes a case. The server cascades to the case's
// entities and their relationships.
func (c *Client) DeleteCase(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cases/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete case %d: %w", id, err)
	}
	return nil
}

// ListEntities returns every entity owned by the session user.
func (c *Client) ListEntities(ctx context.Context) ([]model.Entity, error) {
	var entities []model.Entity
	if err := c.do(ctx, http.MethodGet, "/entities/", nil, &entities); err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return entities, nil
}

// CreateEntity creates an entity inside an existing case.
func (c *Client) CreateEntity(ctx context.Context, caseID int64, name, kind, description string) (*model.Entity, error) {
	payload := map[string]interface{}{
		"case_id":     caseID,
		"name":        name,
		"kind":        kind,
		"description": description,
	}
	var created model.Entity
	if err := c.do(ctx, http.MethodPost, "/entities/", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to create entity: %w", err)
	}
	return &created, nil
}

// DeleteEntity deletes an entity and its relationships.
func (c *Client) DeleteEntity(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/entities/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete entity %d: %w", id, err)
	}
	return nil
}

// ListRelationships returns every relationship owned by the session user.
func (c *Client) ListRelationships(ctx context.Context) ([]model.Relationship, error) {
	var rels []model.Relationship
	if err := c.do(ctx, http.MethodGet, "/relationships/", nil, &rels); err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return rels, nil
}

// CreateRelationship creates a directed source→target edge.
func (c *Client) CreateRelationship(ctx context.Context, sourceID, targetID int64, relation string) (*model.Relationship, error) {
	payload := map[string]interface{}{
		"source_entity_id": sourceID,
		"target_entity_id": targetID,
		"relation":         relation,
	}
	var created model.Relationship
	if err := c.do(ctx, http.MethodPost, "/relationships/", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}
	return &created, nil
}

// DeleteRelationship deletes a relationship.
func (c *Client) DeleteRelationship(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/relationships/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete relationship %d: %w", id, err)
	}
	return nil
}

// ListComments returns the comments on one entity.
func (c *Client) ListComments(ctx context.Context, entityID int64) ([]model.Comment, error) {
	var comments []model.Comment
	endpoint := fmt.Sprintf("/comments/entity/%d", entityID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &comments); err != nil {
		return nil, fmt.Errorf("failed to list comments for entity %d: %w", entityID, err)
	}
	return comments, nil
}

// CreateComment attaches a comment to an entity.
func (c *Client) CreateComment(ctx context.Context, entityID int64, text string) (*model.Comment, error) {
	payload := map[string]interface{}{"entity_id": entityID, "text": text}
	var created model.Comment
	if err := c.do(ctx, http.MethodPost, "/comments/", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &created, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return nil
}

// ListTimeline returns activity events, newest-first. limit <= 0 uses
// the server default.
func (c *Client) ListTimeline(ctx context.Context, limit int) ([]model.TimelineEvent, error) {
	endpoint := "/timeline/"
	if limit > 0 {
		endpoint = fmt.Sprintf("/timeline/?limit=%d", limit)
	}
	var events []model.TimelineEvent
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &events); err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	return events, nil
}

// RunTransform triggers the server-side enrichment for one entity and
// returns what it produced.
func (c *Client) RunTransform(ctx context.Context, entityID int64) (*model.TransformResult, error) {
	var result model.TransformResult
	endpoint := fmt.Sprintf("/entities/%d/transforms/run", entityID)
	if err := c.do(ctx, http.MethodPost, endpoint, nil, &result); err != nil {
		return nil, fmt.Errorf("transform failed for entity %d: %w", entityID, err)
	}
	return &result, nil
}

// ListAPIKeys returns the stored provider credentials.
func (c *Client) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	if err := c.do(ctx, http.MethodGet, "/apikeys/", nil, &keys); err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	return keys, nil
}

// CreateAPIKey stores a named provider credential slot.
func (c *Client) CreateAPIKey(ctx context.Context, name, description string) (*model.APIKey, error) {
	payload := map[string]string{"name": name, "description": description}
	var created model.APIKey
	if err := c.do(ctx, http.MethodPost, "/apikeys/", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}
	return &created, nil
}

// DeleteAPIKey removes a provider credential.
func (c *Client) DeleteAPIKey(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/apikeys/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete API key %d: %w", id, err)
	}
	return nil
}
