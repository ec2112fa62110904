// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// maxResponseBytes caps how much of a reply body is read. Protects
	// against a misbehaving endpoint streaming unbounded data.
	maxResponseBytes = 10 << 20 // 10 MB

	// defaultRequestsPerMinute is the client-side rate limit. Completions
	// are user-paced, so this only matters for rapid manual retries.
	defaultRequestsPerMinute = 30
)

// PERFORMANCE: One pooled HTTP client shared by every Client instance.
// Completion calls reuse connections instead of re-handshaking TLS.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	},
	// No request timeout: the server enforces its own limit and signals
	// it with a gateway-timeout status the orchestrator suppresses.
}

// Client performs completion calls against one chat-completions endpoint.
// It holds no conversation state; each call carries the full history.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: sharedHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(float64(defaultRequestsPerMinute)/60.0), 5),
	}
}

// WithAPIKey sets the bearer credential. An empty key is valid and means
// the anonymous tier: no Authorization header is sent at all.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = key
	return c
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// completionResponse is the success body. Only the fields the client
// reads are declared.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// apiErrorResponse is the best-effort error body shape.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one completion request and returns the reply text.
//
// Failures are always a *RequestError: transport errors carry Status 0,
// HTTP failures carry the status plus the parsed error-body message (or
// "HTTP <status>" when no message can be extracted), and a success body
// missing choices[0].message.content is a failure too, never a silent
// empty reply. No retry happens here; retries are explicit user actions
// at the orchestrator level.
func (c *Client) Complete(ctx context.Context, req *Request) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &RequestError{Message: fmt.Sprintf("rate limit wait: %v", err)}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &RequestError{Message: fmt.Sprintf("encode request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &RequestError{Message: fmt.Sprintf("build request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// SECURITY: Bearer header only when a key exists. The anonymous tier
	// must not see an "Authorization: Bearer " header with no token.
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &RequestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &RequestError{Status: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.errorFromBody(resp.StatusCode, data)
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &RequestError{Status: resp.StatusCode, Message: fmt.Sprintf("parse response: %v", err)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return "", &RequestError{Status: resp.StatusCode, Message: "response missing completion content"}
	}
	return *parsed.Choices[0].Message.Content, nil
}

// errorFromBody extracts a human-readable message from an error body,
// falling back to the bare status when the body isn't the expected shape.
func (c *Client) errorFromBody(status int, data []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &RequestError{Status: status, Message: apiErr.Error.Message}
	}
	return &RequestError{Status: status, Message: statusMessage(status)}
}
