// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ragclient

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

	"github.com/jeranaias/ragchat/internal/sse"
)

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the answer service.
type Client struct {
	baseURL string
	// httpClient serves one-shot calls with a deadline.
	httpClient *http.Client
	// streamClient serves /query/stream with no deadline; cancellation
	// comes from the request context.
	streamClient *http.Client
	logger       *slog.Logger
}

// New creates a client for the service at baseURL. timeout bounds the
// non-streaming calls only.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
		logger:       logger,
	}
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// QUERY OPERATIONS
// =============================================================================

// QueryStream sends a question and returns the frame decoder over the
// streamed answer. The caller owns the decoder and must close it; the
// response body stays open until then. Cancelling ctx aborts generation
// mid-stream.
func (c *Client) QueryStream(ctx context.Context, req *QueryRequest) (*sse.Decoder, error) {
	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to encode query", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query/stream", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("sending streaming query",
		"model", req.Model,
		"history", len(req.ChatHistory),
		"use_rag", req.UseRAG)

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, classify("streaming query failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer drainAndClose(resp.Body)
		return nil, c.statusError(resp)
	}
	return sse.NewDecoder(resp.Body), nil
}

// Query sends a question without streaming and returns the whole answer.
func (c *Client) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	req.Stream = false
	var out QueryResponse
	if err := c.post(ctx, "/query", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// SERVICE OPERATIONS
// =============================================================================

// Health checks service liveness.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListModels returns the model names the service can generate with.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var out ModelListResponse
	if err := c.get(ctx, "/models", &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// ListDocuments returns indexed documents, optionally filtered by tags.
func (c *Client) ListDocuments(ctx context.Context, limit, offset int, tags []string) ([]Document, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	for _, tag := range tags {
		params.Add("tags", tag)
	}

	var out []Document
	if err := c.get(ctx, "/documents?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DocumentStats summarizes the document index.
func (c *Client) DocumentStats(ctx context.Context) (*DocumentStats, error) {
	var out DocumentStats
	if err := c.get(ctx, "/documents/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes one document from the index.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	var out messageResponse
	return c.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, &out)
}

// ClearDocuments removes every document from the index.
func (c *Client) ClearDocuments(ctx context.Context) error {
	var out messageResponse
	return c.do(ctx, http.MethodDelete, "/documents/clear", nil, &out)
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(method+" "+path+" failed", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeServer, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// statusError turns a non-200 response into a ClientError, pulling the
// service's detail message out of the body when there is one.
func (c *Client) statusError(resp *http.Response) *ClientError {
	msg := fmt.Sprintf("service returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(data) > 0 {
		var detail errorResponse
		if json.Unmarshal(data, &detail) == nil && detail.Detail != "" {
			msg = fmt.Sprintf("service returned %d: %s", resp.StatusCode, detail.Detail)
		}
	}
	return &ClientError{Type: ErrTypeServer, Message: msg, StatusCode: resp.StatusCode}
}

// drainAndClose discards any remaining body so the connection can be
// reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, io.LimitReader(r, 64*1024))
	r.Close()
}
