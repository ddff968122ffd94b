// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package upstream provides the HTTP client for the agent service.
//
// All calls are at-most-once: the client never retries, and every failure is
// classified into one of four kinds (connection, timeout, bad status, parse)
// so callers can apply their own degradation policy. The underlying
// http.Client is injected and shared across requests; connection pooling is
// its responsibility, not this package's.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
)

// =============================================================================
// Outcome Classification
// =============================================================================

// ErrorKind classifies an upstream call failure.
type ErrorKind string

const (
	// KindConnectionFailed means the upstream was unreachable.
	KindConnectionFailed ErrorKind = "connection_failed"

	// KindTimeout means the call exceeded its deadline.
	KindTimeout ErrorKind = "timeout"

	// KindBadStatus means the upstream answered with a non-2xx status.
	KindBadStatus ErrorKind = "bad_status"

	// KindParseFailed means the upstream body did not decode.
	KindParseFailed ErrorKind = "parse_failed"
)

// Error is a classified upstream failure. Status is set only for
// KindBadStatus.
type Error struct {
	Kind   ErrorKind
	Detail string
	Status int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnectionFailed:
		return fmt.Sprintf("connection error: %s", e.Detail)
	case KindTimeout:
		return "request timed out"
	case KindBadStatus:
		return fmt.Sprintf("service returned status %d", e.Status)
	default:
		return fmt.Sprintf("parse error: %s", e.Detail)
	}
}

// AsError extracts the classified form from an error returned by this
// package. ok is false for errors from other sources.
func AsError(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// =============================================================================
// Client
// =============================================================================

// Client issues JSON calls to the upstream agent service.
//
// Thread-safe: all fields are read-only after construction and the shared
// http.Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// New creates a Client for the given base URL. The http.Client is shared and
// injected; pass nil to fall back to http.DefaultClient. A non-positive
// timeout defaults to 30 seconds.
func New(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends one chat request to POST {base}/chat and decodes the reply.
// The configured timeout bounds the whole call. The returned error, when
// non-nil, is always an *Error.
func (c *Client) Chat(ctx context.Context, req *datatypes.ChatRequest) (*datatypes.ChatReply, error) {
	raw, _, err := c.PostJSON(ctx, "/chat", req)
	if err != nil {
		return nil, err
	}

	var reply datatypes.ChatReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, &Error{Kind: KindParseFailed, Detail: err.Error()}
	}
	return &reply, nil
}

// GetJSON issues a GET to {base}{path} with optional query parameters and
// returns the raw body. Used by the pass-through proxy routes. A non-2xx
// status is returned as KindBadStatus carrying the numeric code; callers
// that need to forward specific statuses (404 on project lookup) inspect
// Error.Status.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, &Error{Kind: KindConnectionFailed, Detail: err.Error()}
	}
	return c.do(httpReq)
}

// PostJSON issues a POST with a JSON body to {base}{path} and returns the
// raw response body.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (json.RawMessage, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, &Error{Kind: KindParseFailed, Detail: fmt.Sprintf("encode request: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, &Error{Kind: KindConnectionFailed, Detail: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (json.RawMessage, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, &Error{Kind: KindTimeout, Detail: err.Error()}
		}
		return nil, 0, &Error{Kind: KindConnectionFailed, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, &Error{Kind: KindTimeout, Detail: err.Error()}
		}
		return nil, 0, &Error{Kind: KindConnectionFailed, Detail: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &Error{
			Kind:   KindBadStatus,
			Detail: fmt.Sprintf("upstream returned status %d", resp.StatusCode),
			Status: resp.StatusCode,
		}
	}

	if !json.Valid(body) {
		return nil, resp.StatusCode, &Error{Kind: KindParseFailed, Detail: "response body is not valid JSON"}
	}
	return body, resp.StatusCode, nil
}
