//go:build json

// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json2 "github.com/gorilla/rpc/v2/json2"
)

func init() {
	registerTransport(TransportJSON, dialJSON, listenJSON)
}

func listenJSON(addr string, o *serverOptions) (Server, error) {
	return nil, fmt.Errorf("transport: json is a client-only transport here")
}

func dialJSON(ctx context.Context, addr string, o *dialOptions) (Client, error) {
	base, err := url.Parse("http://" + addr + "/rpc")
	if err != nil {
		return nil, fmt.Errorf("transport: json dial: %w", err)
	}
	return &jsonClient{base: base}, nil
}

// RequestOption adjusts one outgoing JSON-RPC request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	query   url.Values
	headers http.Header
}

func newRequestOptions(opts []RequestOption) *requestOptions {
	o := &requestOptions{query: url.Values{}, headers: http.Header{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithQueryParam adds a URL query parameter to the request.
func WithQueryParam(key, value string) RequestOption {
	return func(o *requestOptions) { o.query.Add(key, value) }
}

// WithHeader sets an HTTP header on the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) { o.headers.Set(key, value) }
}

const (
	maxRetries    = 3
	retryBaseWait = 100 * time.Millisecond
)

// jsonClient implements Client over JSON-RPC 2.0 (gorilla/rpc's json2
// codec) carried on HTTP POST, for interop with peers that speak that
// protocol rather than this module's own wire format.
type jsonClient struct {
	base *url.URL
}

func (c *jsonClient) Call(ctx context.Context, method string, args, reply any) error {
	return sendJSONRequest(ctx, c.base, method, args, reply)
}

func (c *jsonClient) CallRaw(ctx context.Context, method string, payload []byte) ([]byte, error) {
	var resp []byte
	err := sendJSONRequest(ctx, c.base, method, payload, &resp)
	return resp, err
}

func (c *jsonClient) Notify(ctx context.Context, method string, args any) error {
	return sendJSONRequest(ctx, c.base, method, args, nil)
}

func (c *jsonClient) Close() error { return nil }

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

// drainAndClose drains and closes an HTTP response body, avoiding
// HTTP/2 GOAWAY errors caused by closing bodies with unread data. See
// https://github.com/golang/go/issues/46071.
func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	io.Copy(io.Discard, body)
	body.Close()
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "EOF") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "broken pipe")
}

func sendJSONRequest(ctx context.Context, base *url.URL, method string, params, reply any, opts ...RequestOption) error {
	body, err := json2.EncodeClientRequest(method, params)
	if err != nil {
		return fmt.Errorf("transport: encode client request: %w", err)
	}

	ro := newRequestOptions(opts)
	uri := *base
	uri.RawQuery = ro.query.Encode()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			wait := retryBaseWait * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri.String(), bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("transport: build request: %w", err)
		}
		req.Header = ro.headers.Clone()
		req.Header.Set("Content-Type", "application/json")

		resp, err := newHTTPClient().Do(req)
		if err != nil {
			lastErr = err
			if isRetryableError(err) {
				continue
			}
			return fmt.Errorf("transport: request: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			drainAndClose(resp.Body)
			return fmt.Errorf("transport: status %d", resp.StatusCode)
		}
		if reply == nil {
			drainAndClose(resp.Body)
			return nil
		}
		if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
			drainAndClose(resp.Body)
			return fmt.Errorf("transport: decode response: %w", err)
		}
		drainAndClose(resp.Body)
		return nil
	}

	return fmt.Errorf("transport: request failed after %d attempts: %w", maxRetries, lastErr)
}
