// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package payments provides the HTTP client for the Dodo Payments API.

Ritmus treats Dodo Payments as the billing system of record. Product
catalog entries, customers, and subscriptions live there; this package
exposes the subset of the API that the reconciler and checkout flows need.

Architecture:

  - Client: a thin wrapper over net/http with bearer auth, JSON codecs,
    and a circuit breaker guarding every call.
  - ProductIterator: lazy page-by-page iteration over the product catalog,
    modeled after database row cursors (Next / Product / Err).

All methods take a [context.Context] and honor its cancellation.
*/
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// # Environments

// Environment selects which Dodo Payments deployment the client talks to.
type Environment string

const (
	// EnvironmentTest targets the sandbox deployment. Safe for development.
	EnvironmentTest Environment = "test_mode"

	// EnvironmentLive targets the production deployment. Real money.
	EnvironmentLive Environment = "live_mode"
)

// BaseURL returns the API origin for the environment. Unknown values
// fall back to the sandbox so a misconfigured deploy cannot charge anyone.
func (e Environment) BaseURL() string {
	if e == EnvironmentLive {
		return "https://live.dodopayments.com"
	}
	return "https://test.dodopayments.com"
}

// # Errors

// APIError is returned when Dodo Payments answers with a non-2xx status.
type APIError struct {
	// StatusCode is the HTTP status of the failed response.
	StatusCode int
	// Body is the raw response body, truncated for logging.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("payments: upstream returned status %d: %s", e.StatusCode, e.Body)
}

// # Client

// Client is the Dodo Payments API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a payments client for the given environment.
//
// A circuit breaker wraps every request so a degraded upstream fails fast
// instead of holding worker goroutines on slow sockets.
func NewClient(apiKey string, environment Environment, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dodo-payments",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("payments circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: environment.BaseURL(),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		breaker: breaker,
		logger:  logger,
	}
}

/*
do executes a single authenticated API request through the circuit breaker.

Parameters:
  - ctx: request-scoped context, honored for cancellation.
  - method: HTTP method.
  - path: API path starting with "/".
  - query: optional query parameters, may be nil.
  - body: optional request payload, JSON-encoded when non-nil.
  - out: optional response target, JSON-decoded into when non-nil.

Returns:
  - [*APIError] when the upstream answers with a non-2xx status.
  - [gobreaker.ErrOpenState] when the breaker is rejecting calls.
*/
func (client *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	_, err := client.breaker.Execute(func() (any, error) {
		return nil, client.doOnce(ctx, method, path, query, body, out)
	})
	return err
}

func (client *Client) doOnce(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("payments: failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("payments: failed to build request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+client.apiKey)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("payments: request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(response.Body, 2048))
		client.logger.Error("payments upstream error",
			"method", method, "path", path, "status", response.StatusCode)
		return &APIError{StatusCode: response.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(response.Body).Decode(out); err != nil {
			return fmt.Errorf("payments: failed to decode response: %w", err)
		}
	}

	return nil
}
