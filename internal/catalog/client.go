// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/charadex/internal/platform/apperr"
	"github.com/taibuivan/charadex/internal/platform/constants"
	"github.com/taibuivan/charadex/internal/platform/ctxutil"
)

// Source is what the views need from the catalog.
type Source interface {
	// ListCharacters returns one page of characters whose name matches term.
	ListCharacters(ctx context.Context, term string, page int) (*Page, error)

	// GetCharacter returns a single character.
	GetCharacter(ctx context.Context, id int) (*Character, error)
}

// Client implements [Source] over HTTP.
//
// # Concurrency
//
// Client is immutable after construction and safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a catalog client.
//
// A zero timeout falls back to [constants.CatalogRequestTimeout]; a nil
// httpClient to a fresh [http.Client] without its own deadline (the per-call
// context carries it).
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = constants.CatalogRequestTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
	}
}

/*
ListCharacters fetches one page of the character listing.

The name filter is omitted when term is blank after trimming, and the page
parameter when page <= 1:

	("", 1)       → /character
	("Morty", 3)  → /character?name=Morty&page=3

Returns:
  - *Page: The decoded page
  - error: *apperr.AppError, see [KindOf]
*/
func (client *Client) ListCharacters(ctx context.Context, term string, page int) (*Page, error) {
	endpoint := client.baseURL + "/character"
	if query := ListQuery(term, page).Encode(); query != "" {
		endpoint += "?" + query
	}

	var result Page
	if err := client.get(ctx, endpoint, "Characters", &result); err != nil {
		return nil, err
	}

	return &result, nil
}

/*
GetCharacter fetches a single character by ID.

Returns:
  - *Character: The decoded character
  - error: *apperr.AppError; an unknown ID yields a NOT_FOUND flavoured failure
*/
func (client *Client) GetCharacter(ctx context.Context, id int) (*Character, error) {
	endpoint := client.baseURL + "/character/" + strconv.Itoa(id)

	var result Character
	if err := client.get(ctx, endpoint, "Character", &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListQuery builds the query string of a listing request.
func ListQuery(term string, page int) url.Values {
	query := url.Values{}

	if trimmed := strings.TrimSpace(term); trimmed != "" {
		query.Set("name", trimmed)
	}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	return query
}

// get performs one GET against endpoint and decodes the JSON body into target.
func (client *Client) get(ctx context.Context, endpoint, resource string, target any) error {
	logger := ctxutil.GetLogger(ctx)
	startTime := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperr.Internal(fmt.Errorf("catalog: build request: %w", err))
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		failure := classify(ctx, callCtx, err)
		logFailure(ctx, logger, endpoint, failure)
		return failure
	}
	defer response.Body.Close()

	// 1. Status
	if response.StatusCode < 200 || response.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4096))

		var failure *apperr.AppError
		if response.StatusCode == http.StatusNotFound {
			failure = apperr.UpstreamNotFound(resource)
		} else {
			failure = apperr.RequestFailed(response.StatusCode)
		}
		logFailure(ctx, logger, endpoint, failure)
		return failure
	}

	// 2. Body (a deadline can still fire while reading)
	body, err := io.ReadAll(io.LimitReader(response.Body, constants.CatalogMaxBodyBytes))
	if err != nil {
		failure := classify(ctx, callCtx, err)
		logFailure(ctx, logger, endpoint, failure)
		return failure
	}

	// 3. Decode
	if err := json.Unmarshal(body, target); err != nil {
		failure := apperr.Decode(fmt.Errorf("catalog: decode %s: %w", resource, err))
		logFailure(ctx, logger, endpoint, failure)
		return failure
	}

	logger.DebugContext(ctx, "catalog_request_finished",
		slog.String("endpoint", endpoint),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	return nil
}

// classify turns a transport error into the matching failure.
//
// The caller's context is checked first: a request abandoned by its caller
// is a cancellation even though the transport reports it as an error.
func classify(parent, call context.Context, err error) *apperr.AppError {
	if errors.Is(parent.Err(), context.Canceled) {
		return apperr.Canceled(err)
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.RequestTimeout(err)
	}
	return apperr.Network(err)
}

func logFailure(ctx context.Context, logger *slog.Logger, endpoint string, failure *apperr.AppError) {
	level := slog.LevelWarn
	if failure.Code == apperr.CodeCanceled || failure.Code == apperr.CodeNotFound {
		level = slog.LevelDebug
	}

	logger.Log(ctx, level, "catalog_request_failed",
		slog.String("endpoint", endpoint),
		slog.String("code", failure.Code),
		slog.Int("upstream_status", failure.UpstreamStatus),
		slog.Any("cause", failure.Cause),
	)
}
