// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package report is the external reporting channel for render failures.

When a visitor presses "Report Issue" on a boundary fallback, the handler
builds a [boundary.Diagnostic], hands it to a [Dispatcher] and immediately
redirects the browser to a pre-filled mail composer ([MailtoURL]). Delivery
is fire-and-forget: the visitor never waits on it and nothing about its
outcome is shown.

Reporters:

  - [PostgresReporter]: inserts into diagnostics.error_report.
  - [LogReporter]: writes a structured log line (used when no database is configured).
*/
package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/charadex/internal/boundary"
)

// defaultDeliveryTimeout bounds one background delivery.
const defaultDeliveryTimeout = 5 * time.Second

// Reporter delivers a diagnostic somewhere durable.
type Reporter interface {
	Report(ctx context.Context, diagnostic boundary.Diagnostic) error
}

// # Dispatch

// Dispatcher runs deliveries in the background.
type Dispatcher struct {
	reporter Reporter
	logger   *slog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher delivering to reporter.
func NewDispatcher(reporter Reporter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		reporter: reporter,
		logger:   logger,
		timeout:  defaultDeliveryTimeout,
	}
}

// Dispatch starts delivering diagnostic and returns at once.
//
// The delivery does not inherit any request context, so it survives the
// redirect that follows. Failures are logged and otherwise dropped.
func (dispatcher *Dispatcher) Dispatch(diagnostic boundary.Diagnostic) {
	dispatcher.wg.Add(1)

	go func() {
		defer dispatcher.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatcher.timeout)
		defer cancel()

		if err := dispatcher.reporter.Report(ctx, diagnostic); err != nil {
			dispatcher.logger.Warn("error_report_delivery_failed",
				slog.String("boundary", diagnostic.Boundary),
				slog.Any("error", err),
			)
		}
	}()
}

// Wait blocks until every dispatched delivery has finished.
func (dispatcher *Dispatcher) Wait() {
	dispatcher.wg.Wait()
}

// # Mail Composer

/*
MailtoURL builds the mail composer link for diagnostic.

The body is "Error Details:" followed by the diagnostic as indented JSON.
Spaces are encoded as %20, since mail clients do not decode '+'.
*/
func MailtoURL(address string, diagnostic boundary.Diagnostic) string {
	payload, err := json.MarshalIndent(diagnostic, "", "  ")
	if err != nil {
		payload = []byte(diagnostic.Message)
	}

	body := "Error Details:\n\n" + string(payload)

	return "mailto:" + address +
		"?subject=" + encodeComponent("Error Report") +
		"&body=" + encodeComponent(body)
}

func encodeComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// # Log Reporter

// LogReporter writes diagnostics to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report implements [Reporter].
func (reporter *LogReporter) Report(ctx context.Context, diagnostic boundary.Diagnostic) error {
	reporter.logger.ErrorContext(ctx, "error_report_received",
		slog.String("boundary", diagnostic.Boundary),
		slog.String("view", diagnostic.View),
		slog.String("message", diagnostic.Message),
		slog.String("trace", diagnostic.Trace),
		slog.String("user_agent", diagnostic.UserAgent),
		slog.String("url", diagnostic.URL),
		slog.Time("timestamp", diagnostic.Timestamp),
	)
	return nil
}
