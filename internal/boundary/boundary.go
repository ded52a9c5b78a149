// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package boundary contains render failures to one section of a page.

A [Boundary] wraps the rendering of a subtree. The subtree is rendered into a
buffer first; if it returns an error or panics, nothing of it reaches the
response. The boundary moves to the Failed state instead and writes a
recoverable fallback, while the rest of the page renders normally.

States:

	Healthy ──render error / panic──▶ Failed(err, trace, retryCount)
	Failed  ──Retry (retryCount < max)──▶ Healthy, retryCount+1
	Failed  ──Reload──▶ Healthy, retryCount = 0

There is no automatic recovery. Fetch failures never reach a boundary; they
are state and are rendered as such by the views.
*/
package boundary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// DefaultMaxRetries is how many times the built-in fallback offers Retry.
const DefaultMaxRetries = 3

// RenderFunc renders a subtree to w.
type RenderFunc func(w io.Writer) error

// Options configures a [Boundary].
type Options struct {
	// MaxRetries caps Retry; zero means [DefaultMaxRetries].
	MaxRetries int

	// Fallback replaces the built-in fallback when set. It is rendered as is.
	Fallback RenderFunc

	// OnError observes every transition into Failed. It is not guarded: a
	// panic raised here propagates to the caller.
	OnError func(err error, trace Trace)

	// ShowDetails adds the error message, stack, and trace to the built-in fallback.
	ShowDetails bool

	// ActionPrefix is the path the fallback's buttons post to, followed by
	// "{name}/{action}". Defaults to "/boundary/".
	ActionPrefix string
}

// Frame describes the render about to happen.
type Frame struct {
	// View names the subtree being rendered (e.g. "results-grid").
	View string

	// ReturnPath is where the fallback's actions send the visitor back to.
	ReturnPath string
}

// Trace is the structural location of a failure.
type Trace struct {
	Boundary string `json:"boundary"`
	View     string `json:"view"`
	Stack    string `json:"stack,omitempty"`
}

// String renders the trace innermost first.
func (t Trace) String() string {
	return fmt.Sprintf("in %s\nin boundary(%s)", t.View, t.Boundary)
}

// Failure is the state captured when a render fails.
type Failure struct {
	Err        error
	Trace      Trace
	RetryCount int
	At         time.Time
}

// PanicError wraps a value recovered from a panicking render.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("render panic: %v", e.Value)
}

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Boundary guards one named section.
//
// # Concurrency
//
// State transitions are serialised by a mutex. The subtree itself renders
// outside the lock, and OnError is invoked outside it as well.
type Boundary struct {
	name string
	opts Options
	now  func() time.Time

	mu         sync.Mutex
	failure    *Failure
	retryCount int
}

// New creates a Healthy boundary.
func New(name string, opts Options) *Boundary {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.ActionPrefix == "" {
		opts.ActionPrefix = "/boundary/"
	}

	return &Boundary{name: name, opts: opts, now: time.Now}
}

// Name returns the boundary's name.
func (b *Boundary) Name() string {
	return b.name
}

/*
Render writes the subtree, or the fallback if the boundary is or becomes Failed.

Returns:
  - error: Only failures writing to w (or rendering a caller-supplied
    fallback). Render failures of the subtree are absorbed.
*/
func (b *Boundary) Render(w io.Writer, frame Frame, render RenderFunc) error {
	if failure, failed := b.Failure(); failed {
		return b.writeFallback(w, frame, failure)
	}

	var buffer bytes.Buffer
	stack, err := renderGuarded(&buffer, render)
	if err == nil {
		_, werr := buffer.WriteTo(w)
		return werr
	}

	trace := Trace{Boundary: b.name, View: frame.View, Stack: stack}

	b.mu.Lock()
	failure := Failure{Err: err, Trace: trace, RetryCount: b.retryCount, At: b.now()}
	b.failure = &failure
	b.mu.Unlock()

	if b.opts.OnError != nil {
		b.opts.OnError(err, trace)
	}

	return b.writeFallback(w, frame, failure)
}

// Failure returns the captured failure while the boundary is Failed.
func (b *Boundary) Failure() (Failure, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure == nil {
		return Failure{}, false
	}
	return *b.failure, true
}

// CanRetry reports whether Retry would be accepted.
func (b *Boundary) CanRetry() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.retryCount < b.opts.MaxRetries
}

// RetryCount returns how many retries were used since the last reload.
func (b *Boundary) RetryCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.retryCount
}

// MaxRetries returns the retry cap.
func (b *Boundary) MaxRetries() int {
	return b.opts.MaxRetries
}

// Retry moves a Failed boundary back to Healthy and uses up one retry.
// It reports false, changing nothing, when the boundary is Healthy or out of retries.
func (b *Boundary) Retry() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failure == nil || b.retryCount >= b.opts.MaxRetries {
		return false
	}

	b.failure = nil
	b.retryCount++
	return true
}

// Reload returns the boundary to its initial state.
func (b *Boundary) Reload() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failure = nil
	b.retryCount = 0
}

// Diagnostic is the payload handed to the reporting channel.
type Diagnostic struct {
	Boundary  string    `json:"boundary"`
	View      string    `json:"view"`
	Message   string    `json:"message"`
	Stack     string    `json:"stack"`
	Trace     string    `json:"trace"`
	UserAgent string    `json:"userAgent"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// Diagnostic assembles the report for the current failure.
// It reports false while the boundary is Healthy.
func (b *Boundary) Diagnostic(userAgent, url string, now time.Time) (Diagnostic, bool) {
	failure, failed := b.Failure()
	if !failed {
		return Diagnostic{}, false
	}

	return Diagnostic{
		Boundary:  b.name,
		View:      failure.Trace.View,
		Message:   failure.Err.Error(),
		Stack:     failure.Trace.Stack,
		Trace:     failure.Trace.String(),
		UserAgent: userAgent,
		URL:       url,
		Timestamp: now.UTC(),
	}, true
}

// renderGuarded runs render, converting a panic into a [*PanicError].
func renderGuarded(w io.Writer, render RenderFunc) (stack string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			trace := debug.Stack()
			stack, err = string(trace), &PanicError{Value: recovered, Stack: trace}
		}
	}()

	if err := render(w); err != nil {
		return errorChain(err), err
	}
	return "", nil
}

// errorChain lists err and its wrapped causes, one per line.
func errorChain(err error) string {
	var lines []string
	for current := err; current != nil; current = errors.Unwrap(current) {
		lines = append(lines, fmt.Sprintf("%T: %v", current, current))
	}
	return strings.Join(lines, "\n")
}
