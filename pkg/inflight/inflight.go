// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package inflight guards a view against stale responses.

A view that starts a new fetch while an older one is still outstanding must
never let the older fetch's result land after the newer one. [Tracker] keeps
a monotonically increasing sequence number per view:

	ctx, ticket := tracker.Begin(r.Context())
	page, err := source.ListCharacters(ctx, term, page)
	tracker.Settle(ticket, func() { ... apply page or err ... })

[Tracker.Begin] cancels the previous request's context, and [Tracker.Settle]
runs the apply function only while the ticket is still the latest and its
context has not ended. A request that ended without settling releases what
it raised through [Tracker.Abandon]. The apply function runs under the tracker lock, so two
settlements never interleave.
*/
package inflight

import (
	"context"
	"sync"
)

// Ticket identifies one request started by [Tracker.Begin].
type Ticket struct {
	seq uint64
	ctx context.Context
}

// Seq returns the ticket's sequence number.
func (t Ticket) Seq() uint64 {
	return t.seq
}

// Tracker orders the requests of one view.
//
// The zero value is ready to use.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a new request derived from parent and supersedes the previous one.
func (tracker *Tracker) Begin(parent context.Context) (context.Context, Ticket) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	if tracker.cancel != nil {
		tracker.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	tracker.seq++
	tracker.cancel = cancel

	return ctx, Ticket{seq: tracker.seq, ctx: ctx}
}

// Current returns the sequence number of the latest request.
func (tracker *Tracker) Current() uint64 {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	return tracker.seq
}

// Settle runs apply if ticket is still current and reports whether it ran.
func (tracker *Tracker) Settle(ticket Ticket, apply func()) bool {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	if !tracker.isCurrentLocked(ticket) {
		return false
	}

	apply()
	return true
}

// Abandon runs cleanup for a ticket that could not settle, provided no later
// request has begun. It reports whether cleanup ran.
//
// It is for state the request raised itself before its context ended, such
// as a loading flag; a newer request owns that state once it has begun.
func (tracker *Tracker) Abandon(ticket Ticket, cleanup func()) bool {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	if ticket.seq == 0 || ticket.seq != tracker.seq {
		return false
	}

	cleanup()
	return true
}

// Stop cancels the outstanding request, if any, and invalidates every ticket.
func (tracker *Tracker) Stop() {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	if tracker.cancel != nil {
		tracker.cancel()
		tracker.cancel = nil
	}
	tracker.seq++
}

func (tracker *Tracker) isCurrentLocked(ticket Ticket) bool {
	if ticket.seq != tracker.seq || ticket.ctx == nil {
		return false
	}
	return ticket.ctx.Err() == nil
}
