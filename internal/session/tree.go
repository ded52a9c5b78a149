// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the per-visitor application trees.

Each browser carries one signed cookie naming its session. The server keeps
a [Tree] per session: the search state store, the render-failure boundaries,
the request trackers of the results and details views, and the listing the
results view last applied. Trees live in memory and are evicted after an
idle period; the persisted preferences (term and theme) outlive them in the
key-value store and seed the next tree.
*/
package session

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/charadex/internal/boundary"
	"github.com/taibuivan/charadex/internal/catalog"
	"github.com/taibuivan/charadex/internal/platform/ctxkey"
	"github.com/taibuivan/charadex/internal/search"
	"github.com/taibuivan/charadex/pkg/inflight"
)

// Boundary names of a tree.
const (
	BoundaryResults = "results"
	BoundaryDetails = "details"
)

// Listing is the data the results view last applied.
type Listing struct {
	Term string
	Page int
	Data *catalog.Page
}

// Matches reports whether the listing was fetched for term and page.
func (listing Listing) Matches(term string, page int) bool {
	return listing.Term == term && listing.Page == page
}

// Tree is the application state of one session.
type Tree struct {
	ID         string
	Store      *search.Store
	Boundaries *boundary.Set

	// Results orders the listing fetches; Details the detail loader fetches.
	Results inflight.Tracker
	Details inflight.Tracker

	mu         sync.Mutex
	listing    *Listing
	mounted    bool
	faultArmed bool
	lastSeen   time.Time
}

func newTree(id string, store *search.Store, boundaries *boundary.Set, now time.Time) *Tree {
	return &Tree{
		ID:         id,
		Store:      store,
		Boundaries: boundaries,
		lastSeen:   now,
	}
}

// Mount marks the tree as mounted and reports whether this was the first time.
func (tree *Tree) Mount() bool {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	first := !tree.mounted
	tree.mounted = true
	return first
}

// Listing returns the last applied listing.
func (tree *Tree) Listing() (Listing, bool) {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	if tree.listing == nil {
		return Listing{}, false
	}
	return *tree.listing, true
}

// SetListing replaces the applied listing wholesale.
func (tree *Tree) SetListing(listing Listing) {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	tree.listing = &listing
}

// ClearListing drops the applied listing.
func (tree *Tree) ClearListing() {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	tree.listing = nil
}

// ArmFault makes the next results render fail once.
func (tree *Tree) ArmFault() {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	tree.faultArmed = true
}

// TakeFault reports whether a fault was armed, disarming it.
func (tree *Tree) TakeFault() bool {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	armed := tree.faultArmed
	tree.faultArmed = false
	return armed
}

// Boundary returns the named boundary. It panics for a name the tree was not built with.
func (tree *Tree) Boundary(name string) *boundary.Boundary {
	b, found := tree.Boundaries.Get(name)
	if !found {
		panic("session: unknown boundary " + name)
	}
	return b
}

func (tree *Tree) touch(now time.Time) {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	tree.lastSeen = now
}

func (tree *Tree) idleSince() time.Time {
	tree.mu.Lock()
	defer tree.mu.Unlock()

	return tree.lastSeen
}

// stop cancels anything still in flight for the tree.
func (tree *Tree) stop() {
	tree.Results.Stop()
	tree.Details.Stop()
}

// # Context

// WithTree returns a new context carrying tree.
func WithTree(ctx context.Context, tree *Tree) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, tree)
}

// FromContext retrieves the tree attached by [Manager.Middleware].
func FromContext(ctx context.Context) (*Tree, bool) {
	tree, ok := ctx.Value(ctxkey.KeySession).(*Tree)
	return tree, ok && tree != nil
}
