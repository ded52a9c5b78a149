// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/taibuivan/charadex/internal/boundary"
	"github.com/taibuivan/charadex/internal/platform/constants"
	"github.com/taibuivan/charadex/internal/platform/ctxutil"
	"github.com/taibuivan/charadex/internal/platform/kvstore"
	"github.com/taibuivan/charadex/internal/platform/sec"
	"github.com/taibuivan/charadex/internal/search"
	"github.com/taibuivan/charadex/pkg/uuidv7"
)

// Options configures a [Manager].
type Options struct {
	// IdleTTL is how long an unused tree is kept in memory.
	IdleTTL time.Duration

	// SecureCookie sets the Secure attribute on the session cookie.
	SecureCookie bool

	// Boundaries is applied to every boundary of every tree.
	Boundaries boundary.Options
}

// Manager creates, finds, and evicts session trees.
//
// # Concurrency
//
// The tree table is guarded by a mutex; trees themselves synchronise their own state.
type Manager struct {
	tokens *sec.SessionTokens
	kv     *kvstore.Adapter
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	trees map[string]*Tree
}

// NewManager creates a Manager. Preferences are persisted under kv, one scope per session.
func NewManager(tokens *sec.SessionTokens, kv *kvstore.Adapter, opts Options, logger *slog.Logger) *Manager {
	return &Manager{
		tokens: tokens,
		kv:     kv,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		trees:  make(map[string]*Tree),
	}
}

// Middleware attaches the visitor's tree to the request context.
//
// A request without a valid cookie starts a new session and receives a fresh
// cookie. A valid cookie whose tree was evicted gets a new tree seeded from
// the persisted preferences.
func (manager *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		logger := ctxutil.GetLogger(request.Context())

		sessionID := manager.sessionID(request)
		if sessionID == "" {
			sessionID = uuidv7.New()

			token, err := manager.tokens.Issue(sessionID)
			if err != nil {
				logger.Error("session_token_issue_failed", slog.Any("error", err))
			} else {
				http.SetCookie(writer, manager.cookie(token))
			}
		}

		tree := manager.Acquire(sessionID)
		next.ServeHTTP(writer, request.WithContext(WithTree(request.Context(), tree)))
	})
}

// Acquire returns the tree of sessionID, creating it if needed, and marks it as used.
func (manager *Manager) Acquire(sessionID string) *Tree {
	now := manager.now()

	manager.mu.Lock()
	defer manager.mu.Unlock()

	if tree, found := manager.trees[sessionID]; found {
		tree.touch(now)
		return tree
	}

	storeLogger := manager.logger.With(slog.String("session", sessionID))
	store := search.NewStore(manager.kv.Scope(sessionID), storeLogger)
	store.OnChange(func(state search.State) {
		storeLogger.Debug("search_state_changed",
			slog.String("term", state.SearchTerm),
			slog.Int("page", state.CurrentPage),
			slog.Bool("loading", state.IsLoading),
			slog.String("error", state.Error),
			slog.String("theme", string(state.Theme)),
		)
	})
	boundaries := boundary.NewSet(manager.opts.Boundaries, BoundaryResults, BoundaryDetails)

	tree := newTree(sessionID, store, boundaries, now)
	manager.trees[sessionID] = tree

	manager.logger.Debug("session_tree_created", slog.String("session", sessionID))
	return tree
}

// Len returns the number of live trees.
func (manager *Manager) Len() int {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	return len(manager.trees)
}

// Sweep evicts trees idle for longer than IdleTTL and returns how many went.
func (manager *Manager) Sweep() int {
	cutoff := manager.now().Add(-manager.opts.IdleTTL)

	manager.mu.Lock()
	defer manager.mu.Unlock()

	evicted := 0
	for id, tree := range manager.trees {
		if tree.idleSince().Before(cutoff) {
			tree.stop()
			delete(manager.trees, id)
			evicted++
		}
	}

	return evicted
}

// Run sweeps idle trees periodically until ctx is cancelled.
func (manager *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := manager.Sweep(); evicted > 0 {
				manager.logger.Debug("session_trees_evicted", slog.Int("count", evicted))
			}
		case <-ctx.Done():
			return
		}
	}
}

// sessionID returns the verified session ID of the request, or "".
func (manager *Manager) sessionID(request *http.Request) string {
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	sessionID, err := manager.tokens.Verify(cookie.Value)
	if err != nil {
		ctxutil.GetLogger(request.Context()).Debug("session_cookie_rejected", slog.Any("error", err))
		return ""
	}

	return sessionID
}

func (manager *Manager) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(manager.tokens.TimeToLive().Seconds()),
		HttpOnly: true,
		Secure:   manager.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
