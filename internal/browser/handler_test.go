// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/charadex/internal/boundary"
	"github.com/taibuivan/charadex/internal/catalog"
	"github.com/taibuivan/charadex/internal/catalog/catalogtest"
	"github.com/taibuivan/charadex/internal/platform/apperr"
	"github.com/taibuivan/charadex/internal/platform/constants"
	"github.com/taibuivan/charadex/internal/platform/ctxutil"
	"github.com/taibuivan/charadex/internal/platform/kvstore"
	"github.com/taibuivan/charadex/internal/platform/sec"
	"github.com/taibuivan/charadex/internal/report"
	"github.com/taibuivan/charadex/internal/search"
	"github.com/taibuivan/charadex/internal/session"
)

const testSession = "session-under-test"

type recordingReporter struct {
	mu          sync.Mutex
	diagnostics []boundary.Diagnostic
}

func (r *recordingReporter) Report(_ context.Context, diagnostic boundary.Diagnostic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.diagnostics = append(r.diagnostics, diagnostic)
	return nil
}

type harness struct {
	handler    *Handler
	router     http.Handler
	tree       *session.Tree
	fake       *catalogtest.Fake
	reporter   *recordingReporter
	dispatcher *report.Dispatcher
	kv         *kvstore.Adapter
	logs       *bytes.Buffer
}

// newHarness serves the handler with a fixed session tree. remembered, when
// non-empty, is stored as the session's term before the tree is built.
func newHarness(t *testing.T, fake *catalogtest.Fake, remembered string) *harness {
	t.Helper()
	return newHarnessWith(t, fake, remembered, boundary.Options{})
}

// newHarnessWith is newHarness with the given boundary options.
func newHarnessWith(t *testing.T, fake *catalogtest.Fake, remembered string, boundaries boundary.Options) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := sec.NewSessionTokens("test-session-secret", constants.SessionIssuer, time.Hour)
	require.NoError(t, err)

	kv := kvstore.New(kvstore.NewMemoryBackend(), logger)
	if remembered != "" {
		require.True(t, kv.Scope(testSession).Set(constants.KeySearchTerm, remembered))
	}

	manager := session.NewManager(tokens, kv, session.Options{IdleTTL: time.Hour, Boundaries: boundaries}, logger)
	tree := manager.Acquire(testSession)

	reporter := &recordingReporter{}
	dispatcher := report.NewDispatcher(reporter, logger)

	handler := NewHandler(fake, dispatcher, Options{SupportEmail: "support@example.com", Development: true})
	handler.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	routes := handler.Routes()

	logs := &bytes.Buffer{}
	requestLogger := slog.New(slog.NewTextHandler(logs, nil))

	return &harness{
		handler: handler,
		router: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxutil.WithLogger(session.WithTree(r.Context(), tree), requestLogger)
			routes.ServeHTTP(w, r.WithContext(ctx))
		}),
		tree:       tree,
		fake:       fake,
		reporter:   reporter,
		dispatcher: dispatcher,
		kv:         kv,
		logs:       logs,
	}
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, target, nil)
	request.Header.Set(constants.HeaderAccept, "text/html")

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)
	return recorder
}

func (h *harness) post(target string, form url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("User-Agent", "Mozilla/5.0 (test)")

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)
	return recorder
}

func returning(pages int, names ...string) func(ctx context.Context, term string, page int) (*catalog.Page, error) {
	return func(ctx context.Context, term string, page int) (*catalog.Page, error) {
		return catalogtest.PageOf(pages, names...), nil
	}
}

/*
TestShowResults_ReadsURL verifies that the URL's term and page reach the
store and the catalog.
*/
func TestShowResults_ReadsURL(t *testing.T) {
	fake := &catalogtest.Fake{ListFunc: returning(3, "Morty Smith", "Evil Morty")}
	h := newHarness(t, fake, "")

	recorder := h.get("/results?q=Morty&page=2")
	require.Equal(t, http.StatusOK, recorder.Code)

	state := h.tree.Store.Snapshot()
	assert.Equal(t, "Morty", state.SearchTerm)
	assert.Equal(t, 2, state.CurrentPage)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)

	assert.Equal(t, []catalogtest.ListCall{{Term: "Morty", Page: 2}}, fake.ListCalls())

	body := recorder.Body.String()
	assert.Contains(t, body, "Morty Smith")
	assert.Contains(t, body, "Found 2 characters")
	assert.Contains(t, body, "Page 2 of 3")
	assert.Contains(t, body, `href="/results?q=Morty&amp;page=3"`)
	assert.Contains(t, body, `href="/results/1?q=Morty&amp;page=2"`)
	assert.Contains(t, body, "Searching for: <strong>&ldquo;Morty&rdquo;</strong>")
}

/*
TestSubmitSearch verifies an explicit submit commits the trimmed term and
sends the visitor to its first page without a page parameter.
*/
func TestSubmitSearch(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{ListFunc: returning(5, "Rick Sanchez")}, "")

	h.get("/results/2?q=Rick&page=3")
	require.Equal(t, 3, h.tree.Store.Snapshot().CurrentPage)

	recorder := h.post("/search", url.Values{"q": {"  Rick  "}})
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/results?q=Rick", recorder.Header().Get("Location"))

	state := h.tree.Store.Snapshot()
	assert.Equal(t, "Rick", state.SearchTerm)
	assert.Equal(t, 1, state.CurrentPage)

	var stored string
	assert.True(t, h.kv.Scope(testSession).Load(constants.KeySearchTerm, &stored))
	assert.Equal(t, "Rick", stored)
}

/*
TestSubmitSearch_TooLong verifies oversized terms are rejected.
*/
func TestSubmitSearch_TooLong(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{}, "")

	recorder := h.post("/search", url.Values{"q": {strings.Repeat("r", MaxTermLength+1)}})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), apperr.CodeValidation)
	assert.Empty(t, h.tree.Store.Snapshot().SearchTerm)
}

/*
TestCanonicalRedirects verifies non-canonical queries redirect to their
canonical form.
*/
func TestCanonicalRedirects(t *testing.T) {
	tests := []struct {
		target   string
		location string
	}{
		{"/results?page=1", "/results"},
		{"/results?q=%20Rick%20", "/results?q=Rick"},
		{"/results?q=", "/results"},
		{"/results?q=Rick&page=abc", "/results?q=Rick"},
		{"/results?q=Rick&page=0", "/results?q=Rick"},
		{"/?q=Rick&page=02", "/?q=Rick&page=2"},
		{"/results/4?q=Rick&page=1", "/results/4?q=Rick"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			h := newHarness(t, &catalogtest.Fake{}, "")

			recorder := h.get(tt.target)
			assert.Equal(t, http.StatusFound, recorder.Code)
			assert.Equal(t, tt.location, recorder.Header().Get("Location"))
			assert.Empty(t, h.fake.ListCalls())
		})
	}
}

/*
TestFirstMount_RestoresTerm verifies a remembered term is restored on the
first visit only; afterwards the URL wins.
*/
func TestFirstMount_RestoresTerm(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{ListFunc: returning(1, "Rick Sanchez")}, "Rick")

	recorder := h.get("/results?page=2")
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/results?q=Rick&page=2", recorder.Header().Get("Location"))

	recorder = h.get("/results")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, h.tree.Store.Snapshot().SearchTerm)
}

/*
TestFirstMount_URLTermWins verifies a term in the URL beats the remembered one.
*/
func TestFirstMount_URLTermWins(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{ListFunc: returning(1, "Morty Smith")}, "Rick")

	recorder := h.get("/results?q=Morty")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Morty", h.tree.Store.Snapshot().SearchTerm)
}

/*
TestShowResults_StaleResponse verifies a listing that settles after a newer
one was applied never overwrites it.
*/
func TestShowResults_StaleResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	fake := &catalogtest.Fake{
		ListFunc: func(ctx context.Context, term string, page int) (*catalog.Page, error) {
			if term == "Rick" {
				close(started)
				<-release
				return catalogtest.PageOf(1, "Rick Sanchez"), nil
			}
			return catalogtest.PageOf(1, "Morty Smith"), nil
		},
	}
	h := newHarness(t, fake, "")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.get("/results?q=Rick")
	}()

	<-started
	recorder := h.get("/results?q=Morty")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Morty Smith")

	close(release)
	wg.Wait()

	listing, found := h.tree.Listing()
	require.True(t, found)
	assert.Equal(t, "Morty", listing.Term)
	assert.Equal(t, "Morty Smith", listing.Data.Results[0].Name)

	state := h.tree.Store.Snapshot()
	assert.Equal(t, "Morty", state.SearchTerm)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)
}

/*
TestShowResults_AbortedRequest verifies a results request that ends before
its fetch settles leaves no loading flag behind, so later views still show
the listing.
*/
func TestShowResults_AbortedRequest(t *testing.T) {
	fake := &catalogtest.Fake{ListFunc: returning(1, "Rick Sanchez")}
	h := newHarness(t, fake, "")

	require.Equal(t, http.StatusOK, h.get("/results?q=Rick").Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	request := httptest.NewRequest(http.MethodGet, "/results?q=Rick", nil).WithContext(ctx)
	request.Header.Set(constants.HeaderAccept, "text/html")
	h.router.ServeHTTP(httptest.NewRecorder(), request)

	state := h.tree.Store.Snapshot()
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)

	for i := 0; i < 3; i++ {
		body := h.get("/results/1?q=Rick").Body.String()
		assert.Contains(t, body, "Rick Sanchez")
		assert.NotContains(t, body, `class="loader"`)
	}
	assert.False(t, h.tree.Store.Snapshot().IsLoading)
	assert.Len(t, fake.ListCalls(), 2)
}

/*
TestShowDetails_RefetchesUnsettledListing verifies the details route does
not reuse a listing while the store still reports loading.
*/
func TestShowDetails_RefetchesUnsettledListing(t *testing.T) {
	fake := &catalogtest.Fake{ListFunc: returning(1, "Rick Sanchez")}
	h := newHarness(t, fake, "")

	require.Equal(t, http.StatusOK, h.get("/results?q=Rick").Code)
	h.tree.Store.SetLoading(true)

	body := h.get("/results/1?q=Rick").Body.String()
	assert.Contains(t, body, "Rick Sanchez")
	assert.NotContains(t, body, `class="loader"`)
	assert.False(t, h.tree.Store.Snapshot().IsLoading)
	assert.Len(t, fake.ListCalls(), 2)
}

/*
TestLoadListing_LatestCycleReadsLatestTerm verifies a cycle begun while an
older one is in flight fetches the term current at that moment, and that the
older cycle's result is dropped.
*/
func TestLoadListing_LatestCycleReadsLatestTerm(t *testing.T) {
	fake := &catalogtest.Fake{}
	h := newHarness(t, fake, "")

	fake.ListFunc = func(ctx context.Context, term string, page int) (*catalog.Page, error) {
		if term == "Rick" {
			h.tree.Store.SetSearchTerm("Morty")
			h.handler.loadListing(context.Background(), h.tree)
			return catalogtest.PageOf(1, "Rick Sanchez"), nil
		}
		return catalogtest.PageOf(1, "Morty Smith"), nil
	}

	h.tree.Store.SetSearchTerm("Rick")
	h.handler.loadListing(context.Background(), h.tree)

	assert.Equal(t, []catalogtest.ListCall{{Term: "Rick", Page: 1}, {Term: "Morty", Page: 1}}, fake.ListCalls())

	listing, found := h.tree.Listing()
	require.True(t, found)
	assert.Equal(t, "Morty", listing.Term)
	assert.Equal(t, "Morty Smith", listing.Data.Results[0].Name)

	state := h.tree.Store.Snapshot()
	assert.Equal(t, "Morty", state.SearchTerm)
	assert.False(t, state.IsLoading)
}

/*
TestShowResults_EmptyVersusError verifies an empty page and a failed fetch
are shown differently, and that a failure never shows older results.
*/
func TestShowResults_EmptyVersusError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		page      *catalog.Page
		wantError string
		wantText  string
	}{
		{
			name:     "empty page",
			page:     &catalog.Page{},
			wantText: "No characters found.",
		},
		{
			name:     "upstream not found is empty",
			err:      apperr.UpstreamNotFound("Character"),
			wantText: "No characters found.",
		},
		{
			name:      "request failed",
			err:       apperr.RequestFailed(http.StatusInternalServerError),
			wantError: MessageListFailed,
			wantText:  "Error: " + MessageListFailed,
		},
		{
			name:      "timeout",
			err:       apperr.RequestTimeout(context.DeadlineExceeded),
			wantError: MessageTimeout,
			wantText:  "Error: " + MessageTimeout,
		},
		{
			name:      "network",
			err:       apperr.Network(io.ErrUnexpectedEOF),
			wantError: MessageListFailed,
			wantText:  "Error: " + MessageListFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &catalogtest.Fake{ListFunc: returning(1, "Rick Sanchez")}
			h := newHarness(t, fake, "")

			// 1. A successful listing first
			require.Contains(t, h.get("/results?q=Rick").Body.String(), "Rick Sanchez")

			// 2. Then the outcome under test for another term
			fake.ListFunc = func(ctx context.Context, term string, page int) (*catalog.Page, error) {
				return tt.page, tt.err
			}
			body := h.get("/results?q=Zeep").Body.String()

			state := h.tree.Store.Snapshot()
			assert.Equal(t, tt.wantError, state.Error)
			assert.False(t, state.IsLoading)

			assert.Contains(t, body, tt.wantText)
			assert.NotContains(t, body, "Rick Sanchez")

			if tt.wantError == "" {
				assert.NotContains(t, body, `class="error"`)
			} else {
				assert.NotContains(t, body, "No characters found.")
				_, found := h.tree.Listing()
				assert.False(t, found)
			}
		})
	}
}

/*
TestShowDetails verifies the split view and that the listing is reused.
*/
func TestShowDetails(t *testing.T) {
	fake := &catalogtest.Fake{
		ListFunc: returning(1, "Rick Sanchez", "Morty Smith"),
		GetFunc: func(ctx context.Context, id int) (*catalog.Character, error) {
			character := catalogtest.Character(id, "Morty Smith")
			character.Episode = []string{"1", "2", "3"}
			return &character, nil
		},
	}
	h := newHarness(t, fake, "")

	require.Equal(t, http.StatusOK, h.get("/results?q=Smith").Code)

	recorder := h.get("/results/2?q=Smith")
	require.Equal(t, http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	assert.Contains(t, body, "Character Details")
	assert.Contains(t, body, "Appeared in 3 episodes")
	assert.Contains(t, body, "November 4, 2017")
	assert.Contains(t, body, "status-alive")
	assert.Contains(t, body, `class="card selected"`)
	assert.Contains(t, body, `href="/results?q=Smith" aria-label="Close details panel"`)

	assert.Len(t, fake.ListCalls(), 1)
	assert.Equal(t, []int{2}, fake.GetCalls())
}

/*
TestShowDetails_FailureIsolated verifies a failed details fetch stays inside
the details panel.
*/
func TestShowDetails_FailureIsolated(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{"request failed", apperr.RequestFailed(http.StatusBadGateway), http.StatusOK, "Error: " + MessageDetailFailed},
		{"timeout", apperr.RequestTimeout(context.DeadlineExceeded), http.StatusOK, "Error: " + MessageTimeout},
		{"not found", apperr.UpstreamNotFound("Character"), http.StatusNotFound, MessageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &catalogtest.Fake{
				ListFunc: returning(1, "Rick Sanchez"),
				GetFunc: func(ctx context.Context, id int) (*catalog.Character, error) {
					return nil, tt.err
				},
			}
			h := newHarness(t, fake, "")

			recorder := h.get("/results/999?q=Rick")
			assert.Equal(t, tt.wantStatus, recorder.Code)

			body := recorder.Body.String()
			assert.Contains(t, body, tt.wantText)
			assert.Contains(t, body, "Rick Sanchez")
			assert.Empty(t, h.tree.Store.Snapshot().Error)

			listing, found := h.tree.Listing()
			require.True(t, found)
			assert.Equal(t, "Rick", listing.Term)
		})
	}
}

/*
TestNotFoundRoute verifies route misses show the not-found view.
*/
func TestNotFoundRoute(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{}, "")

	for _, target := range []string{"/nowhere", "/results/abc", "/results/1/extra"} {
		recorder := h.get(target)
		assert.Equal(t, http.StatusNotFound, recorder.Code, target)
		assert.Contains(t, recorder.Body.String(), "not-found", target)
	}

	assert.Empty(t, h.fake.ListCalls())
}

/*
TestAbout verifies the about page renders with the session's theme.
*/
func TestAbout(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{}, "")
	h.tree.Store.SetTheme(search.ThemeDark)

	recorder := h.get("/about")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "About This Project")
	assert.Contains(t, recorder.Body.String(), `data-theme="dark"`)
}

/*
TestBoundary_Containment verifies a failing results render shows the
fallback while the rest of the page stays usable, and that Retry is offered
three times only.
*/
func TestBoundary_Containment(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{ListFunc: returning(1, "Rick Sanchez")}, "")
	retryForm := url.Values{"return": {"/results?q=Rick"}}

	fail := func() string {
		t.Helper()
		require.Equal(t, http.StatusSeeOther, h.post("/debug/fault", retryForm).Code)

		recorder := h.get("/results?q=Rick")
		require.Equal(t, http.StatusOK, recorder.Code)
		return recorder.Body.String()
	}

	body := fail()
	assert.Contains(t, body, "Oops! Something went wrong")
	assert.NotContains(t, body, "Rick Sanchez")
	assert.Contains(t, body, `action="/search"`)
	assert.Contains(t, body, "Try Again")

	for attempt := 1; attempt <= boundary.DefaultMaxRetries; attempt++ {
		recorder := h.post("/boundary/results/retry", retryForm)
		require.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/results?q=Rick", recorder.Header().Get("Location"))

		body = fail()
		assert.Contains(t, body, "Retry attempt")
		if attempt < boundary.DefaultMaxRetries {
			assert.Contains(t, body, "Try Again", "attempt %d", attempt)
		}
	}
	assert.NotContains(t, body, "Try Again")
	assert.Contains(t, body, "Reload Page")

	// A fourth retry is refused and the boundary stays failed.
	h.post("/boundary/results/retry", retryForm)
	assert.Equal(t, boundary.DefaultMaxRetries, h.tree.Boundary(session.BoundaryResults).RetryCount())
	assert.Contains(t, h.get("/results?q=Rick").Body.String(), "Oops! Something went wrong")

	// Reload resets the boundary.
	h.post("/boundary/results/reload", retryForm)
	body = h.get("/results?q=Rick").Body.String()
	assert.Contains(t, body, "Rick Sanchez")
	assert.Equal(t, 0, h.tree.Boundary(session.BoundaryResults).RetryCount())
}

/*
TestBoundary_Report verifies the report action dispatches the diagnostic and
opens the mail composer.
*/
func TestBoundary_Report(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{ListFunc: returning(1, "Rick Sanchez")}, "")
	form := url.Values{"return": {"/results?q=Rick"}}

	h.post("/debug/fault", form)
	h.get("/results?q=Rick")

	recorder := h.post("/boundary/results/report", form)
	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.True(t, strings.HasPrefix(recorder.Header().Get("Location"),
		"mailto:support@example.com?subject=Error%20Report&body="))

	h.dispatcher.Wait()
	require.Len(t, h.reporter.diagnostics, 1)

	diagnostic := h.reporter.diagnostics[0]
	assert.Equal(t, session.BoundaryResults, diagnostic.Boundary)
	assert.Equal(t, "http://example.com/results?q=Rick", diagnostic.URL)
	assert.Equal(t, "Mozilla/5.0 (test)", diagnostic.UserAgent)
	assert.Contains(t, diagnostic.Message, faultMessage)
}

/*
TestBoundary_FallbackFailureLogged verifies a fallback that cannot render is
logged instead of being dropped.
*/
func TestBoundary_FallbackFailureLogged(t *testing.T) {
	broken := boundary.Options{
		Fallback: func(w io.Writer) error { return errors.New("fallback unavailable") },
	}
	h := newHarnessWith(t, &catalogtest.Fake{ListFunc: returning(1, "Rick Sanchez")}, "", broken)

	require.Equal(t, http.StatusSeeOther, h.post("/debug/fault", url.Values{"return": {"/results?q=Rick"}}).Code)

	recorder := h.get("/results?q=Rick")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "Rick Sanchez")

	logs := h.logs.String()
	assert.Contains(t, logs, "boundary_render_failed")
	assert.Contains(t, logs, "boundary=results")
	assert.Contains(t, logs, "fallback unavailable")
}

/*
TestBoundary_Unknown verifies actions on unknown boundaries or verbs are 404s.
*/
func TestBoundary_Unknown(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{}, "")

	assert.Equal(t, http.StatusNotFound, h.post("/boundary/header/retry", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.post("/boundary/results/explode", nil).Code)

	// Reporting a healthy boundary goes back without a report.
	recorder := h.post("/boundary/results/report", url.Values{"return": {"/about"}})
	assert.Equal(t, "/about", recorder.Header().Get("Location"))
	h.dispatcher.Wait()
	assert.Empty(t, h.reporter.diagnostics)
}

/*
TestSwitchTheme verifies theme switching, persistence, and validation.
*/
func TestSwitchTheme(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{}, "")

	recorder := h.post("/theme", url.Values{"theme": {"dark"}, "return": {"/about"}})
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/about", recorder.Header().Get("Location"))
	assert.Equal(t, search.ThemeDark, h.tree.Store.Snapshot().Theme)

	var stored string
	assert.True(t, h.kv.Scope(testSession).Load(constants.KeyTheme, &stored))
	assert.Equal(t, "dark", stored)

	// Off-site return paths collapse to the results view.
	recorder = h.post("/theme", url.Values{"theme": {"light"}, "return": {"//evil.example"}})
	assert.Equal(t, PathResults, recorder.Header().Get("Location"))

	recorder = h.post("/theme", url.Values{"theme": {"sepia"}})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, search.ThemeLight, h.tree.Store.Snapshot().Theme)
}

/*
TestResetSearch verifies the term is forgotten and the theme kept.
*/
func TestResetSearch(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{}, "Rick")
	h.tree.Store.SetTheme(search.ThemeDark)

	recorder := h.post("/search/reset", nil)
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, PathResults, recorder.Header().Get("Location"))

	state := h.tree.Store.Snapshot()
	assert.Empty(t, state.SearchTerm)
	assert.Equal(t, search.ThemeDark, state.Theme)
	var remembered string
	assert.False(t, h.kv.Scope(testSession).Load(constants.KeySearchTerm, &remembered))
}

/*
TestSessionState verifies the JSON snapshot.
*/
func TestSessionState(t *testing.T) {
	h := newHarness(t, &catalogtest.Fake{ListFunc: returning(4, "Morty Smith")}, "")
	h.get("/results?q=Morty&page=3")

	request := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data search.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "Morty", envelope.Data.SearchTerm)
	assert.Equal(t, 3, envelope.Data.CurrentPage)
	assert.Equal(t, search.ThemeLight, envelope.Data.Theme)
}
