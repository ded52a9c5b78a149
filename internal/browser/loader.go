// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package browser

import (
	"context"
	"log/slog"

	"github.com/taibuivan/charadex/internal/catalog"
	"github.com/taibuivan/charadex/internal/platform/ctxutil"
	"github.com/taibuivan/charadex/internal/session"
)

// User-facing failure messages.
const (
	MessageListFailed   = "Unable to load characters"
	MessageTimeout      = "Request timeout - please try again"
	MessageDetailFailed = "Failed to fetch character details"
	MessageNotFound     = "Character not found"
)

// # Listing

/*
loadListing runs one fetch cycle of the results view for the store's current
term and page.

The cycle is registered before the state is read, so the latest cycle always
fetches the latest term. It clears the error, raises the loading flag, awaits
the catalog and then applies either the data or the error. The result is
applied only if no later cycle of the same tree started in the meantime and
the request is still alive; a superseded cycle mutates nothing. A cycle whose
request ended while it was still the latest lowers the loading flag it raised.

A listing answered with not-found is an empty page: the catalog reports a
search without matches that way.
*/
func (handler *Handler) loadListing(ctx context.Context, tree *session.Tree) {
	logger := ctxutil.GetLogger(ctx)
	store := tree.Store

	fetchCtx, ticket := tree.Results.Begin(ctx)
	state := store.Snapshot()

	store.SetError("")
	store.SetLoading(true)

	data, err := handler.source.ListCharacters(fetchCtx, state.SearchTerm, state.CurrentPage)

	applied := tree.Results.Settle(ticket, func() {
		switch {
		case err == nil:
			store.SetLoading(false)
			tree.SetListing(session.Listing{Term: state.SearchTerm, Page: state.CurrentPage, Data: data})

		case catalog.IsNotFound(err):
			store.SetLoading(false)
			tree.SetListing(session.Listing{Term: state.SearchTerm, Page: state.CurrentPage, Data: &catalog.Page{}})

		default:
			tree.ClearListing()
			store.SetError(listMessage(err))
		}
	})
	if applied {
		return
	}

	if tree.Results.Abandon(ticket, func() { store.SetLoading(false) }) {
		logger.Debug("listing_abandoned",
			slog.String("term", state.SearchTerm),
			slog.Int("page", state.CurrentPage),
			slog.Uint64("ticket", ticket.Seq()),
		)
		return
	}

	logger.Debug("listing_superseded",
		slog.String("term", state.SearchTerm),
		slog.Int("page", state.CurrentPage),
		slog.Uint64("ticket", ticket.Seq()),
		slog.Uint64("latest", tree.Results.Current()),
	)
}

// ensureListing fetches the listing unless the tree already holds a settled
// one for the current term and page.
func (handler *Handler) ensureListing(ctx context.Context, tree *session.Tree) {
	state := tree.Store.Snapshot()
	if state.IsLoading || state.HasError() {
		handler.loadListing(ctx, tree)
		return
	}

	if listing, found := tree.Listing(); found && listing.Matches(state.SearchTerm, state.CurrentPage) {
		return
	}
	handler.loadListing(ctx, tree)
}

func listMessage(err error) string {
	if catalog.KindOf(err) == catalog.KindTimeout {
		return MessageTimeout
	}
	return MessageListFailed
}

// # Details

// detail is the outcome of one details fetch. It belongs to the request that
// ran it and never touches the listing.
type detail struct {
	Character *catalog.Character
	Error     string
	NotFound  bool

	// Pending is set when a later details fetch superseded this one.
	Pending bool
}

// loadDetail fetches character id for the details view.
func (handler *Handler) loadDetail(ctx context.Context, tree *session.Tree, id int) detail {
	fetchCtx, ticket := tree.Details.Begin(ctx)
	character, err := handler.source.GetCharacter(fetchCtx, id)

	result := detail{Pending: true}
	tree.Details.Settle(ticket, func() {
		switch {
		case err == nil:
			result = detail{Character: character}
		case catalog.IsNotFound(err):
			result = detail{Error: MessageNotFound, NotFound: true}
		case catalog.KindOf(err) == catalog.KindTimeout:
			result = detail{Error: MessageTimeout}
		default:
			result = detail{Error: MessageDetailFailed}
		}
	})

	return result
}
