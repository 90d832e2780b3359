// Package listing holds the client-side list state: the full collection,
// its filtered view, debounced search, user filtering, pagination and the
// reconciliation of create/delete outcomes.
package listing

import (
	"context"
	"strings"
)

// Item is anything a Manager can list.
type Item interface {
	// Key is the unique, server-assigned identifier.
	Key() int
	// SearchText returns the fields matched by the search term.
	SearchText() []string
	// Owner returns the id of the user the item belongs to, if any.
	Owner() (int, bool)
}

// Source fetches a full collection.
type Source[T Item] interface {
	Fetch(ctx context.Context) ([]T, error)
}

// Mutator creates and deletes items on the remote side. Collections without
// one are read-only.
type Mutator[T Item] interface {
	Create(ctx context.Context, draft T) (T, error)
	Delete(ctx context.Context, key int) error
}

// Cache stores collection snapshots between runs.
type Cache[T Item] interface {
	Load() ([]T, bool, error)
	Save(items []T) error
}

// Matches reports whether item passes both the search term and the user
// filter. An empty term and a zero user id impose no restriction.
func Matches[T Item](item T, term string, userID int) bool {
	if userID != 0 {
		owner, ok := item.Owner()
		if !ok || owner != userID {
			return false
		}
	}
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, field := range item.SearchText() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Filter returns the items matching term and userID, preserving order.
func Filter[T Item](items []T, term string, userID int) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item, term, userID) {
			out = append(out, item)
		}
	}
	return out
}
