package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoading      = "Loading…"
	MsgRefreshing   = "Refetching…"
	MsgCreating     = "Creating post…"
	MsgDeleting     = "Deleting…"
	MsgRendering    = "Rendering…"
	MsgNoResults    = "No results"
	MsgPostCreated  = "Post created"
	MsgPostDeleted  = "Post deleted"
	MsgFiltersClear = "Filters cleared"
)

func MsgLoaded(posts, users int) string {
	return fmt.Sprintf("Loaded %d posts • %d users", posts, users)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgFilteredBy(name string) string {
	return fmt.Sprintf("Showing posts by %s", strings.TrimSpace(name))
}

func MsgOpened(url string) string {
	return "Opened " + url
}
