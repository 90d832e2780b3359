package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/postr/internal/debuglog"
	"github.com/pders01/postr/internal/listing"
	"github.com/pders01/postr/internal/search"
	"github.com/pders01/postr/internal/storage"
)

const searchResultLimit = 20

// requestContext bounds one remote round trip, retries included.
func (a *App) requestContext() (context.Context, context.CancelFunc) {
	timeout := a.config.API.HTTPTimeout
	if timeout <= 0 {
		return context.WithCancel(a.ctx)
	}
	attempts := max(a.config.API.Retries, 1)
	return context.WithTimeout(a.ctx, timeout*time.Duration(attempts))
}

func (a *App) waitForEvent() tea.Cmd {
	events, done := a.events, a.ctx.Done()
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-done:
			return nil
		}
	}
}

func (a *App) startLoading(status string) tea.Cmd {
	wasIdle := !a.loading && !a.rendering
	a.loading = true
	a.setStatus(status, StatusInfo)
	if wasIdle {
		return a.spinner.Tick
	}
	return nil
}

// loadAll fetches posts, then users. Feed sources derive their authors
// from the posts fetch, so the order matters there.
func (a *App) loadAll(reload bool) tea.Cmd {
	posts, users := a.posts, a.users
	postSrc, userSrc := a.deps.Posts, a.deps.Users
	engine := a.searchEngine
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()

		msg := loadedMsg{reload: reload}
		msg.postsErr = loadInto(ctx, posts, postSrc, reload)
		msg.usersErr = loadInto(ctx, users, userSrc, reload)

		reindex(engine, posts, users)
		msg.posts = len(posts.Snapshot().All)
		return msg
	}
}

func loadInto[T listing.Item](ctx context.Context, m *listing.Manager[T], src listing.Source[T], reload bool) error {
	if src == nil {
		return nil
	}
	var err error
	if reload {
		err = m.Reload(ctx, src)
	} else {
		err = m.Load(ctx, src)
	}
	return wrapErr("loading "+m.Name(), err)
}

func reindex(engine search.Searcher, posts *listing.Manager[storage.Post], users *listing.Manager[storage.User]) {
	if err := engine.Index(posts.Snapshot().All, users.Snapshot().All); err != nil {
		debuglog.Warnf("search index update failed: %v", err)
	}
}

func (a *App) createPost(draft storage.Post) tea.Cmd {
	posts, users, engine := a.posts, a.users, a.searchEngine
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()

		created, err := posts.AddItem(ctx, draft)
		if err != nil {
			return postCreatedMsg{err: err}
		}
		reindex(engine, posts, users)
		return postCreatedMsg{post: created}
	}
}

func (a *App) deletePost(id int) tea.Cmd {
	posts, users, engine := a.posts, a.users, a.searchEngine
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()

		if err := posts.RemoveItem(ctx, id); err != nil {
			return postDeletedMsg{id: id, err: err}
		}
		reindex(engine, posts, users)
		return postDeletedMsg{id: id}
	}
}

func renderMarkdown(r *glamour.TermRenderer, md string) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return contentRenderedMsg{content: md}
		}
		rendered, err := r.Render(md)
		if err != nil {
			return contentRenderedMsg{content: fmt.Sprintf("Failed to render: %s\n\n%s", err, md)}
		}
		return contentRenderedMsg{content: rendered}
	}
}

func postMarkdown(p storage.Post, author string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "*Created by %s*\n\n", author)
	b.WriteString("---\n\n")
	b.WriteString(p.Body)
	b.WriteString("\n")
	return b.String()
}

func userMarkdown(u storage.User, postCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", u.Name)
	fmt.Fprintf(&b, "- **Username:** %s\n", u.Username)
	fmt.Fprintf(&b, "- **Email:** %s\n", u.Email)
	if u.Phone != "" {
		fmt.Fprintf(&b, "- **Phone:** %s\n", u.Phone)
	}
	if u.Website != "" {
		fmt.Fprintf(&b, "- **Website:** %s\n", u.Website)
	}
	fmt.Fprintf(&b, "\n*%d posts*\n", postCount)
	return b.String()
}

func (a *App) renderPost(p storage.Post) tea.Cmd {
	r, err := a.getRenderer()
	if err != nil {
		debuglog.Warnf("markdown renderer unavailable: %v", err)
	}
	return renderMarkdown(r, postMarkdown(p, a.directory.Name(p.UserID)))
}

func (a *App) renderUser(u storage.User) tea.Cmd {
	count := 0
	for _, p := range a.posts.Snapshot().All {
		if p.UserID != nil && *p.UserID == u.ID {
			count++
		}
	}
	r, err := a.getRenderer()
	if err != nil {
		debuglog.Warnf("markdown renderer unavailable: %v", err)
	}
	return renderMarkdown(r, userMarkdown(u, count))
}

func (a *App) performSearch(query string) tea.Cmd {
	engine := a.searchEngine
	return func() tea.Msg {
		results, err := engine.Search(query, searchResultLimit)
		if err != nil {
			return errorMsg{err: wrapErr("search", err)}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

func (a *App) openWebsite(u storage.User) tea.Cmd {
	op := a.opener
	return func() tea.Msg {
		target, err := op.Open(u.Website)
		if err != nil {
			return websiteOpenedMsg{err: fmt.Errorf("opening website of %s: %w", u.Name, err)}
		}
		return websiteOpenedMsg{url: target}
	}
}
