package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/storage"
)

var topicWords = []string{
	"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
	"golf", "hotel", "india", "juliett", "kilo", "lima",
}

// fixturePosts returns twelve posts; odd IDs belong to user 1, even to user 2.
func fixturePosts() []storage.Post {
	posts := make([]storage.Post, len(topicWords))
	for i, w := range topicWords {
		id := i + 1
		posts[i] = storage.Post{
			ID:     id,
			UserID: storage.IntPtr(2 - id%2),
			Title:  fmt.Sprintf("Notes on %s", w),
			Body:   fmt.Sprintf("A longer body about %s and other things.", w),
		}
	}
	return posts
}

func fixtureUsers() []storage.User {
	return []storage.User{
		{ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz", Website: "hildegard.org"},
		{ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv"},
	}
}

type fakeGateway struct {
	mu        sync.Mutex
	posts     []storage.Post
	fetchErr  error
	createErr error
	deleteErr error
	nextID    int
	created   []storage.Post
	deleted   []int
}

func (g *fakeGateway) Fetch(context.Context) ([]storage.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return append([]storage.Post(nil), g.posts...), nil
}

func (g *fakeGateway) Create(_ context.Context, draft storage.Post) (storage.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return storage.Post{}, g.createErr
	}
	draft.ID = g.nextID
	g.nextID++
	g.created = append(g.created, draft)
	return draft, nil
}

func (g *fakeGateway) Delete(_ context.Context, id int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, id)
	return nil
}

type fakeUsers struct {
	users []storage.User
	err   error
}

func (f *fakeUsers) Fetch(context.Context) ([]storage.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]storage.User(nil), f.users...), nil
}

var errBoom = errors.New("boom")

type testOptions struct {
	readOnly bool
	gateway  *fakeGateway
}

func newTestApp(t *testing.T, opts testOptions) (*App, *fakeGateway) {
	t.Helper()

	cfg := config.TestConfig()
	cfg.List.SearchDebounce = 10 * time.Millisecond

	gw := opts.gateway
	if gw == nil {
		gw = &fakeGateway{posts: fixturePosts(), nextID: 101}
	}
	deps := Deps{
		Posts: gw,
		Users: &fakeUsers{users: fixtureUsers()},
	}
	if !opts.readOnly {
		deps.Mutator = gw
	}

	app := NewApp(cfg, deps)
	t.Cleanup(app.Close)

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	for _, msg := range runCmd(app.loadAll(false)) {
		app.Update(msg)
	}
	return app, gw
}

// runCmd executes cmd and any batched children, returning their messages.
// Callers only pass commands that return without waiting on the tea loop.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func press(t *testing.T, app *App, keys ...tea.KeyMsg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		model, c := app.Update(k)
		require.Same(t, app, model)
		cmd = c
	}
	return cmd
}

func typeText(t *testing.T, app *App, text string) {
	t.Helper()
	for _, r := range text {
		press(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
