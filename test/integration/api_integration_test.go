package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/postr/internal/api"
	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/listing"
	"github.com/pders01/postr/internal/search"
	"github.com/pders01/postr/internal/storage"
)

// mockAPI is an in-memory JSONPlaceholder: creates get fresh ids, deletes
// of unknown ids return 404.
type mockAPI struct {
	mu     sync.Mutex
	posts  []storage.Post
	users  []storage.User
	nextID int
	gets   int
}

var server *httptest.Server
var backend *mockAPI

func TestMain(m *testing.M) {
	backend = newMockAPI(42)
	server = httptest.NewServer(backend.handler())
	code := m.Run()
	server.Close()
	os.Exit(code)
}

func newMockAPI(seed uint64) *mockAPI {
	faker := gofakeit.New(seed)
	m := &mockAPI{}
	for id := 1; id <= 3; id++ {
		m.users = append(m.users, storage.User{
			ID:       id,
			Name:     faker.Name(),
			Username: faker.Username(),
			Email:    faker.Email(),
			Website:  faker.DomainName(),
		})
	}
	for id := 1; id <= 30; id++ {
		m.posts = append(m.posts, storage.Post{
			ID:     id,
			UserID: storage.IntPtr((id-1)%3 + 1),
			Title:  faker.Sentence(4),
			Body:   faker.Paragraph(1, 2, 8, " "),
		})
	}
	m.nextID = len(m.posts) + 1
	return m
}

func (m *mockAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, _ *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.gets++
		writeJSON(w, http.StatusOK, m.posts)
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, _ *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		writeJSON(w, http.StatusOK, m.users)
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		var p storage.Post
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		p.ID = m.nextID
		m.nextID++
		m.posts = append(m.posts, p)
		writeJSON(w, http.StatusCreated, p)
	})
	mux.HandleFunc("DELETE /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, p := range m.posts {
			if p.ID == id {
				m.posts = append(m.posts[:i], m.posts[i+1:]...)
				writeJSON(w, http.StatusOK, struct{}{})
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
	return mux
}

func (m *mockAPI) getCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient() *api.Client {
	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL
	cfg.API.HTTPTimeout = 5 * time.Second
	return api.NewClient(cfg.API)
}

func TestPostLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newClient()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "cache.db"), time.Minute, time.Second)
	require.NoError(t, err)
	defer store.Close()

	posts := listing.New(listing.Options[storage.Post]{
		Name:      "posts",
		PageSize:  10,
		ClampPage: true,
		Mutator:   client.Posts(),
		Cache:     storage.NewCollection[storage.Post](store, "posts@integration"),
	})
	defer posts.Dispose()

	require.NoError(t, posts.Load(ctx, client.Posts()))
	state := posts.Snapshot()
	require.Len(t, state.All, 30)
	assert.Equal(t, 3, state.Page.TotalPages)

	created, err := posts.AddItem(ctx, storage.Post{
		UserID: storage.IntPtr(2),
		Title:  "Zqxintegration title",
		Body:   "integration body",
	})
	require.NoError(t, err)
	assert.Equal(t, 31, created.ID)
	assert.Equal(t, created, posts.Snapshot().All[0])

	posts.ApplySearch("zqxintegration")
	state = posts.Snapshot()
	require.Len(t, state.Filtered, 1)
	assert.Equal(t, created.ID, state.Filtered[0].ID)

	require.NoError(t, posts.RemoveItem(ctx, created.ID))
	assert.Empty(t, posts.Snapshot().Filtered)

	// Deleting something the server no longer has still succeeds.
	require.NoError(t, posts.RemoveItem(ctx, created.ID))

	posts.ApplySearch("")
	posts.SetUserFilter(1)
	state = posts.Snapshot()
	assert.Len(t, state.Filtered, 10)
	for _, p := range state.Filtered {
		owner, ok := p.Owner()
		require.True(t, ok)
		assert.Equal(t, 1, owner)
	}
}

func TestCacheServesSecondLoad(t *testing.T) {
	ctx := context.Background()
	client := newClient()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "cache.db"), time.Minute, time.Second)
	require.NoError(t, err)
	defer store.Close()
	cache := storage.NewCollection[storage.Post](store, "posts@cache-test")

	first := listing.New(listing.Options[storage.Post]{Name: "first", Cache: cache})
	defer first.Dispose()
	require.NoError(t, first.Load(ctx, client.Posts()))

	before := backend.getCount()
	second := listing.New(listing.Options[storage.Post]{Name: "second", Cache: cache})
	defer second.Dispose()
	require.NoError(t, second.Load(ctx, client.Posts()))

	assert.Equal(t, before, backend.getCount(), "second load should come from the cache")
	assert.Equal(t, first.Snapshot().All, second.Snapshot().All)

	require.NoError(t, second.Reload(ctx, client.Posts()))
	assert.Equal(t, before+1, backend.getCount())
}

func TestSearchOverFetchedData(t *testing.T) {
	ctx := context.Background()
	client := newClient()

	posts, err := client.FetchPosts(ctx)
	require.NoError(t, err)
	users, err := client.FetchUsers(ctx)
	require.NoError(t, err)

	engines := map[string]func(t *testing.T) search.Searcher{
		"memory": func(*testing.T) search.Searcher { return search.NewEngine() },
		"bleve": func(t *testing.T) search.Searcher {
			s, err := search.NewBleveEngine(filepath.Join(t.TempDir(), "index.bleve"))
			require.NoError(t, err)
			return s
		},
	}

	for name, open := range engines {
		t.Run(name, func(t *testing.T) {
			engine := open(t)
			defer engine.Close()
			require.NoError(t, engine.Index(posts, users))

			target := users[1]
			results, err := engine.Search(target.Name, 10)
			require.NoError(t, err)
			require.NotEmpty(t, results)

			var found bool
			for _, r := range results {
				if r.Kind == search.KindUser && r.User.ID == target.ID {
					found = true
				}
			}
			assert.True(t, found, fmt.Sprintf("user %q not found", target.Name))
		})
	}
}
