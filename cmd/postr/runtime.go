package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pders01/postr/internal/api"
	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/debuglog"
	"github.com/pders01/postr/internal/feed"
	"github.com/pders01/postr/internal/listing"
	"github.com/pders01/postr/internal/opener"
	"github.com/pders01/postr/internal/search"
	"github.com/pders01/postr/internal/storage"
	"github.com/pders01/postr/internal/tui"
	"github.com/pders01/postr/internal/validation"
)

// runtime wires the configured source to its cache, index and opener.
type runtime struct {
	cfg       *config.Config
	validator *validation.URLValidator
	store     *storage.Store
	engine    search.Searcher
	posts     listing.Source[storage.Post]
	users     listing.Source[storage.User]
	mutator   listing.Mutator[storage.Post]
	label     string
}

func openRuntime(cfg *config.Config, allowLocal, withSearch bool) (*runtime, error) {
	rt := &runtime{cfg: cfg, validator: validation.NewURLValidator()}
	if allowLocal {
		rt.validator = validation.NewPermissiveURLValidator()
	}

	if cfg.Cache.Path != "" {
		path, err := validation.ValidateFilePath(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("invalid cache path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		store, err := storage.NewStore(path, cfg.Cache.TTL, cfg.Cache.Timeout)
		if err != nil {
			// Another postr may hold the lock; run uncached rather than fail.
			debuglog.Warnf("cache unavailable, continuing without it: %v", err)
		} else {
			rt.store = store
		}
	}

	switch cfg.Source.Kind {
	case config.SourceFeed:
		src, err := feed.NewSource(cfg, rt.store, rt.validator)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.posts, rt.users, rt.label = src, src.Users(), src.URL()
	default:
		base, err := rt.validator.ValidateBaseURL(cfg.API.BaseURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("invalid API base URL: %w", err)
		}
		cfg.API.BaseURL = base
		client := api.NewClient(cfg.API)
		rt.posts, rt.users, rt.mutator, rt.label = client.Posts(), client.Users(), client.Posts(), base
	}

	if withSearch {
		rt.engine = openSearch(cfg.Cache.SearchIndex)
	}
	return rt, nil
}

func openSearch(indexPath string) search.Searcher {
	if indexPath == "" {
		return search.NewEngine()
	}
	engine, err := search.NewBleveEngine(indexPath)
	if err != nil {
		debuglog.Warnf("search index unavailable, using in-memory search: %v", err)
		return search.NewEngine()
	}
	return engine
}

// postCache and userCache are keyed by source so switching APIs or feeds
// never mixes collections.
func (rt *runtime) postCache() listing.Cache[storage.Post] {
	if rt.store == nil {
		return nil
	}
	return storage.NewCollection[storage.Post](rt.store, "posts@"+rt.label)
}

func (rt *runtime) userCache() listing.Cache[storage.User] {
	if rt.store == nil {
		return nil
	}
	return storage.NewCollection[storage.User](rt.store, "users@"+rt.label)
}

// clearCache drops this source's cached collections, or every snapshot
// when all is set. Feed validators survive either way.
func (rt *runtime) clearCache(all bool) error {
	if rt.store == nil {
		return fmt.Errorf("cache is disabled or unavailable")
	}
	if all {
		return rt.store.Purge()
	}
	for _, c := range []interface{ Invalidate() error }{
		storage.NewCollection[storage.Post](rt.store, "posts@"+rt.label),
		storage.NewCollection[storage.User](rt.store, "users@"+rt.label),
	} {
		if err := c.Invalidate(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}

func (rt *runtime) deps() tui.Deps {
	return tui.Deps{
		Posts:       rt.posts,
		Users:       rt.users,
		Mutator:     rt.mutator,
		PostCache:   rt.postCache(),
		UserCache:   rt.userCache(),
		Search:      rt.engine,
		Opener:      opener.New(rt.cfg, rt.validator),
		SourceLabel: rt.label,
	}
}

// postManager builds a non-interactive posts list for the CLI commands.
func (rt *runtime) postManager() *listing.Manager[storage.Post] {
	return listing.New(listing.Options[storage.Post]{
		Name:           "posts",
		PageSize:       rt.cfg.List.PageSize,
		MaxPageButtons: rt.cfg.List.MaxPageButtons,
		ClampPage:      rt.cfg.List.ClampPage,
		Mutator:        rt.mutator,
		Cache:          rt.postCache(),
	})
}

func (rt *runtime) userManager() *listing.Manager[storage.User] {
	return listing.New(listing.Options[storage.User]{
		Name:           "users",
		PageSize:       rt.cfg.List.PageSize,
		MaxPageButtons: rt.cfg.List.MaxPageButtons,
		ClampPage:      true,
		Cache:          rt.userCache(),
	})
}

// requestContext bounds one load, retries included.
func (rt *runtime) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	timeout := rt.cfg.API.HTTPTimeout
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout*time.Duration(max(rt.cfg.API.Retries, 1)))
}

// Close releases the cache; the TUI app closes the search engine.
func (rt *runtime) Close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			debuglog.Warnf("closing cache: %v", err)
		}
	}
}
