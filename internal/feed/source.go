// Package feed reads posts and their authors from an RSS, Atom or JSON
// feed. Feeds are read-only: they can be listed and searched but not
// written to.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/debuglog"
	"github.com/pders01/postr/internal/storage"
	"github.com/pders01/postr/internal/validation"
)

// Source fetches a single feed. The last parse is kept so that a 304 Not
// Modified answer can be served without re-parsing.
type Source struct {
	url     string
	fetcher *Fetcher
	parser  *Parser
	store   *storage.Store

	mu   sync.Mutex
	meta storage.FetchMetadata
	last *Result
}

// NewSource validates cfg.Source.FeedURL with v. store is optional and
// keeps the conditional-request validators across runs.
func NewSource(cfg *config.Config, store *storage.Store, v *validation.URLValidator) (*Source, error) {
	url, err := v.ValidateAndNormalize(cfg.Source.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}
	if resolved, site := DefaultSites().Resolve(url); site != "" {
		debuglog.Infof("feed URL %s resolved by %s rule to %s", url, site, resolved)
		url = resolved
	}

	s := &Source{
		url:     url,
		fetcher: NewFetcher(cfg),
		parser:  NewParser(),
		store:   store,
		meta:    storage.FetchMetadata{Source: url},
	}

	if store != nil {
		if meta, err := store.GetFetchMetadata(url); err == nil {
			s.meta = *meta
		} else if !errors.Is(err, storage.ErrNotFound) {
			debuglog.Warnf("reading feed metadata: %v", err)
		}
	}

	return s, nil
}

func (s *Source) URL() string { return s.url }

// Title is the feed's title once it has been fetched.
func (s *Source) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return ""
	}
	return s.last.Title
}

// Fetch returns the feed's items as posts.
func (s *Source) Fetch(ctx context.Context) ([]storage.Post, error) {
	res, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return res.Posts, nil
}

func (s *Source) refresh(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := debuglog.WithFields(map[string]interface{}{"feed": s.url})

	// Without a previous parse a 304 would leave nothing to serve.
	s.fetcher.SetIgnoreCache(s.last == nil)

	resp, updated, err := s.fetcher.Fetch(ctx, s.url, &s.meta)
	if err != nil {
		return nil, err
	}
	if !updated {
		if s.last == nil {
			return nil, fmt.Errorf("feed answered 304 to an unconditional request")
		}
		log.Debugf("not modified, reusing %d posts", len(s.last.Posts))
		return s.last, nil
	}
	defer resp.Body.Close()

	res, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	s.fetcher.UpdateMetadata(&s.meta, resp)
	if s.store != nil {
		if err := s.store.SaveFetchMetadata(&s.meta); err != nil {
			log.Warnf("saving feed metadata: %v", err)
		}
	}

	log.Infof("parsed %d posts by %d authors", len(res.Posts), len(res.Users))
	s.last = res
	return res, nil
}

// Users exposes the feed's authors as a read-only collection.
func (s *Source) Users() *AuthorSource { return &AuthorSource{src: s} }

type AuthorSource struct {
	src *Source
}

// Fetch reuses the last parse when there is one.
func (a *AuthorSource) Fetch(ctx context.Context) ([]storage.User, error) {
	a.src.mu.Lock()
	last := a.src.last
	a.src.mu.Unlock()
	if last != nil {
		return last.Users, nil
	}

	res, err := a.src.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return res.Users, nil
}
