package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/postr/internal/storage"
)

type fieldBoost struct {
	field string
	match float64
	// prefix applies to the prefix query on the same field
	prefix float64
}

var boosts = []fieldBoost{
	{"title", 4.0, 3.5},
	{"name", 3.0, 2.7},
	{"username", 2.5, 2.2},
	{"body", 1.0, 0.8},
	{"email", 1.0, 0.8},
	{"website", 0.5, 0.3},
}

type bleveEngine struct {
	idx bleve.Index

	mu    sync.RWMutex
	posts map[int]storage.Post
	users map[int]storage.User
}

// NewBleveEngine creates or opens a Bleve index at indexPath. An empty path
// keeps the index in memory.
func NewBleveEngine(indexPath string) (Searcher, error) {
	var idx bleve.Index
	var err error

	if indexPath == "" {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(indexPath), 0o755); mkErr != nil {
			return nil, fmt.Errorf("creating index directory: %w", mkErr)
		}
		idx, err = bleve.Open(indexPath)
		if err != nil {
			idx, err = bleve.New(indexPath, buildIndexMapping())
			if err != nil {
				return nil, fmt.Errorf("creating index: %w", err)
			}
		}
	}

	return &bleveEngine{
		idx:   idx,
		posts: make(map[int]storage.Post),
		users: make(map[int]storage.User),
	}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	for _, b := range boosts {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = false
		fm.IncludeTermVectors = b.field == "title"
		dm.AddFieldMappingsAt(b.field, fm)
	}

	kind := bleve.NewKeywordFieldMapping()
	kind.Store = true
	dm.AddFieldMappingsAt("type", kind)

	im.DefaultMapping = dm
	return im
}

// Index makes the index mirror posts and users, dropping documents that no
// longer exist.
func (b *bleveEngine) Index(posts []storage.Post, users []storage.User) error {
	wanted := make(map[string]bool, len(posts)+len(users))
	batch := b.idx.NewBatch()

	for _, p := range posts {
		id := docIDForPost(p.ID)
		wanted[id] = true
		if err := batch.Index(id, map[string]any{
			"type":  "post",
			"title": p.Title,
			"body":  p.Body,
		}); err != nil {
			return err
		}
	}
	for _, u := range users {
		id := docIDForUser(u.ID)
		wanted[id] = true
		if err := batch.Index(id, map[string]any{
			"type":     "user",
			"name":     u.Name,
			"username": u.Username,
			"email":    u.Email,
			"website":  u.Website,
		}); err != nil {
			return err
		}
	}

	existing, err := b.docIDs()
	if err != nil {
		return err
	}
	for _, id := range existing {
		if !wanted[id] {
			batch.Delete(id)
		}
	}

	if err := b.idx.Batch(batch); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	postMap := make(map[int]storage.Post, len(posts))
	for _, p := range posts {
		postMap[p.ID] = p
	}
	userMap := make(map[int]storage.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	b.mu.Lock()
	b.posts, b.users = postMap, userMap
	b.mu.Unlock()
	return nil
}

func (b *bleveEngine) docIDs() ([]string, error) {
	count, err := b.idx.DocCount()
	if err != nil || count == 0 {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (b *bleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	// One match and one prefix query per token and field, OR-ed together.
	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, fb := range boosts {
			qm := bleve.NewMatchQuery(tok)
			qm.SetField(fb.field)
			qm.SetBoost(fb.match)
			qs = append(qs, qm)

			qp := bleve.NewPrefixQuery(tok)
			qp.SetField(fb.field)
			qp.SetBoost(fb.prefix)
			qs = append(qs, qp)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	srch := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := b.idx.Search(srch)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		kind, id, ok := parseDocID(h.ID)
		if !ok {
			continue
		}
		switch kind {
		case KindPost:
			p, found := b.posts[id]
			if !found {
				continue
			}
			out = append(out, &Result{Kind: KindPost, Post: &p, Score: h.Score})
		case KindUser:
			u, found := b.users[id]
			if !found {
				continue
			}
			out = append(out, &Result{Kind: KindUser, User: &u, Score: h.Score})
		}
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *bleveEngine) Close() error {
	return b.idx.Close()
}

func docIDForPost(id int) string { return "post:" + strconv.Itoa(id) }
func docIDForUser(id int) string { return "user:" + strconv.Itoa(id) }

func parseDocID(docID string) (Kind, int, bool) {
	prefix, raw, ok := strings.Cut(docID, ":")
	if !ok {
		return 0, 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, 0, false
	}
	switch prefix {
	case "post":
		return KindPost, id, true
	case "user":
		return KindUser, id, true
	}
	return 0, 0, false
}
