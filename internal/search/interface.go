package search

import "github.com/pders01/postr/internal/storage"

// Searcher ranks posts and users against a free-text query.
type Searcher interface {
	// Index replaces the searchable data.
	Index(posts []storage.Post, users []storage.User) error
	Search(query string, limit int) ([]*Result, error)
	Close() error
}

// DebugStatser provides lightweight stats for visibility/debugging.
// Implemented by engines that can report index doc counts, etc.
type DebugStatser interface {
	DocCount() (int, error)
}

type Kind int

const (
	KindPost Kind = iota
	KindUser
)

func (k Kind) String() string {
	if k == KindUser {
		return "user"
	}
	return "post"
}

// Result is a ranked match. Exactly one of Post and User is set.
type Result struct {
	Kind    Kind
	Post    *storage.Post
	User    *storage.User
	Score   float64
	Matches []Match
}

// Title is the line shown for the result in lists.
func (r *Result) Title() string {
	if r.Kind == KindUser && r.User != nil {
		return r.User.Name
	}
	if r.Post != nil {
		return r.Post.Title
	}
	return ""
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "body", "name", "username", "email"
	Text   string // matched text snippet
	Weight float64
}
