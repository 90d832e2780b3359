package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist, locally or on the
// remote API.
var ErrNotFound = errors.New("not found")

// UnknownUser is shown when a post references no user or a user that is not
// in the directory.
const UnknownUser = "Unknown User"

// Post is a blog post. UserID is nil when the server omits it or sends null.
type Post struct {
	ID     int    `json:"id" yaml:"id" toml:"id"`
	UserID *int   `json:"userId" yaml:"userId,omitempty" toml:"userId,omitempty"`
	Title  string `json:"title" yaml:"title" toml:"title"`
	Body   string `json:"body" yaml:"body" toml:"body"`
}

func (p Post) Key() int { return p.ID }

func (p Post) SearchText() []string { return []string{p.Title, p.Body} }

func (p Post) Owner() (int, bool) {
	if p.UserID == nil {
		return 0, false
	}
	return *p.UserID, true
}

// IntPtr is a convenience for building posts with an owner.
func IntPtr(v int) *int { return &v }

// User is read-only: the client never creates, updates or deletes users.
type User struct {
	ID       int    `json:"id" yaml:"id" toml:"id"`
	Name     string `json:"name" yaml:"name" toml:"name"`
	Username string `json:"username" yaml:"username" toml:"username"`
	Email    string `json:"email" yaml:"email" toml:"email"`
	Phone    string `json:"phone" yaml:"phone" toml:"phone"`
	Website  string `json:"website" yaml:"website" toml:"website"`
}

func (u User) Key() int { return u.ID }

func (u User) SearchText() []string { return []string{u.Name, u.Username, u.Email} }

func (u User) Owner() (int, bool) { return 0, false }

// FetchMetadata holds the conditional-request state of a remote source.
type FetchMetadata struct {
	Source       string    `json:"source"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	LastFetched  time.Time `json:"last_fetched"`
}
