package feed

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pders01/postr/internal/storage"
)

// Result is one parsed feed: its items as posts and its authors as users.
type Result struct {
	Title string
	Link  string
	Posts []storage.Post
	Users []storage.User
}

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

// Parse reads an RSS, Atom or JSON feed. Posts are numbered by position
// starting at 1. Each distinct author becomes a user, numbered by first
// appearance; items without an author have no owner.
func (p *Parser) Parse(reader io.Reader) (*Result, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	res := &Result{
		Title: strings.TrimSpace(feed.Title),
		Link:  feed.Link,
		Posts: make([]storage.Post, 0, len(feed.Items)),
	}

	authors := make(map[string]int)
	for i, item := range feed.Items {
		post := storage.Post{
			ID:    i + 1,
			Title: strings.TrimSpace(item.Title),
			Body:  stripHTML(getContent(item)),
		}

		if person := primaryAuthor(item, feed); person != nil {
			key := authorKey(person)
			id, ok := authors[key]
			if !ok {
				id = len(res.Users) + 1
				authors[key] = id
				res.Users = append(res.Users, storage.User{
					ID:       id,
					Name:     displayName(person),
					Username: username(person),
					Email:    person.Email,
					Website:  feed.Link,
				})
			}
			post.UserID = storage.IntPtr(id)
		}

		res.Posts = append(res.Posts, post)
	}

	return res, nil
}

func getContent(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

func primaryAuthor(item *gofeed.Item, feed *gofeed.Feed) *gofeed.Person {
	for _, candidates := range [][]*gofeed.Person{item.Authors, feed.Authors} {
		for _, person := range candidates {
			if person != nil && (person.Name != "" || person.Email != "") {
				return person
			}
		}
	}
	return nil
}

func authorKey(person *gofeed.Person) string {
	return strings.ToLower(strings.TrimSpace(person.Name)) + "|" + strings.ToLower(strings.TrimSpace(person.Email))
}

func displayName(person *gofeed.Person) string {
	if name := strings.TrimSpace(person.Name); name != "" {
		return name
	}
	return person.Email
}

var nonUsername = regexp.MustCompile(`[^a-z0-9._-]+`)

func username(person *gofeed.Person) string {
	if local, _, ok := strings.Cut(person.Email, "@"); ok && local != "" {
		return local
	}
	return nonUsername.ReplaceAllString(strings.ToLower(strings.TrimSpace(person.Name)), ".")
}

var (
	blockTags  = regexp.MustCompile(`(?i)</?(p|div|br|li|ul|ol|h[1-6]|blockquote|pre)[^>]*>`)
	anyTag     = regexp.MustCompile(`<[^>]*>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaces     = regexp.MustCompile(`[ \t]+`)
)

// stripHTML turns item markup into plain text, keeping paragraph breaks.
func stripHTML(s string) string {
	s = blockTags.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = spaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
