package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pders01/postr/internal/storage"
)

// Engine scores an in-memory snapshot without building an index. It is the
// fallback when no bleve index is configured.
type Engine struct {
	mu    sync.RWMutex
	posts []storage.Post
	users []storage.User
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Index(posts []storage.Post, users []storage.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.posts = append([]storage.Post(nil), posts...)
	e.users = append([]storage.User(nil), users...)
	return nil
}

func (e *Engine) Close() error { return nil }

func (e *Engine) DocCount() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.posts) + len(e.users), nil
}

// Search performs weighted search across posts and users
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var results []*Result
	for i := range e.users {
		if result := searchUser(&e.users[i], terms); result != nil {
			results = append(results, result)
		}
	}
	for i := range e.posts {
		if result := searchPost(&e.posts[i], terms); result != nil {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func searchPost(post *storage.Post, terms []string) *Result {
	var matches []Match
	var totalScore float64

	if titleScore := scoreField(post.Title, terms, 4.0); titleScore > 0 {
		matches = append(matches, Match{Field: "title", Text: post.Title, Weight: titleScore})
		totalScore += titleScore
	}

	if bodyScore := scoreField(post.Body, terms, 1.0); bodyScore > 0 {
		matches = append(matches, Match{
			Field:  "body",
			Text:   findBestSnippet(post.Body, terms, 120),
			Weight: bodyScore,
		})
		totalScore += bodyScore
	}

	if totalScore == 0 {
		return nil
	}
	p := *post
	return &Result{Kind: KindPost, Post: &p, Score: totalScore, Matches: matches}
}

func searchUser(user *storage.User, terms []string) *Result {
	var matches []Match
	var totalScore float64

	fields := []struct {
		name   string
		text   string
		weight float64
	}{
		{"name", user.Name, 3.0},
		{"username", user.Username, 2.5},
		{"email", user.Email, 1.0},
		{"website", user.Website, 0.5},
	}
	for _, f := range fields {
		if score := scoreField(f.text, terms, f.weight); score > 0 {
			matches = append(matches, Match{Field: f.name, Text: f.text, Weight: score})
			totalScore += score
		}
	}

	if totalScore == 0 {
		return nil
	}
	u := *user
	return &Result{Kind: KindUser, User: &u, Score: totalScore, Matches: matches}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		// Exact phrase match (highest score)
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	// Boost score if multiple terms match
	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// snippetLead is how many words of context precede the first match.
const snippetLead = 3

// findBestSnippet returns at most maxLength runes of text, starting a few
// words before the first word containing a term so the match stays visible.
func findBestSnippet(text string, terms []string, maxLength int) string {
	words := strings.Fields(text)
	if len(words) == 0 || maxLength < 2 {
		return ""
	}
	joined := strings.Join(words, " ")
	if len([]rune(joined)) <= maxLength {
		return joined
	}

	hit := firstMatch(words, terms)
	if hit < 0 {
		return truncate(joined, maxLength)
	}

	// Drop leading context until the matched word fits before the ellipsis.
	start := max(hit-snippetLead, 0)
	for start < hit && len([]rune(strings.Join(words[start:hit+1], " "))) > maxLength-1 {
		start++
	}
	return truncate(strings.Join(words[start:], " "), maxLength)
}

func firstMatch(words, terms []string) int {
	for i, w := range words {
		lw := strings.ToLower(w)
		for _, term := range terms {
			if strings.Contains(lw, term) {
				return i
			}
		}
	}
	return -1
}

// tokenize lowercases text and splits it into terms of two or more
// letters or digits.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if current.Len() > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return terms
}

func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}
