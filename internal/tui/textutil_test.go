package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateEnd(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"ünïcödé", 4, "ünï…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateEnd(tt.in, tt.limit), "truncateEnd(%q, %d)", tt.in, tt.limit)
	}
}

func TestTruncateMiddle(t *testing.T) {
	assert.Equal(t, "short", truncateMiddle("short", 10))
	assert.Equal(t, "abc…xyz", truncateMiddle("abcdefghijklmnopqrstuvwxyz", 7))
	assert.Equal(t, "…", truncateMiddle("abcdef", 1))
	assert.Equal(t, "", truncateMiddle("abcdef", 0))
}

func TestLimitQuery(t *testing.T) {
	assert.Equal(t, "  lo  w ", limitQuery("  lo  w "))
	assert.Equal(t, " ", limitQuery(" "))

	long := strings.Repeat("a", 300)
	assert.Len(t, limitQuery(long), 256)
	assert.Len(t, []rune(limitQuery(strings.Repeat("é", 300))), 256)
}
