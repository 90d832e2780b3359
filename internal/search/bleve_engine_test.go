package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBleveEngineIndexesAndSearches(t *testing.T) {
	eng, err := NewBleveEngine("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	require.NoError(t, eng.Index(fixturePosts(), fixtureUsers()))

	res, err := eng.Search("Golang", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, KindPost, res[0].Kind)
	assert.Equal(t, 2, res[0].Post.ID)

	res, err = eng.Search("leanne", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, KindUser, res[0].Kind)
	assert.Equal(t, "Leanne Graham", res[0].User.Name)

	res, err = eng.Search("gol", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, res, "prefix queries match partial words")

	res, err = eng.Search("x", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestBleveEngineReindexDropsStaleDocs(t *testing.T) {
	eng, err := NewBleveEngine("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	require.NoError(t, eng.Index(fixturePosts(), fixtureUsers()))
	stats, ok := eng.(DebugStatser)
	require.True(t, ok)
	n, err := stats.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, eng.Index(fixturePosts()[:1], nil))
	n, err = stats.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := eng.Search("golang", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestBleveEngineOnDisk(t *testing.T) {
	idxPath := filepath.Join(t.TempDir(), "nested", "index.bleve")

	eng, err := NewBleveEngine(idxPath)
	require.NoError(t, err)
	require.NoError(t, eng.Index(fixturePosts(), nil))
	require.NoError(t, eng.Close())

	fi, err := os.Stat(idxPath)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	reopened, err := NewBleveEngine(idxPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	n, err := reopened.(DebugStatser).DocCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n, "documents survive a reopen")
}

func TestParseDocID(t *testing.T) {
	kind, id, ok := parseDocID("post:12")
	assert.True(t, ok)
	assert.Equal(t, KindPost, kind)
	assert.Equal(t, 12, id)

	kind, id, ok = parseDocID(docIDForUser(3))
	assert.True(t, ok)
	assert.Equal(t, KindUser, kind)
	assert.Equal(t, 3, id)

	for _, bad := range []string{"post", "post:x", "feed:1"} {
		_, _, ok := parseDocID(bad)
		assert.False(t, ok, bad)
	}
}
