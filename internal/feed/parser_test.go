package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
	<channel>
		<title>Test RSS Feed</title>
		<link>https://blog.test.invalid</link>
		<description>Test Description</description>
		<item>
			<title>First Article</title>
			<link>https://blog.test.invalid/first</link>
			<description>This is the &lt;b&gt;first&lt;/b&gt; article</description>
			<dc:creator>Leanne Graham</dc:creator>
			<guid>article-1</guid>
		</item>
		<item>
			<title>Second Article</title>
			<description>short</description>
			<content:encoded><![CDATA[<p>Full content here</p><p>Second &amp; last paragraph</p>]]></content:encoded>
			<dc:creator>Ervin Howell</dc:creator>
			<guid>article-2</guid>
		</item>
		<item>
			<title>Third Article</title>
			<description>again</description>
			<dc:creator>Leanne Graham</dc:creator>
		</item>
		<item>
			<title>Anonymous</title>
			<description>nobody wrote this</description>
		</item>
	</channel>
</rss>`

func TestParser_ParseRSS(t *testing.T) {
	res, err := NewParser().Parse(strings.NewReader(rssFixture))
	require.NoError(t, err)

	assert.Equal(t, "Test RSS Feed", res.Title)
	require.Len(t, res.Posts, 4)
	require.Len(t, res.Users, 2)

	first := res.Posts[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "First Article", first.Title)
	assert.Equal(t, "This is the first article", first.Body)
	require.NotNil(t, first.UserID)
	assert.Equal(t, 1, *first.UserID)

	second := res.Posts[1]
	assert.Equal(t, "Full content here\n\nSecond & last paragraph", second.Body, "content wins over description")
	assert.Equal(t, 2, *second.UserID)

	assert.Equal(t, 1, *res.Posts[2].UserID, "repeat authors map to the same user")
	assert.Nil(t, res.Posts[3].UserID)

	assert.Equal(t, "Leanne Graham", res.Users[0].Name)
	assert.Equal(t, "leanne.graham", res.Users[0].Username)
	assert.Equal(t, "https://blog.test.invalid", res.Users[0].Website)
}

func TestParser_ParseAtom(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Test Atom Feed</title>
	<link href="https://atom.test.invalid/"/>
	<author><name>Feed Owner</name><email>owner@atom.test.invalid</email></author>
	<entry>
		<title>Atom Entry</title>
		<id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
		<summary>Some text.</summary>
	</entry>
</feed>`

	res, err := NewParser().Parse(strings.NewReader(atom))
	require.NoError(t, err)

	require.Len(t, res.Posts, 1)
	require.Len(t, res.Users, 1, "entries fall back to the feed author")
	assert.Equal(t, "Feed Owner", res.Users[0].Name)
	assert.Equal(t, "owner", res.Users[0].Username)
	assert.Equal(t, "owner@atom.test.invalid", res.Users[0].Email)
	assert.Equal(t, "Some text.", res.Posts[0].Body)
}

func TestParser_ParseJSONFeed(t *testing.T) {
	jsonFeed := `{
		"version": "https://jsonfeed.org/version/1.1",
		"title": "JSON Feed",
		"items": [
			{"id": "1", "title": "From JSON", "content_html": "<p>plain body</p>", "author": {"name": "Clementine Bauch"}, "authors": [{"name": "Clementine Bauch"}]}
		]
	}`

	res, err := NewParser().Parse(strings.NewReader(jsonFeed))
	require.NoError(t, err)

	require.Len(t, res.Posts, 1)
	assert.Equal(t, "From JSON", res.Posts[0].Title)
	assert.Equal(t, "plain body", res.Posts[0].Body)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "Clementine Bauch", res.Users[0].Name)
}

func TestParser_ParseErrors(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader("not a feed"))
	assert.Error(t, err)
}

func TestParser_EmptyFeed(t *testing.T) {
	res, err := NewParser().Parse(strings.NewReader(`<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`))
	require.NoError(t, err)
	assert.Empty(t, res.Posts)
	assert.Empty(t, res.Users)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"<p>one</p><p>two</p>", "one\n\ntwo"},
		{"a<br/>b", "a\nb"},
		{"<a href=\"x\">link</a> &amp; more", "link & more"},
		{"  lots   of\t space ", "lots of space"},
		{"<div><p>x</p></div>\n\n\n\n<p>y</p>", "x\n\ny"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripHTML(tt.in), "stripHTML(%q)", tt.in)
	}
}
