package extraction

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/williampepple1/vibe-scout/pkg/models"
)

var fixedNow = time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

const locationPage = `<html><body>
<h1>  Club Berlin  </h1>
<a href="/p/AAA111/"><img src="https://cdn.example/a.jpg"></a>
<a href="/p/BBB222/"><img src="https://cdn.example/b.jpg"><svg aria-label="Reel"></svg></a>
<a href="/p/AAA111/?img_index=2"><img src="https://cdn.example/a2.jpg"></a>
<a href="/p/CCC-33_/"></a>
<a href="/explore/tags/techno/">tag</a>
<a href="/p/DDD444/"><img src="https://cdn.example/d.jpg"><svg aria-label="Video"></svg></a>
</body></html>`

func TestExtractMedia(t *testing.T) {
	e := NewExtractor(func() time.Time { return fixedNow })
	items := e.ExtractMedia(doc(t, locationPage), 10)

	require.Len(t, items, 4)
	assert.Equal(t, "AAA111", items[0].Shortcode)
	assert.Equal(t, "https://www.instagram.com/p/AAA111/", items[0].URL)
	assert.Equal(t, "https://cdn.example/a.jpg", items[0].ThumbnailURL)
	assert.Equal(t, models.MediaImage, items[0].MediaType)
	assert.Equal(t, fixedNow, items[0].ScrapedAt)

	assert.Equal(t, models.MediaVideo, items[1].MediaType)
	assert.Equal(t, "CCC-33_", items[2].Shortcode)
	assert.Empty(t, items[2].ThumbnailURL)
	assert.Equal(t, models.MediaVideo, items[3].MediaType)
}

func TestExtractMedia_CapsAtMaxItems(t *testing.T) {
	e := NewExtractor(nil)
	items := e.ExtractMedia(doc(t, locationPage), 2)

	require.Len(t, items, 2)
	assert.Equal(t, "AAA111", items[0].Shortcode)
	assert.Equal(t, "BBB222", items[1].Shortcode)
}

func TestExtractMedia_ScansAtMostTwiceMax(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 4; i++ {
		b.WriteString(`<a href="/p/SAME/"></a>`)
	}
	b.WriteString(`<a href="/p/LATE/"></a></body></html>`)

	items := NewExtractor(nil).ExtractMedia(doc(t, b.String()), 2)

	// only the first four links are scanned, all duplicates of one post
	require.Len(t, items, 1)
	assert.Equal(t, "SAME", items[0].Shortcode)
}

func TestExtractMedia_Empty(t *testing.T) {
	items := NewExtractor(nil).ExtractMedia(doc(t, "<html><body><p>nothing</p></body></html>"), 10)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	assert.Empty(t, NewExtractor(nil).ExtractMedia(nil, 10))
}

func TestExtractMedia_Ordered(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, `<a href="/p/code%d/"><img src="https://cdn/%d.jpg"></a>`, i, i)
	}
	b.WriteString("</body></html>")

	items := NewExtractor(nil).ExtractMedia(doc(t, b.String()), 10)
	require.Len(t, items, 10)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("code%d", i), item.Shortcode)
	}
}

func TestShortcode(t *testing.T) {
	code, ok := Shortcode("https://www.instagram.com/p/Cx9_a-1/?utm=x")
	assert.True(t, ok)
	assert.Equal(t, "Cx9_a-1", code)

	_, ok = Shortcode("/reels/audio/123")
	assert.False(t, ok)
}

func TestLocationName(t *testing.T) {
	name := LocationName(doc(t, locationPage))
	require.NotNil(t, name)
	assert.Equal(t, "Club Berlin", *name)

	assert.Nil(t, LocationName(doc(t, "<html><body><h1> </h1></body></html>")))
}

func TestHasLoginWall(t *testing.T) {
	assert.True(t, HasLoginWall(doc(t, `<html><body><form><input name="username"></form></body></html>`)))
	assert.False(t, HasLoginWall(doc(t, locationPage)))
}
