package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/williampepple1/vibe-scout/pkg/models"
)

const (
	// PostLinkSelector matches anchors that point at a post
	PostLinkSelector = `a[href*="/p/"]`
	// VideoIndicatorSelector matches the overlay icon drawn on video and reel tiles
	VideoIndicatorSelector = `svg[aria-label*="Video"], svg[aria-label*="Reel"]`
	// LoginWallSelector matches the login form shown to anonymous visitors
	LoginWallSelector = `input[name="username"]`
	// LocationNameSelector matches the location header
	LocationNameSelector = "h1"

	postURLFormat = "https://www.instagram.com/p/%s/"
)

var shortcodePattern = regexp.MustCompile(`/p/([A-Za-z0-9_-]+)`)

// Extractor pulls media references out of a rendered location page
type Extractor struct {
	now func() time.Time
}

// NewExtractor creates a new extractor. now stamps each reference; nil means time.Now.
func NewExtractor(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

// Shortcode returns the post shortcode embedded in href
func Shortcode(href string) (string, bool) {
	match := shortcodePattern.FindStringSubmatch(href)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ExtractMedia returns up to maxItems distinct posts in page order. At most
// 2*maxItems candidate links are inspected.
func (e *Extractor) ExtractMedia(doc *goquery.Document, maxItems int) []models.MediaReference {
	items := []models.MediaReference{}
	if doc == nil || maxItems <= 0 {
		return items
	}

	seen := make(map[string]struct{})
	links := doc.Find(PostLinkSelector)
	limit := links.Length()
	if limit > maxItems*2 {
		limit = maxItems * 2
	}

	for i := 0; i < limit && len(items) < maxItems; i++ {
		link := links.Eq(i)

		href, ok := link.Attr("href")
		if !ok || href == "" {
			continue
		}

		shortcode, ok := Shortcode(href)
		if !ok {
			continue
		}
		if _, dup := seen[shortcode]; dup {
			continue
		}
		seen[shortcode] = struct{}{}

		thumbnail := ""
		if src, ok := link.Find("img").First().Attr("src"); ok {
			thumbnail = strings.TrimSpace(src)
		}

		kind := models.MediaImage
		if link.Find(VideoIndicatorSelector).Length() > 0 {
			kind = models.MediaVideo
		}

		items = append(items, models.MediaReference{
			URL:          fmt.Sprintf(postURLFormat, shortcode),
			ThumbnailURL: thumbnail,
			MediaType:    kind,
			Shortcode:    shortcode,
			ScrapedAt:    e.now().UTC(),
		})
	}

	return items
}

// LocationName returns the trimmed text of the location header, if any
func LocationName(doc *goquery.Document) *string {
	if doc == nil {
		return nil
	}
	name := strings.TrimSpace(doc.Find(LocationNameSelector).First().Text())
	if name == "" {
		return nil
	}
	return &name
}

// HasLoginWall reports whether the page is blocking anonymous access
func HasLoginWall(doc *goquery.Document) bool {
	return doc != nil && doc.Find(LoginWallSelector).Length() > 0
}
