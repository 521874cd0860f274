package feed

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/DarthQach/news-cast/internal/logger"
	"github.com/DarthQach/news-cast/internal/models"
)

// Normalizer turns raw feed entries into articles
type Normalizer struct {
	htmlTagRegex *regexp.Regexp
	imgSrcRegex  *regexp.Regexp
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		htmlTagRegex: regexp.MustCompile(`<.*?>`),
		imgSrcRegex:  regexp.MustCompile(`<img[^>]+src="([^">]+)"`),
	}
}

// CleanSummary removes HTML tags, unescapes entities and trims whitespace.
func (n *Normalizer) CleanSummary(input string) string {
	cleaned := n.htmlTagRegex.ReplaceAllString(input, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.TrimSpace(cleaned)
}

// ParsePublished parses free-form date text leniently. The offset is dropped and
// the wall clock kept. Empty or unparseable input returns an error and no date.
func ParsePublished(raw string) (t time.Time, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}

	defer func() {
		if r := recover(); r != nil {
			t, err = time.Time{}, fmt.Errorf("date parser panic: %v", r)
		}
	}()

	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), time.UTC), nil
}

// ResolveImage picks the entry image. Only the first source kind present is
// consulted (media content, else media thumbnail, else image typed links); if it
// yields no URL the first <img> in the content body is used, then fallback.
func (n *Normalizer) ResolveImage(entry models.Entry, fallback string) string {
	var image string
	switch {
	case len(entry.MediaContent) > 0:
		image = entry.MediaContent[0].URL
	case len(entry.MediaThumbnails) > 0:
		image = entry.MediaThumbnails[0].URL
	default:
		for _, link := range entry.Links {
			if strings.HasPrefix(link.Type, "image") {
				image = link.Href
				break
			}
		}
	}
	if image != "" {
		return image
	}

	if match := n.imgSrcRegex.FindStringSubmatch(entry.Content); match != nil {
		return match[1]
	}
	return fallback
}

// Normalize builds an Article from a single entry
func (n *Normalizer) Normalize(entry models.Entry, fallbackImage string) models.Article {
	article := models.Article{
		Title:     orDefault(entry.Title, models.DefaultTitle),
		Link:      orDefault(entry.Link, models.DefaultLink),
		Summary:   n.CleanSummary(orDefault(entry.Summary, models.DefaultSummary)),
		Published: models.UnknownPublished,
		Image:     n.ResolveImage(entry, fallbackImage),
		Source:    orDefault(entry.FeedTitle, models.DefaultSource),
	}

	published, err := ParsePublished(entry.Published)
	if err != nil {
		log := logger.Get()
		log.Warn().
			Err(err).
			Str("published", entry.Published).
			Str("link", article.Link).
			Msg("Error parsing date")
		return article
	}

	article.Published = published.Format(models.PublishedLayout)
	article.PublishedAt = &published

	return article
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
