package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/DarthQach/news-cast/internal/models"
)

// Fetcher retrieves and parses one feed source into entries.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]models.Entry, error)
}

// HTTPFetcher fetches http(s) sources with resty and reads anything else as a
// local file. It does not retry.
type HTTPFetcher struct {
	client *resty.Client
}

func NewFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &HTTPFetcher{client: client}
}

// Fetch retrieves a feed from the given source and converts its items to entries
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]models.Entry, error) {
	body, err := f.read(ctx, source)
	if err != nil {
		return nil, err
	}

	// gofeed.Parser keeps per-parse state, so each fetch gets its own.
	atomLinks := &atomLinkTranslator{}
	parser := gofeed.NewParser()
	parser.AtomTranslator = atomLinks

	parsed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", source, err)
	}

	return entriesFromFeed(parsed, atomLinks.links), nil
}

func (f *HTTPFetcher) read(ctx context.Context, source string) ([]byte, error) {
	lower := strings.ToLower(source)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		data, err := os.ReadFile(strings.TrimPrefix(source, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to read feed file %s: %w", source, err)
		}
		return data, nil
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8").
		Get(source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed from %s: %w", source, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), source)
	}

	return resp.Body(), nil
}

// atomLinkTranslator keeps every <link> of each Atom entry. The default
// translator only turns rel="enclosure" links into enclosures.
type atomLinkTranslator struct {
	gofeed.DefaultAtomTranslator
	links [][]models.Link
}

func (t *atomLinkTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	parsed, err := t.DefaultAtomTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}

	atomFeed, ok := feed.(*atom.Feed)
	if !ok {
		return parsed, nil
	}

	t.links = make([][]models.Link, len(atomFeed.Entries))
	for i, entry := range atomFeed.Entries {
		if entry == nil {
			continue
		}
		for _, link := range entry.Links {
			if link == nil {
				continue
			}
			t.links[i] = append(t.links[i], models.Link{Href: link.Href, Type: link.Type})
		}
	}
	return parsed, nil
}

// entriesFromFeed converts parsed items. atomLinks, when it lines up with the
// items, replaces enclosures as the entry's link list.
func entriesFromFeed(parsed *gofeed.Feed, atomLinks [][]models.Link) []models.Entry {
	useAtomLinks := atomLinks != nil && len(atomLinks) == len(parsed.Items)

	entries := make([]models.Entry, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if item == nil {
			continue
		}

		entry := models.Entry{
			Title:           item.Title,
			Link:            item.Link,
			Summary:         item.Description,
			Published:       item.Published,
			Content:         item.Content,
			FeedTitle:       parsed.Title,
			MediaContent:    mediaExtensions(item.Extensions, "content"),
			MediaThumbnails: mediaExtensions(item.Extensions, "thumbnail"),
		}
		if useAtomLinks {
			entry.Links = atomLinks[i]
			entries = append(entries, entry)
			continue
		}
		for _, enc := range item.Enclosures {
			if enc == nil {
				continue
			}
			entry.Links = append(entry.Links, models.Link{Href: enc.URL, Type: enc.Type})
		}

		entries = append(entries, entry)
	}
	return entries
}

// mediaExtensions collects media:<name> elements, including those nested in media:group.
func mediaExtensions(exts ext.Extensions, name string) []models.Media {
	media, ok := exts["media"]
	if !ok {
		return nil
	}

	var out []models.Media
	collect := func(list []ext.Extension) {
		for _, e := range list {
			out = append(out, models.Media{URL: e.Attrs["url"], Type: e.Attrs["type"]})
		}
	}

	collect(media[name])
	for _, group := range media["group"] {
		collect(group.Children[name])
	}
	return out
}
