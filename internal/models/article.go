package models

import "time"

// Default values for entry fields missing from a feed
const (
	DefaultTitle     = "No title"
	DefaultLink      = "No link"
	DefaultSummary   = "No summary"
	DefaultSource    = "Unknown Source"
	UnknownPublished = "Unknown date"
)

// PublishedLayout is the display format of Article.Published.
const PublishedLayout = "2006-01-02 15:04"

// Article is the normalized record served to the client.
type Article struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
	Image     string `json:"image"`
	Source    string `json:"source"`

	// PublishedAt is the sort key. Nil when the date could not be parsed.
	PublishedAt *time.Time `json:"-"`
}

// SortTime returns the sort key, or the zero time when the article has no date.
func (a Article) SortTime() time.Time {
	if a.PublishedAt == nil {
		return time.Time{}
	}
	return *a.PublishedAt
}

// Entry is one item of a parsed feed, prior to normalization.
type Entry struct {
	Title     string
	Link      string
	Summary   string
	Published string
	Content   string
	FeedTitle string

	MediaContent    []Media
	MediaThumbnails []Media
	Links           []Link
}

// Media is a media:content or media:thumbnail attachment.
type Media struct {
	URL  string
	Type string
}

// Link is a typed link or enclosure on an entry.
type Link struct {
	Href string
	Type string
}
