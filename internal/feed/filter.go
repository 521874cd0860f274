package feed

import (
	"sort"
	"strings"

	"github.com/DarthQach/news-cast/internal/models"
)

// SummaryMaxLength is the number of characters kept before the ellipsis.
const SummaryMaxLength = 300

const ellipsis = "..."

// FilterByTopics keeps articles whose lowercased "title summary" text contains
// any topic as a plain substring. There is no word boundary check, so "IoT"
// also matches "idiot".
func FilterByTopics(articles []models.Article, topics []string) []models.Article {
	lowered := make([]string, 0, len(topics))
	for _, topic := range topics {
		lowered = append(lowered, strings.ToLower(topic))
	}

	filtered := []models.Article{}
	for _, article := range articles {
		text := strings.ToLower(article.Title + " " + article.Summary)
		for _, topic := range lowered {
			if strings.Contains(text, topic) {
				filtered = append(filtered, article)
				break
			}
		}
	}
	return filtered
}

// Dedupe drops articles whose link was already seen, keeping the first.
func Dedupe(articles []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]models.Article, 0, len(articles))
	for _, article := range articles {
		if _, ok := seen[article.Link]; ok {
			continue
		}
		seen[article.Link] = struct{}{}
		unique = append(unique, article)
	}
	return unique
}

// SortByPublished orders articles newest first. Articles without a date sort
// last; ties keep their input order.
func SortByPublished(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].SortTime().After(articles[j].SortTime())
	})
}

// TruncateSummary cuts s to max characters and appends an ellipsis when longer.
func TruncateSummary(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + ellipsis
}

// Finalize dedupes, sorts and truncates articles, then clears the sort key.
func Finalize(articles []models.Article) []models.Article {
	unique := Dedupe(articles)
	SortByPublished(unique)
	for i := range unique {
		unique[i].Summary = TruncateSummary(unique[i].Summary, SummaryMaxLength)
		unique[i].PublishedAt = nil
	}
	return unique
}
