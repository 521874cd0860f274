package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DarthQach/news-cast/internal/cache"
	"github.com/DarthQach/news-cast/internal/config"
	"github.com/DarthQach/news-cast/internal/feed"
	"github.com/DarthQach/news-cast/internal/models"
)

type stubFetcher struct {
	feeds map[string][]models.Entry
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, source string) ([]models.Entry, error) {
	s.calls++
	return s.feeds[source], nil
}

func newTestApp(t *testing.T, fetcher feed.Fetcher, mutate func(*config.Config)) (*fiber.App, cache.Tracker) {
	t.Helper()

	static := t.TempDir()
	if err := os.MkdirAll(filepath.Join(static, "assets"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(static, "index.html"), []byte("<!doctype html><title>News</title>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(static, "assets", "fallback.jpeg"), []byte{0xff, 0xd8, 0xff, 0xd9}, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		HTTPTimeout: 5 * time.Second,
		StaticDir:   static,
		Topics:      []string{"Machine Learning", "Fintech"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	tracker := cache.NewMemoryTracker()
	processor := feed.NewProcessor(fetcher, tracker, feed.Settings{
		Sources: []string{"https://a.example/rss", "https://b.example/rss"},
		Topics:  cfg.Topics,
	})
	return NewApp(cfg, processor, tracker), tracker
}

func sampleFetcher() *stubFetcher {
	return &stubFetcher{feeds: map[string][]models.Entry{
		"https://a.example/rss": {
			{Title: "Machine Learning on the edge", Link: "https://a.example/1", Published: "2024-03-01T08:00:00Z", FeedTitle: "Feed A"},
			{Title: "Gardening tips", Link: "https://a.example/2", FeedTitle: "Feed A"},
		},
		"https://b.example/rss": {
			{Title: "Fintech funding slows", Link: "https://b.example/1", Published: "2024-03-02T08:00:00Z", FeedTitle: "Feed B",
				MediaContent: []models.Media{{URL: "https://img.example/fintech.jpg"}}},
			{Title: "Machine Learning on the edge (repost)", Link: "https://a.example/1", FeedTitle: "Feed B"},
		},
	}}
}

func TestGetArticles(t *testing.T) {
	fetcher := sampleFetcher()
	app, _ := newTestApp(t, fetcher, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/articles", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var articles []map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d: %v", len(articles), articles)
	}

	first, second := articles[0], articles[1]
	if first["title"] != "Fintech funding slows" || first["image"] != "https://img.example/fintech.jpg" {
		t.Errorf("unexpected first article %v", first)
	}
	if second["link"] != "https://a.example/1" || second["source"] != "Feed A" {
		t.Errorf("unexpected second article %v", second)
	}
	if second["image"] != "http://example.com"+FallbackImagePath {
		t.Errorf("expected fallback image from request base url, got %q", second["image"])
	}
	for _, a := range articles {
		if len(a) != 6 {
			t.Errorf("expected 6 public fields, got %v", a)
		}
	}

	// No caching between requests
	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/articles", nil), -1); err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 4 {
		t.Errorf("expected every request to refetch both feeds, got %d fetches", fetcher.calls)
	}
}

func TestGetArticlesPublicBaseURL(t *testing.T) {
	app, _ := newTestApp(t, sampleFetcher(), func(cfg *config.Config) {
		cfg.PublicBaseURL = "https://news.example.com"
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/articles", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "https://news.example.com"+FallbackImagePath) {
		t.Errorf("expected configured base url in fallback image, got %s", body)
	}
}

func TestGetArticlesEmpty(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/articles", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func TestIndexAndStatic(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML content type, got %q", ct)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, FallbackImagePath, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected fallback image to be served, got %d", resp.StatusCode)
	}
}

func TestHealthAndFeeds(t *testing.T) {
	app, tracker := newTestApp(t, sampleFetcher(), nil)
	_ = tracker.Record(context.Background(), cache.FetchResult{Source: "https://a.example/rss", Entries: 2, At: time.Now()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	var health map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" || health["feeds"] != float64(2) {
		t.Errorf("unexpected health %v", health)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/feeds", nil))
	if err != nil {
		t.Fatal(err)
	}
	var feeds struct {
		Total int `json:"total"`
		Feeds []struct {
			Source string            `json:"source"`
			Status *cache.FeedStatus `json:"status"`
		} `json:"feeds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feeds); err != nil {
		t.Fatal(err)
	}
	if feeds.Total != 2 || feeds.Feeds[0].Status == nil || feeds.Feeds[1].Status != nil {
		t.Errorf("unexpected feeds response %+v", feeds)
	}
	if feeds.Feeds[0].Status.LastStatus != cache.StatusOK {
		t.Errorf("unexpected status %+v", feeds.Feeds[0].Status)
	}
}

func TestResetFeedStatus(t *testing.T) {
	app, tracker := newTestApp(t, sampleFetcher(), func(cfg *config.Config) {
		cfg.AdminAPIKey = "admin-key"
	})
	_ = tracker.Record(context.Background(), cache.FetchResult{Source: "https://a.example/rss", At: time.Now()})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/feeds/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/feeds/status", nil)
	req.Header.Set("X-API-Key", "admin-key")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	statuses, _ := tracker.List(context.Background())
	if len(statuses) != 0 {
		t.Errorf("expected tracker to be cleared, got %d entries", len(statuses))
	}
}

func TestAdminRoutesDisabledWithoutKey(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/feeds/status", nil)
	req.Header.Set("X-API-Key", "anything")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 when admin is disabled, got %d", resp.StatusCode)
	}
}
