package api

import (
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DarthQach/news-cast/internal/cache"
	"github.com/DarthQach/news-cast/internal/config"
	"github.com/DarthQach/news-cast/internal/feed"
	"github.com/DarthQach/news-cast/internal/logger"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// FallbackImagePath is where the placeholder image is served.
const FallbackImagePath = "/static/assets/fallback.jpeg"

type Handlers struct {
	config    *config.Config
	processor *feed.Processor
	tracker   cache.Tracker
}

func NewHandlers(cfg *config.Config, processor *feed.Processor, tracker cache.Tracker) *Handlers {
	return &Handlers{
		config:    cfg,
		processor: processor,
		tracker:   tracker,
	}
}

// Index handles GET / with the static page shell
func (h *Handlers) Index(c *fiber.Ctx) error {
	return c.SendFile(filepath.Join(h.config.StaticDir, "index.html"))
}

// GetArticles handles GET /api/articles. The pipeline runs in full on every call.
func (h *Handlers) GetArticles(c *fiber.Ctx) error {
	articles := h.processor.Articles(c.UserContext(), h.fallbackImage(c))
	return c.JSON(articles)
}

func (h *Handlers) fallbackImage(c *fiber.Ctx) string {
	base := h.config.PublicBaseURL
	if base == "" {
		base = c.BaseURL()
	}
	return base + FallbackImagePath
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"time":    time.Now().Format(time.RFC3339),
		"feeds":   len(h.processor.Sources()),
	})
}

type feedResponse struct {
	Source string            `json:"source"`
	Status *cache.FeedStatus `json:"status,omitempty"`
}

// ListFeeds handles GET /api/v1/feeds
func (h *Handlers) ListFeeds(c *fiber.Ctx) error {
	statuses, err := h.tracker.List(c.UserContext())
	if err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("Error listing feed status")
		return fiber.NewError(fiber.StatusServiceUnavailable, "feed status unavailable")
	}

	bySource := make(map[string]cache.FeedStatus, len(statuses))
	for _, status := range statuses {
		bySource[status.Source] = status
	}

	sources := h.processor.Sources()
	feeds := make([]feedResponse, 0, len(sources))
	for _, source := range sources {
		item := feedResponse{Source: source}
		if status, ok := bySource[source]; ok {
			item.Status = &status
		}
		feeds = append(feeds, item)
	}

	return c.JSON(fiber.Map{
		"total": len(feeds),
		"feeds": feeds,
	})
}

// ResetFeedStatus handles DELETE /api/v1/admin/feeds/status
func (h *Handlers) ResetFeedStatus(c *fiber.Ctx) error {
	if err := h.tracker.Reset(c.UserContext()); err != nil {
		return err
	}

	log := logger.Get()
	log.Info().Str("ip", c.IP()).Msg("Feed status reset")

	return c.JSON(fiber.Map{
		"status":  "reset",
		"message": "Feed status cleared",
	})
}
