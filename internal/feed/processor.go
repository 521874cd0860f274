package feed

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DarthQach/news-cast/internal/cache"
	"github.com/DarthQach/news-cast/internal/logger"
	"github.com/DarthQach/news-cast/internal/models"
)

// Settings is the pipeline configuration fixed at startup.
type Settings struct {
	Sources        []string
	Topics         []string
	MaxConcurrency int
}

type Processor struct {
	fetcher    Fetcher
	normalizer *Normalizer
	tracker    cache.Tracker
	settings   Settings
}

// NewProcessor builds the pipeline. tracker may be nil.
func NewProcessor(fetcher Fetcher, tracker cache.Tracker, settings Settings) *Processor {
	if settings.MaxConcurrency < 1 {
		settings.MaxConcurrency = 1
	}
	settings.Sources = append([]string(nil), settings.Sources...)
	settings.Topics = append([]string(nil), settings.Topics...)

	return &Processor{
		fetcher:    fetcher,
		normalizer: NewNormalizer(),
		tracker:    tracker,
		settings:   settings,
	}
}

// Sources returns the configured feed sources.
func (p *Processor) Sources() []string {
	return append([]string(nil), p.settings.Sources...)
}

// Articles runs the full pipeline: fetch every source, normalize, filter by
// topic, dedupe, sort and truncate. Feed failures only drop that feed's entries.
func (p *Processor) Articles(ctx context.Context, fallbackImage string) []models.Article {
	log := logger.Get()
	start := time.Now()

	entries := p.fetchAll(ctx)

	log.Info().
		Int("feeds", len(p.settings.Sources)).
		Int("total_entries", len(entries)).
		Dur("fetch_duration", time.Since(start)).
		Msg("Fetched feed entries")

	articles := make([]models.Article, 0, len(entries))
	for _, entry := range entries {
		articles = append(articles, p.normalizer.Normalize(entry, fallbackImage))
	}

	filtered := FilterByTopics(articles, p.settings.Topics)
	result := Finalize(filtered)

	log.Info().
		Int("matched", len(filtered)).
		Int("unique", len(result)).
		Dur("total_duration", time.Since(start)).
		Msg("Finished processing feeds")

	return result
}

// fetchAll fetches sources with at most MaxConcurrency in flight and returns the
// entries in configured source order.
func (p *Processor) fetchAll(ctx context.Context) []models.Entry {
	perSource := make([][]models.Entry, len(p.settings.Sources))

	var g errgroup.Group
	g.SetLimit(p.settings.MaxConcurrency)
	for i, source := range p.settings.Sources {
		g.Go(func() error {
			perSource[i] = p.fetchOne(ctx, source)
			return nil
		})
	}
	_ = g.Wait()

	var entries []models.Entry
	for _, list := range perSource {
		entries = append(entries, list...)
	}
	return entries
}

func (p *Processor) fetchOne(ctx context.Context, source string) []models.Entry {
	log := logger.Get()
	start := time.Now()

	entries, err := p.fetcher.Fetch(ctx, source)

	result := cache.FetchResult{Source: source, Entries: len(entries), Err: err, At: start}
	if len(entries) > 0 {
		result.FeedTitle = entries[0].FeedTitle
	}
	p.record(ctx, result)

	if err != nil {
		log.Warn().
			Err(err).
			Str("source", source).
			Msg("Error fetching feed, skipping")
		return nil
	}

	log.Debug().
		Str("source", source).
		Int("entries", len(entries)).
		Dur("duration", time.Since(start)).
		Msg("Fetched feed")
	return entries
}

func (p *Processor) record(ctx context.Context, result cache.FetchResult) {
	if p.tracker == nil {
		return
	}
	if err := p.tracker.Record(ctx, result); err != nil {
		log := logger.Get()
		log.Error().
			Err(err).
			Str("source", result.Source).
			Msg("Error recording feed status")
	}
}
