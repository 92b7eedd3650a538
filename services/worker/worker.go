package worker

import (
	"context"
	"time"

	"pokerec/deckworker/internal/browser"
	"pokerec/deckworker/internal/crawler"
	"pokerec/deckworker/logger"
	"pokerec/deckworker/services/ingest"
	"pokerec/deckworker/services/publisher"
)

// Worker drives one crawl-and-ingest cycle per league. Crawlers run
// sequentially; each league's collection is rebuilt before its batches are
// ingested so every run is a full snapshot.
type Worker struct {
	ctx       context.Context
	crawlers  []crawler.Crawler
	pipeline  *ingest.Pipeline
	publisher publisher.Publisher
	interval  time.Duration
	log       *logger.Logger
}

// NewWorker creates a new worker. A zero interval runs a single cycle; a
// nil publisher skips stream trimming.
func NewWorker(ctx context.Context, crawlers []crawler.Crawler, pipeline *ingest.Pipeline, pub publisher.Publisher, interval time.Duration) *Worker {
	if logger.Default == nil {
		logger.Init()
	}
	return &Worker{
		ctx:       ctx,
		crawlers:  crawlers,
		pipeline:  pipeline,
		publisher: pub,
		interval:  interval,
		log:       logger.Default.WithField("component", "worker"),
	}
}

// Start runs crawl cycles until the context is cancelled, or exactly once
// when no interval is configured
func (w *Worker) Start() error {
	for {
		start := time.Now()
		w.runOnce()
		w.log.Info().Dur("elapsed", time.Since(start)).Msg("crawl cycle finished")

		if w.interval <= 0 {
			return nil
		}
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// runOnce crawls every league and ingests its batches. One league's
// failure leaves the other leagues' collections untouched.
func (w *Worker) runOnce() {
	for _, c := range w.crawlers {
		league := c.League()

		res, err := c.Crawl(w.ctx)
		if err != nil {
			// Source-side fetch trouble is transient and expected;
			// anything else deserves attention
			if browser.IsAutomationError(err) {
				w.log.Warn().Str("league", league).Err(err).Msg("crawl failed, source unreachable")
			} else {
				w.log.Error().Str("league", league).Err(err).Msg("crawl failed")
			}
			continue
		}
		for _, failure := range res.Failures {
			w.log.Warn().
				Str("league", league).
				Str("url", failure.URL).
				Str("error", failure.Err).
				Msg("page skipped during crawl")
		}

		if err := w.pipeline.Rebuild(w.ctx, league); err != nil {
			w.log.Error().Str("league", league).Err(err).Msg("rebuild failed, keeping previous snapshot")
			continue
		}
		n, err := w.pipeline.Ingest(w.ctx, league, res.Batches)
		if err != nil {
			w.log.Error().Str("league", league).Err(err).Msg("ingest failed")
			continue
		}
		w.log.Info().
			Str("league", league).
			Int("records", n).
			Int("failed_pages", len(res.Failures)).
			Msg("league ingested")
	}

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			w.log.Error().Err(err).Msg("stream trimming failed")
		}
	}
}
