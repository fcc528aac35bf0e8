package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/terminal-bench/gridfeed/internal/fetch"
	"github.com/terminal-bench/gridfeed/internal/reports"
)

// Fetcher retrieves one document by its path under the reports root.
type Fetcher interface {
	Fetch(ctx context.Context, path string) fetch.Outcome
}

// Publisher is the broker-facing batch sink. It must tolerate
// overlapping records across calls; the downstream sink deduplicates
// by timestamp plus dimension key.
type Publisher interface {
	PublishBatch(ctx context.Context, topic string, records []any) error
}

// Config holds reconciler settings.
type Config struct {
	Families   []reports.Family
	WindowDays int
	Permits    int64
	Now        func() time.Time // source-local clock
	Logger     *slog.Logger
}

// Reconciler rebuilds continuous history from the source's dated
// archive documents. One run enumerates every identifier in the
// lookback window, fetches and parses them under a global concurrency
// bound, aggregates the records per dataset topic, and hands each
// non-empty batch to the publisher. Runs keep no state: every record
// found is republished and the downstream idempotent sink absorbs the
// overlap.
type Reconciler struct {
	fetcher  Fetcher
	pub      Publisher
	families []reports.Family
	window   int
	permits  int64
	now      func() time.Time
	log      *slog.Logger
}

// NewReconciler creates a reconciler over the archive-capable subset
// of cfg.Families.
func NewReconciler(fetcher Fetcher, pub Publisher, cfg Config) *Reconciler {
	if cfg.Permits <= 0 {
		cfg.Permits = 10
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Reconciler{
		fetcher:  fetcher,
		pub:      pub,
		families: reports.Archived(cfg.Families),
		window:   cfg.WindowDays,
		permits:  cfg.Permits,
		now:      cfg.Now,
		log:      cfg.Logger,
	}
}

// Run performs one reconciliation pass. Individual identifier failures
// are logged and contribute zero records; only a cancelled context
// aborts the run.
func (r *Reconciler) Run(ctx context.Context) error {
	ids := r.enumerateAll()
	if len(ids) == 0 {
		r.log.Info("nothing to backfill", "window_days", r.window)
		return nil
	}
	r.log.Info("starting backfill",
		"window_days", r.window,
		"documents", len(ids),
		"permits", r.permits)

	// Results are collected by work-list index so that aggregation
	// order does not depend on task completion order.
	results := make([][]reports.Record, len(ids))
	sem := semaphore.NewWeighted(r.permits)
	var wg sync.WaitGroup

	for i, id := range ids {
		i, id := i, id
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)
			results[i] = r.fetchOne(ctx, id)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backfill aborted: %w", err)
	}

	batches := make(map[string][]reports.Record)
	for _, recs := range results {
		for _, rec := range recs {
			batches[rec.Topic()] = append(batches[rec.Topic()], rec)
		}
	}
	if len(batches) == 0 {
		r.log.Info("no backfill data available")
		return nil
	}

	topics := make([]string, 0, len(batches))
	for topic := range batches {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		recs := batches[topic]
		payloads := make([]any, len(recs))
		for i, rec := range recs {
			payloads[i] = rec
		}
		if err := r.pub.PublishBatch(ctx, topic, payloads); err != nil {
			// One dataset's flush failure must not block the others.
			r.log.Error("backfill publish failed", "topic", topic, "records", len(recs), "error", err)
			continue
		}
		r.log.Info("backfilled dataset", "topic", topic, "records", len(recs))
	}

	r.log.Info("backfill complete")
	return nil
}

func (r *Reconciler) enumerateAll() []ArchiveID {
	now := r.now()
	var ids []ArchiveID
	for _, f := range r.families {
		ids = append(ids, Enumerate(f, r.window, now)...)
	}
	return ids
}

// fetchOne resolves one identifier to its records. Every failure mode
// maps to zero records; nothing here can abort the run.
func (r *Reconciler) fetchOne(ctx context.Context, id ArchiveID) []reports.Record {
	out := r.fetcher.Fetch(ctx, id.Path())
	switch out.Status {
	case fetch.NotFound:
		// The window has no data yet or predates retention.
		r.log.Debug("archive not published", "family", id.Family.Name, "path", id.Path())
		return nil
	case fetch.Fatal:
		r.log.Warn("archive fetch failed", "family", id.Family.Name, "path", id.Path(), "error", out.Err)
		return nil
	}

	recs, err := id.Family.Parse(out.Body)
	if err != nil {
		r.log.Warn("archive parse failed", "family", id.Family.Name, "path", id.Path(), "error", err)
		return nil
	}
	return recs
}
