package poller

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/terminal-bench/gridfeed/internal/fetch"
	"github.com/terminal-bench/gridfeed/internal/reports"
)

// Fetcher retrieves one document by its path under the reports root.
type Fetcher interface {
	Fetch(ctx context.Context, path string) fetch.Outcome
}

// Publisher is the broker-facing batch sink.
type Publisher interface {
	PublishBatch(ctx context.Context, topic string, records []any) error
}

// Config holds poller settings.
type Config struct {
	Families []reports.Family
	Interval time.Duration
	Now      func() time.Time // source-local clock
	Logger   *slog.Logger
}

// Stats is a snapshot of the most recent polling cycle, served by the
// status API.
type Stats struct {
	Cycles        int            `json:"cycles"`
	LastCycle     time.Time      `json:"last_cycle"`
	LastDuration  time.Duration  `json:"last_duration"`
	LastPublished map[string]int `json:"last_published"`
}

// Poller runs the live fetch cycle: on every tick it fetches each
// family's current document, parses it, and publishes the records per
// dataset. One family's failure never blocks the others in the same
// tick.
type Poller struct {
	fetcher  Fetcher
	pub      Publisher
	families []reports.Family
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger

	mu    sync.Mutex
	stats Stats

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New creates a poller over every family in cfg.Families.
func New(fetcher Fetcher, pub Publisher, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Poller{
		fetcher:  fetcher,
		pub:      pub,
		families: cfg.Families,
		interval: cfg.Interval,
		now:      cfg.Now,
		log:      cfg.Logger,
		shutdown: make(chan struct{}),
	}
}

// Start runs an immediate cycle and then one per interval until Stop
// or context cancellation.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.RunCycle(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.RunCycle(ctx)
			case <-p.shutdown:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the polling loop and waits for an in-flight cycle.
func (p *Poller) Stop() {
	close(p.shutdown)
	p.wg.Wait()
}

// Stats returns a copy of the current cycle statistics.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.stats
	out.LastPublished = make(map[string]int, len(p.stats.LastPublished))
	for topic, n := range p.stats.LastPublished {
		out.LastPublished[topic] = n
	}
	return out
}

// RunCycle performs one fetch-parse-publish pass over every family.
func (p *Poller) RunCycle(ctx context.Context) {
	start := time.Now()
	p.log.Info("starting fetch cycle")

	published := make(map[string]int)
	for _, family := range p.families {
		if ctx.Err() != nil {
			return
		}
		batches := p.fetchFamily(ctx, family)

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
			if err := p.pub.PublishBatch(ctx, topic, payloads); err != nil {
				p.log.Error("publish failed", "family", family.Name, "topic", topic, "error", err)
				continue
			}
			published[topic] += len(recs)
			p.log.Info("published dataset", "family", family.Name, "topic", topic, "records", len(recs))
		}
	}

	elapsed := time.Since(start)
	p.mu.Lock()
	p.stats.Cycles++
	p.stats.LastCycle = start
	p.stats.LastDuration = elapsed
	p.stats.LastPublished = published
	p.mu.Unlock()

	p.log.Info("fetch cycle complete", "elapsed", elapsed)
}

// fetchFamily fetches and parses one family's live documents, routing
// records to their dataset topics. All failures resolve to an empty
// result for this family.
func (p *Poller) fetchFamily(ctx context.Context, family reports.Family) map[string][]reports.Record {
	batches := make(map[string][]reports.Record)
	for _, path := range family.LivePaths(p.now()) {
		out := p.fetcher.Fetch(ctx, path)
		switch out.Status {
		case fetch.NotFound:
			p.log.Debug("report not published yet", "family", family.Name, "path", path)
			continue
		case fetch.Fatal:
			p.log.Warn("report fetch failed", "family", family.Name, "path", path, "error", out.Err)
			continue
		}

		recs, err := family.Parse(out.Body)
		if err != nil {
			p.log.Warn("report parse failed", "family", family.Name, "path", path, "error", err)
			continue
		}
		for _, rec := range recs {
			batches[rec.Topic()] = append(batches[rec.Topic()], rec)
		}
	}
	return batches
}
