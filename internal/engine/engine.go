package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/storyspider/internal/config"
	"github.com/IshaanNene/storyspider/internal/ledger"
	"github.com/IshaanNene/storyspider/internal/types"
)

// State represents the engine's current lifecycle state.
type State int32

const (
	StateIdle      State = 0
	StateLocking   State = 1
	StateCrawling  State = 2
	StateReleasing State = 3
	StateDone      State = 4
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocking:
		return "locking"
	case StateCrawling:
		return "crawling"
	case StateReleasing:
		return "releasing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Stats tracks crawl statistics.
type Stats struct {
	SeedsScanned      atomic.Int64
	SeedsSkipped      atomic.Int64
	LinksDiscovered   atomic.Int64
	LinksSkipped      atomic.Int64
	RecordsWritten    atomic.Int64
	ExtractionsFailed atomic.Int64
	StartTime         time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"seeds_scanned":      s.SeedsScanned.Load(),
		"seeds_skipped":      s.SeedsSkipped.Load(),
		"links_discovered":   s.LinksDiscovered.Load(),
		"links_skipped":      s.LinksSkipped.Load(),
		"records_written":    s.RecordsWritten.Load(),
		"extractions_failed": s.ExtractionsFailed.Load(),
		"elapsed":            time.Since(s.StartTime).String(),
	}
}

// LinkDiscoverer finds candidate story links on a seed page. It never fails;
// problems yield an empty result.
type LinkDiscoverer interface {
	Discover(ctx context.Context, seedURL string, filters []string) []string
}

// ContentExtractor turns a story URL into a record, or nil on failure.
type ContentExtractor interface {
	Extract(ctx context.Context, storyURL string) *types.Record
}

// Engine is the crawl orchestrator: seeds -> links -> records -> ledger.
type Engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	discover  LinkDiscoverer
	extract   ContentExtractor
	crawled   *CrawledSet
	state     atomic.Int32
	stats     *Stats
	newWriter func(f *ledger.File) recordWriter
}

type recordWriter interface {
	Write(rec *types.Record) error
}

// New creates an Engine. crawled is mutated by Run.
func New(cfg *config.Config, d LinkDiscoverer, e ContentExtractor, crawled *CrawledSet, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   logger.With("component", "engine"),
		discover: d,
		extract:  e,
		crawled:  crawled,
		stats:    &Stats{},
		newWriter: func(f *ledger.File) recordWriter {
			return ledger.NewWriter(f, f.Path())
		},
	}
}

// Run appends every new story reachable from seeds to the configured ledger
// file. The ledger lock is held for the whole seed loop and released on
// every exit path.
func (e *Engine) Run(ctx context.Context, seeds []string) (err error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateLocking)) {
		return fmt.Errorf("engine is in state %s, cannot run", State(e.state.Load()))
	}
	defer e.state.Store(int32(StateDone))
	e.stats.StartTime = time.Now()

	path := ledgerPath(e.cfg.Ledger)
	f, err := ledger.OpenFile(path, e.logger)
	if err != nil {
		return err
	}
	defer func() {
		e.state.Store(int32(StateReleasing))
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.Lock(ctx, e.cfg.Ledger.LockRetry); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	e.state.Store(int32(StateCrawling))

	e.logger.Info("crawl starting",
		"ledger", path,
		"seeds", len(seeds),
		"known_urls", e.crawled.Len(),
		"filters", e.cfg.Filters,
	)

	if err := e.crawl(ctx, seeds, e.newWriter(f)); err != nil {
		return err
	}

	e.logger.Info("crawl complete", "stats", e.stats.Snapshot())
	return nil
}

func (e *Engine) crawl(ctx context.Context, seeds []string, w recordWriter) error {
	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return errors.Join(types.ErrCrawlStopped, err)
		}
		if e.crawled.Has(seed) {
			e.stats.SeedsSkipped.Add(1)
			continue
		}
		e.stats.SeedsScanned.Add(1)

		links := e.discover.Discover(ctx, seed, e.cfg.Filters)
		e.stats.LinksDiscovered.Add(int64(len(links)))

		for _, link := range links {
			if err := ctx.Err(); err != nil {
				return errors.Join(types.ErrCrawlStopped, err)
			}
			if e.crawled.Has(link) {
				e.stats.LinksSkipped.Add(1)
				continue
			}

			rec := e.extract.Extract(ctx, link)
			if rec == nil {
				e.stats.ExtractionsFailed.Add(1)
			} else {
				if err := w.Write(rec); err != nil {
					return err
				}
				e.stats.RecordsWritten.Add(1)
				e.logger.Debug("record written", "url", link, "seed", seed)
			}
			// failed links are not retried in this process
			e.crawled.Add(link)
		}
	}
	return nil
}

// Stats returns the current crawl statistics.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// GetState returns the current engine state.
func (e *Engine) GetState() State {
	return State(e.state.Load())
}

func ledgerPath(cfg config.LedgerConfig) string {
	return filepath.Join(cfg.Directory, cfg.Filename)
}
