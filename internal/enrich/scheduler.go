package enrich

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"urldeck/internal/config"
	"urldeck/internal/entry"
	"urldeck/internal/logging"
	"urldeck/internal/resolver"
)

// Options configures a Scheduler.
type Options struct {
	Chain resolver.Chain
	// MaxInFlight bounds concurrently running coordinators. Zero or less
	// starts every coordinator at once.
	MaxInFlight     int
	PlaceholderSize int
	Logger          *slog.Logger
}

// OptionsFrom maps the [resolver] and [enrich] sections of the application
// config.
func OptionsFrom(cfg *config.Config, logger *slog.Logger) Options {
	if cfg == nil {
		return Options{Logger: logger}
	}
	return Options{
		Chain: resolver.Chain{
			LookupServiceURL: cfg.Resolver.LookupServiceURL,
			LookupSize:       cfg.Resolver.LookupSize,
			DisableLookup:    cfg.Resolver.DisableLookupService,
		},
		MaxInFlight:     cfg.Enrich.MaxInFlight,
		PlaceholderSize: cfg.Enrich.PlaceholderSize,
		Logger:          logger,
	}
}

// Scheduler starts enrichment runs over a store.
type Scheduler struct {
	store       *entry.Store
	chain       resolver.Chain
	coordinator *Coordinator
	maxInFlight int
	logger      *slog.Logger

	// startMu pairs each snapshot with its epoch: a higher epoch never
	// carries an older snapshot.
	startMu sync.Mutex
	epoch   atomic.Uint64
}

// NewScheduler creates a Scheduler that resolves icons for store using
// fetcher.
func NewScheduler(store *entry.Store, fetcher Fetcher, opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		store:       store,
		chain:       opts.Chain,
		coordinator: NewCoordinator(fetcher, opts.PlaceholderSize, logger),
		maxInFlight: opts.MaxInFlight,
		logger:      logging.NewComponentLogger(logger, "enrich"),
	}
}

// Epoch returns the epoch of the most recently started run, or zero.
func (s *Scheduler) Epoch() uint64 {
	return s.epoch.Load()
}

// Start snapshots the store and dispatches one coordinator per entry. It
// returns immediately. Older runs keep going and keep their own counters.
// Cancelling ctx makes outstanding entries fall back to the placeholder.
func (s *Scheduler) Start(ctx context.Context) *Run {
	s.startMu.Lock()
	targets := s.store.Snapshot()
	epoch := s.epoch.Add(1)
	s.startMu.Unlock()
	run := newRun(uuid.NewString(), epoch, targets)

	runCtx := logging.WithEpoch(logging.WithRunID(ctx, run.id), epoch)
	logger := logging.WithContext(runCtx, s.logger)
	logger.Info("enrichment started",
		logging.Int("total", len(targets)),
		logging.Int("max_in_flight", s.maxInFlight),
	)

	if len(targets) == 0 {
		run.finish(logger)
		return run
	}

	var sem chan struct{}
	if s.maxInFlight > 0 {
		sem = make(chan struct{}, s.maxInFlight)
	}
	for _, target := range targets {
		go s.resolve(runCtx, run, target, sem, logger)
	}
	return run
}

func (s *Scheduler) resolve(ctx context.Context, run *Run, target entry.Target, sem chan struct{}, logger *slog.Logger) {
	if sem != nil {
		sem <- struct{}{}
		defer func() { <-sem }()
	}

	candidates := s.chain.Candidates(target.URL)
	if len(candidates) == 0 {
		logger.Debug("no candidates for url",
			logging.String(logging.FieldEntryID, string(target.ID)),
			logging.String("url", target.URL),
		)
	}
	result := s.coordinator.Resolve(ctx, target.ID, candidates)

	if !s.store.SetIcon(target.ID, result.Icon) {
		logger.Debug("entry deleted before icon arrived", logging.String(logging.FieldEntryID, string(target.ID)))
	}
	run.complete(result, logger)
}

// Event is one progress notification. Done events carry no entry.
type Event struct {
	Epoch     uint64
	EntryID   entry.ID
	Outcome   Outcome
	Candidate resolver.Candidate
	Completed int
	Total     int
	Done      bool
}

// Summary describes a finished run.
type Summary struct {
	RunID        string
	Epoch        uint64
	Total        int
	Resolved     int
	Placeholders int
	ByKind       map[resolver.Kind]int
	Duration     time.Duration
}
