package enrich

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"urldeck/internal/entry"
	"urldeck/internal/logging"
	"urldeck/internal/resolver"
)

// Run is one enrichment run. Its counters belong to it alone.
type Run struct {
	id      string
	epoch   uint64
	total   int
	started time.Time

	completed atomic.Int64

	// mu orders completion, event emission and channel close.
	mu          sync.Mutex
	outstanding map[entry.ID]struct{}
	summary     Summary
	events      chan Event
	done        chan struct{}
}

func newRun(id string, epoch uint64, targets []entry.Target) *Run {
	outstanding := make(map[entry.ID]struct{}, len(targets))
	for _, t := range targets {
		outstanding[t.ID] = struct{}{}
	}
	return &Run{
		id:          id,
		epoch:       epoch,
		total:       len(targets),
		started:     time.Now(),
		outstanding: outstanding,
		summary: Summary{
			RunID:  id,
			Epoch:  epoch,
			Total:  len(targets),
			ByKind: make(map[resolver.Kind]int),
		},
		events: make(chan Event, len(targets)+1),
		done:   make(chan struct{}),
	}
}

// ID returns the run identifier used in logs.
func (r *Run) ID() string { return r.id }

// Epoch returns the run's epoch.
func (r *Run) Epoch() uint64 { return r.epoch }

// Total returns the number of entries dispatched.
func (r *Run) Total() int { return r.total }

// Completed returns the number of entries finished so far.
func (r *Run) Completed() int { return int(r.completed.Load()) }

// Events delivers one event per entry in completion order, then a single Done
// event, then closes. The channel holds every event, so a slow or absent
// reader never stalls the run.
func (r *Run) Events() <-chan Event { return r.events }

// Outstanding returns the identities not yet resolved.
func (r *Run) Outstanding() []entry.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]entry.ID, 0, len(r.outstanding))
	for id := range r.outstanding {
		ids = append(ids, id)
	}
	return ids
}

// Wait blocks until every entry is resolved and returns the summary.
func (r *Run) Wait() Summary {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := r.summary
	summary.ByKind = make(map[resolver.Kind]int, len(r.summary.ByKind))
	for k, v := range r.summary.ByKind {
		summary.ByKind[k] = v
	}
	return summary
}

// Done is closed once the final event has been emitted.
func (r *Run) Done() <-chan struct{} { return r.done }

func (r *Run) complete(result Result, logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.outstanding[result.EntryID]; !ok {
		return
	}
	delete(r.outstanding, result.EntryID)
	completed := int(r.completed.Add(1))

	if result.Outcome == OutcomePlaceholder {
		r.summary.Placeholders++
	} else {
		r.summary.Resolved++
		r.summary.ByKind[result.Candidate.Kind]++
	}

	r.events <- Event{
		Epoch:     r.epoch,
		EntryID:   result.EntryID,
		Outcome:   result.Outcome,
		Candidate: result.Candidate,
		Completed: completed,
		Total:     r.total,
	}
	if completed == r.total {
		r.finishLocked(logger)
	}
}

func (r *Run) finish(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishLocked(logger)
}

func (r *Run) finishLocked(logger *slog.Logger) {
	r.summary.Duration = time.Since(r.started)
	r.events <- Event{
		Epoch:     r.epoch,
		Completed: int(r.completed.Load()),
		Total:     r.total,
		Done:      true,
	}
	close(r.events)
	close(r.done)
	logger.Info("enrichment complete",
		logging.Int("total", r.total),
		logging.Int("resolved", r.summary.Resolved),
		logging.Int("placeholders", r.summary.Placeholders),
		logging.Duration("duration", r.summary.Duration),
	)
}
