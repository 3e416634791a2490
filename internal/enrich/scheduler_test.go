package enrich_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"urldeck/internal/enrich"
	"urldeck/internal/entry"
	"urldeck/internal/icon"
	"urldeck/internal/logging"
	"urldeck/internal/resolver"
)

// gatedFetcher blocks every call until release is closed, then fails.
type gatedFetcher struct {
	release  chan struct{}
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{release: make(chan struct{})}
}

func (f *gatedFetcher) Fetch(ctx context.Context, _ string) (icon.Icon, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	select {
	case <-f.release:
	case <-ctx.Done():
		return icon.Icon{}, ctx.Err()
	}
	return icon.Icon{}, errUnavailable
}

func collect(t *testing.T, run *enrich.Run) []enrich.Event {
	t.Helper()
	var events []enrich.Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-run.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("run %d did not finish; got %d events", run.Epoch(), len(events))
		}
	}
}

func assertProgress(t *testing.T, events []enrich.Event, epoch uint64, total int) {
	t.Helper()
	if len(events) != total+1 {
		t.Fatalf("epoch %d: got %d events, want %d", epoch, len(events), total+1)
	}
	seen := make(map[entry.ID]bool)
	for i, ev := range events[:total] {
		if ev.Done {
			t.Fatalf("epoch %d: Done before the last event", epoch)
		}
		if ev.Epoch != epoch || ev.Total != total {
			t.Fatalf("epoch %d: event %+v carries wrong epoch/total", epoch, ev)
		}
		if ev.Completed != i+1 {
			t.Fatalf("epoch %d: event %d completed = %d", epoch, i, ev.Completed)
		}
		if seen[ev.EntryID] {
			t.Fatalf("epoch %d: entry %s reported twice", epoch, ev.EntryID)
		}
		seen[ev.EntryID] = true
	}
	last := events[total]
	if !last.Done || last.Completed != total || last.Total != total || last.Epoch != epoch {
		t.Fatalf("epoch %d: final event %+v", epoch, last)
	}
}

func TestSchedulerResolvesEveryEntry(t *testing.T) {
	store := entry.NewStore()
	store.Replace([]entry.Pair{
		{Title: "Go", URL: "https://go.dev"},
		{Title: "Broken", URL: "::::"},
		{Title: "Example", URL: "example.com/page"},
	})
	chain := resolver.Chain{}
	goCandidates := chain.Candidates("https://go.dev")
	fetcher := newScriptedFetcher(map[string]icon.Icon{goCandidates[0].URL: fakeIcon("ico")})

	sched := enrich.NewScheduler(store, fetcher, enrich.Options{Chain: chain, Logger: logging.NewNop()})
	run := sched.Start(context.Background())
	events := collect(t, run)
	assertProgress(t, events, 1, 3)

	summary := run.Wait()
	if summary.Resolved != 1 || summary.Placeholders != 2 || summary.ByKind[resolver.KindFaviconICO] != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	for _, e := range store.Entries() {
		if !e.HasIcon() {
			t.Fatalf("entry %q left without icon", e.Title)
		}
	}
	if len(run.Outstanding()) != 0 {
		t.Fatalf("outstanding = %v", run.Outstanding())
	}
}

func TestSchedulerEmptyStore(t *testing.T) {
	sched := enrich.NewScheduler(entry.NewStore(), newScriptedFetcher(nil), enrich.Options{})
	run := sched.Start(context.Background())
	events := collect(t, run)
	if len(events) != 1 || !events[0].Done || events[0].Total != 0 || events[0].Completed != 0 {
		t.Fatalf("events = %+v", events)
	}
	if summary := run.Wait(); summary.Total != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestSchedulerEpochsKeepSeparateCounters(t *testing.T) {
	store := entry.NewStore()
	ids := store.Replace([]entry.Pair{
		{Title: "a", URL: "a.example"},
		{Title: "b", URL: "b.example"},
	})
	fetcher := newGatedFetcher()
	sched := enrich.NewScheduler(store, fetcher, enrich.Options{Chain: resolver.Chain{DisableLookup: true}})

	first := sched.Start(context.Background())
	store.Append("c", "c.example")
	store.Append("d", "d.example")
	store.Delete(ids[0])
	second := sched.Start(context.Background())

	if first.Epoch() != 1 || second.Epoch() != 2 || sched.Epoch() != 2 {
		t.Fatalf("epochs = %d, %d, latest %d", first.Epoch(), second.Epoch(), sched.Epoch())
	}
	if first.Total() != 2 || second.Total() != 3 {
		t.Fatalf("totals = %d, %d", first.Total(), second.Total())
	}
	close(fetcher.release)

	assertProgress(t, collect(t, first), 1, 2)
	assertProgress(t, collect(t, second), 2, 3)
	if first.Completed() != 2 || second.Completed() != 3 {
		t.Fatalf("completed = %d, %d", first.Completed(), second.Completed())
	}
	if _, ok := store.Get(ids[0]); ok {
		t.Fatal("deleted entry reappeared after late icon")
	}
	for _, e := range store.Entries() {
		if !e.HasIcon() {
			t.Fatalf("entry %q left without icon", e.Title)
		}
	}
}

func TestSchedulerConcurrentStartsOrderSnapshotsByEpoch(t *testing.T) {
	store := entry.NewStore()
	sched := enrich.NewScheduler(store, newScriptedFetcher(nil), enrich.Options{Chain: resolver.Chain{DisableLookup: true}})

	const starts = 32
	runs := make(chan *enrich.Run, starts)
	var wg sync.WaitGroup
	for i := 0; i < starts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append(fmt.Sprintf("site %d", i), fmt.Sprintf("site%d.example", i))
			runs <- sched.Start(context.Background())
		}(i)
	}
	wg.Wait()
	close(runs)

	totals := make([]int, starts+1)
	for run := range runs {
		totals[run.Epoch()] = run.Total()
		run.Wait()
	}
	for epoch := 2; epoch <= starts; epoch++ {
		if totals[epoch] < totals[epoch-1] {
			t.Fatalf("epoch %d snapshot has %d entries, older epoch %d has %d", epoch, totals[epoch], epoch-1, totals[epoch-1])
		}
	}
	if totals[starts] != starts {
		t.Fatalf("latest epoch total = %d, want %d", totals[starts], starts)
	}
}

func TestSchedulerBoundsInFlight(t *testing.T) {
	store := entry.NewStore()
	for _, host := range []string{"a", "b", "c", "d", "e", "f"} {
		store.Append(host, host+".example")
	}
	fetcher := newGatedFetcher()
	sched := enrich.NewScheduler(store, fetcher, enrich.Options{
		Chain:       resolver.Chain{DisableLookup: true},
		MaxInFlight: 2,
	})
	run := sched.Start(context.Background())

	deadline := time.Now().Add(5 * time.Second)
	for fetcher.inFlight.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(fetcher.release)
	assertProgress(t, collect(t, run), 1, 6)

	if got := fetcher.maxSeen.Load(); got > 2 {
		t.Fatalf("max in flight = %d, want <= 2", got)
	}
	if got := fetcher.calls.Load(); got != 12 {
		t.Fatalf("fetch calls = %d, want 12", got)
	}
}

func TestSchedulerCancellationFallsBackToPlaceholder(t *testing.T) {
	store := entry.NewStore()
	store.Append("slow", "slow.example")
	store.Append("slower", "slower.example")
	fetcher := newGatedFetcher()
	sched := enrich.NewScheduler(store, fetcher, enrich.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	run := sched.Start(ctx)
	cancel()

	assertProgress(t, collect(t, run), 1, 2)
	summary := run.Wait()
	if summary.Placeholders != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	for _, e := range store.Entries() {
		if !e.HasIcon() || !e.Icon.Placeholder {
			t.Fatalf("entry %q should carry placeholder, got %+v", e.Title, e.Icon)
		}
	}
}

func TestRunWithoutReaderDoesNotBlock(t *testing.T) {
	store := entry.NewStore()
	for i := 0; i < 20; i++ {
		store.Append("e", "example.com")
	}
	sched := enrich.NewScheduler(store, newScriptedFetcher(nil), enrich.Options{})
	run := sched.Start(context.Background())

	select {
	case <-run.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("run blocked without an event reader")
	}
	if summary := run.Wait(); summary.Placeholders != 20 {
		t.Fatalf("summary = %+v", summary)
	}
}
