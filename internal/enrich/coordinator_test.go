package enrich_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"urldeck/internal/enrich"
	"urldeck/internal/icon"
	"urldeck/internal/logging"
	"urldeck/internal/resolver"
)

var errUnavailable = errors.New("unavailable")

// scriptedFetcher succeeds for targets present in icons and fails otherwise.
type scriptedFetcher struct {
	mu    sync.Mutex
	icons map[string]icon.Icon
	calls []string
}

func newScriptedFetcher(icons map[string]icon.Icon) *scriptedFetcher {
	return &scriptedFetcher{icons: icons}
}

func (f *scriptedFetcher) Fetch(_ context.Context, target string) (icon.Icon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, target)
	if ic, ok := f.icons[target]; ok {
		return ic, nil
	}
	return icon.Icon{}, errUnavailable
}

func (f *scriptedFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func fakeIcon(format string) icon.Icon {
	return icon.Icon{Data: []byte("icon-" + format), Format: format, Width: 16, Height: 16}
}

func TestCoordinatorStopsAtFirstSuccess(t *testing.T) {
	candidates := resolver.Chain{}.Candidates("https://go.dev")
	fetcher := newScriptedFetcher(map[string]icon.Icon{
		candidates[1].URL: fakeIcon("png"),
		candidates[2].URL: fakeIcon("gif"),
	})
	coord := enrich.NewCoordinator(fetcher, 0, logging.NewNop())

	result := coord.Resolve(context.Background(), "id-1", candidates)
	if result.State != enrich.StateResolved || result.Outcome != enrich.OutcomeIcon {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Candidate.Kind != resolver.KindFaviconPNG || result.Attempts != 2 {
		t.Fatalf("resolved via %+v after %d attempts", result.Candidate, result.Attempts)
	}
	calls := fetcher.Calls()
	if len(calls) != 2 || calls[0] != candidates[0].URL || calls[1] != candidates[1].URL {
		t.Fatalf("calls = %v", calls)
	}
}

func TestCoordinatorFallsBackToPlaceholder(t *testing.T) {
	candidates := resolver.Chain{}.Candidates("example.com")
	fetcher := newScriptedFetcher(nil)
	coord := enrich.NewCoordinator(fetcher, 24, nil)

	result := coord.Resolve(context.Background(), "id-2", candidates)
	if result.State != enrich.StateExhausted || result.Outcome != enrich.OutcomePlaceholder {
		t.Fatalf("unexpected result %+v", result)
	}
	if !result.Icon.Placeholder || result.Icon.Width != 24 || len(result.Icon.Data) == 0 {
		t.Fatalf("unexpected placeholder %+v", result.Icon)
	}
	if result.Attempts != 3 || len(fetcher.Calls()) != 3 {
		t.Fatalf("attempts = %d, calls = %v", result.Attempts, fetcher.Calls())
	}
}

func TestCoordinatorWithoutCandidates(t *testing.T) {
	fetcher := newScriptedFetcher(nil)
	result := enrich.NewCoordinator(fetcher, 0, nil).Resolve(context.Background(), "id-3", nil)
	if result.State != enrich.StateExhausted || !result.Icon.Placeholder {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(fetcher.Calls()) != 0 {
		t.Fatalf("no fetches expected, got %v", fetcher.Calls())
	}
}

func TestCoordinatorCancelledContext(t *testing.T) {
	candidates := resolver.Chain{}.Candidates("https://go.dev")
	fetcher := newScriptedFetcher(map[string]icon.Icon{candidates[0].URL: fakeIcon("ico")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := enrich.NewCoordinator(fetcher, 0, nil).Resolve(ctx, "id-4", candidates)
	if result.State != enrich.StateExhausted || !result.Icon.Placeholder {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(fetcher.Calls()) != 0 {
		t.Fatalf("no fetches expected after cancel, got %v", fetcher.Calls())
	}
}
