package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"urldeck/internal/entry"
	"urldeck/internal/icon"
	"urldeck/internal/logging"
	"urldeck/internal/resolver"
)

// Fetcher performs one icon fetch attempt. Any error is a failed attempt.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (icon.Icon, error)
}

// State is a coordinator state.
type State int

const (
	StatePending State = iota
	StateTrying
	StateResolved
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateTrying:
		return "trying"
	case StateResolved:
		return "resolved"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome tells whether an entry got a fetched icon or the placeholder.
type Outcome int

const (
	OutcomeIcon Outcome = iota
	OutcomePlaceholder
)

func (o Outcome) String() string {
	if o == OutcomePlaceholder {
		return "placeholder"
	}
	return "icon"
}

// Result is the final state of one coordinator.
type Result struct {
	EntryID entry.ID
	State   State
	Outcome Outcome
	Icon    icon.Icon
	// Candidate is the source that succeeded. Zero for placeholders.
	Candidate resolver.Candidate
	Attempts  int
}

// Coordinator drives the fallback state machine for single entries. It is
// safe for concurrent use.
type Coordinator struct {
	fetcher         Fetcher
	placeholderSize int
	logger          *slog.Logger
}

// NewCoordinator creates a Coordinator. placeholderSize below one uses the
// default placeholder size.
func NewCoordinator(fetcher Fetcher, placeholderSize int, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		fetcher:         fetcher,
		placeholderSize: placeholderSize,
		logger:          logging.NewComponentLogger(logger, "coordinator"),
	}
}

// Resolve tries candidates in order until one succeeds. When all fail, or ctx
// ends first, the entry resolves to the placeholder.
func (c *Coordinator) Resolve(ctx context.Context, id entry.ID, candidates []resolver.Candidate) Result {
	logger := logging.WithContext(logging.WithEntryID(ctx, string(id)), c.logger)
	result := Result{EntryID: id, State: StatePending}

	for i, candidate := range candidates {
		if ctx.Err() != nil {
			logger.Debug("resolution cancelled", logging.Int(logging.FieldAttempt, i), logging.Error(ctx.Err()))
			break
		}
		result.State = StateTrying
		result.Attempts = i + 1

		ic, err := c.fetcher.Fetch(ctx, candidate.URL)
		if err != nil {
			logger.Debug("candidate failed",
				logging.Int(logging.FieldAttempt, i),
				logging.String(logging.FieldCandidate, candidate.URL),
				logging.Error(err),
			)
			continue
		}
		result.State = StateResolved
		result.Outcome = OutcomeIcon
		result.Icon = ic
		result.Candidate = candidate
		logger.Debug("candidate resolved",
			logging.Int(logging.FieldAttempt, i),
			logging.String(logging.FieldCandidate, candidate.URL),
			logging.String("kind", string(candidate.Kind)),
		)
		return result
	}

	result.State = StateExhausted
	result.Outcome = OutcomePlaceholder
	result.Icon = icon.Placeholder(c.placeholderSize)
	logger.Debug("candidates exhausted", logging.Int("attempts", result.Attempts))
	return result
}
