package entry

import (
	"errors"
	"fmt"

	"urldeck/internal/icon"
)

// ErrPositionOutOfRange reports a 1-based position outside the current list.
var ErrPositionOutOfRange = errors.New("position out of range")

// ID is the stable identity of an entry.
type ID string

// Direction selects the neighbour a Move swaps with.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection maps "up" or "down" to a Direction.
func ParseDirection(value string) (Direction, error) {
	switch value {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return 0, fmt.Errorf("invalid direction %q (want up or down)", value)
	}
}

// Entry is a copy of one list record. Position is only valid until the next
// mutation of the store it came from.
type Entry struct {
	ID       ID
	Title    string
	URL      string
	Icon     *icon.Icon
	Position int
}

// HasIcon reports whether a fetched or placeholder icon has been applied.
func (e Entry) HasIcon() bool {
	return e.Icon != nil && len(e.Icon.Data) > 0
}

// Pair is the text form of an entry consumed and produced by list files.
type Pair struct {
	Title string
	URL   string
}

// Target is the dispatch view of an entry used by the enrichment scheduler.
type Target struct {
	ID  ID
	URL string
}
