package entry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"urldeck/internal/icon"
)

type record struct {
	id    ID
	title string
	url   string
	icon  *icon.Icon
}

// Store is the mutex-guarded ordered list of entries.
type Store struct {
	mu      sync.Mutex
	records []*record
	index   map[ID]int
	current ID
	newID   func() ID
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		index: make(map[ID]int),
		newID: func() ID { return ID(uuid.NewString()) },
	}
}

// Append adds an entry at the end and makes it current.
func (s *Store) Append(title, url string) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocateID()
	s.records = append(s.records, &record{id: id, title: title, url: url})
	s.index[id] = len(s.records) - 1
	s.current = id
	return id
}

// Replace clears the store and loads pairs in order. Nothing is current
// afterwards. The new identities are returned in position order.
func (s *Store) Replace(pairs []Pair) []ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]*record, 0, len(pairs))
	s.index = make(map[ID]int, len(pairs))
	s.current = ""
	ids := make([]ID, 0, len(pairs))
	for _, pair := range pairs {
		id := s.allocateID()
		s.records = append(s.records, &record{id: id, title: pair.Title, url: pair.URL})
		s.index[id] = len(s.records) - 1
		ids = append(ids, id)
	}
	return ids
}

// Move swaps the entry with its neighbour. It returns false when the entry is
// unknown or already at the boundary in that direction.
func (s *Store) Move(id ID, dir Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return false
	}
	var other int
	switch dir {
	case Up:
		other = pos - 1
	case Down:
		other = pos + 1
	default:
		return false
	}
	if other < 0 || other >= len(s.records) {
		return false
	}
	s.records[pos], s.records[other] = s.records[other], s.records[pos]
	s.index[s.records[pos].id] = pos
	s.index[s.records[other].id] = other
	return true
}

// Delete removes the entry. If it was current, the entry that slides into its
// position becomes current, or the new last entry when it was last.
func (s *Store) Delete(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return false
	}
	copy(s.records[pos:], s.records[pos+1:])
	s.records[len(s.records)-1] = nil
	s.records = s.records[:len(s.records)-1]
	delete(s.index, id)
	s.reindexFrom(pos)

	if s.current != id {
		return true
	}
	switch {
	case len(s.records) == 0:
		s.current = ""
	case pos < len(s.records):
		s.current = s.records[pos].id
	default:
		s.current = s.records[len(s.records)-1].id
	}
	return true
}

// SetIcon applies an icon by identity. It is a no-op returning false when the
// entry has been deleted.
func (s *Store) SetIcon(id ID, ic icon.Icon) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return false
	}
	stored := ic
	stored.Data = append([]byte(nil), ic.Data...)
	s.records[pos].icon = &stored
	return true
}

// Snapshot returns the identities and URLs in position order as of a single
// instant.
func (s *Store) Snapshot() []Target {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make([]Target, len(s.records))
	for i, rec := range s.records {
		targets[i] = Target{ID: rec.id, URL: rec.url}
	}
	return targets
}

// Entries returns copies of every entry with positions 1..N.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, len(s.records))
	for i, rec := range s.records {
		entries[i] = rec.entry(i)
	}
	return entries
}

// Pairs returns the title and URL of every entry in position order.
func (s *Store) Pairs() []Pair {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := make([]Pair, len(s.records))
	for i, rec := range s.records {
		pairs[i] = Pair{Title: rec.title, URL: rec.url}
	}
	return pairs
}

// Get returns a copy of the entry with the given identity.
func (s *Store) Get(id ID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return Entry{}, false
	}
	return s.records[pos].entry(pos), true
}

// At returns the entry at a 1-based position.
func (s *Store) At(position int) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 1 || position > len(s.records) {
		return Entry{}, fmt.Errorf("%w: %d (list has %d entries)", ErrPositionOutOfRange, position, len(s.records))
	}
	return s.records[position-1].entry(position - 1), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Current returns the current entry, if any.
func (s *Store) Current() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return Entry{}, false
	}
	pos, ok := s.index[s.current]
	if !ok {
		return Entry{}, false
	}
	return s.records[pos].entry(pos), true
}

// Select makes the entry current. Unknown identities leave the selection
// untouched and return false.
func (s *Store) Select(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return false
	}
	s.current = id
	return true
}

// allocateID must be called with s.mu held.
func (s *Store) allocateID() ID {
	for {
		id := s.newID()
		if _, taken := s.index[id]; !taken && id != "" {
			return id
		}
	}
}

func (s *Store) reindexFrom(pos int) {
	for i := pos; i < len(s.records); i++ {
		s.index[s.records[i].id] = i
	}
}

func (r *record) entry(pos int) Entry {
	e := Entry{ID: r.id, Title: r.title, URL: r.url, Position: pos + 1}
	if r.icon != nil {
		copied := *r.icon
		copied.Data = append([]byte(nil), r.icon.Data...)
		e.Icon = &copied
	}
	return e
}
