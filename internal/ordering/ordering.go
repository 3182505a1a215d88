// Package ordering maintains the dense zero-based position keys used by
// sibling collections (boards, favourites, sections, tasks). Reads return
// entities sorted by descending position, so clients submit reorder lists
// from most-recently-displayed to least; Assign reverses that list and uses
// the resulting index as the new position.
package ordering

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUnknownID is returned when a reorder list references an id outside the scope
	ErrUnknownID = errors.New("reorder list references an id outside the scope")

	// ErrIncompleteScope is returned when a reorder list omits or repeats scope members
	ErrIncompleteScope = errors.New("reorder list must contain every member of the scope exactly once")
)

// Assignment pairs an entity id with its newly computed position.
type Assignment struct {
	ID       uuid.UUID
	Position int
}

// Assign validates orderedDesc against the current members of a sibling
// scope and computes new positions. orderedDesc must hold every id in
// current exactly once, listed in the caller's desired descending display
// order. The first entry receives position len-1 and the last receives 0,
// so a read sorted by descending position reproduces the supplied order.
// Nothing is written here; errors abort before the caller touches the store.
func Assign(current []uuid.UUID, orderedDesc []uuid.UUID) ([]Assignment, error) {
	scope := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		scope[id] = true
	}

	seen := make(map[uuid.UUID]bool, len(orderedDesc))
	for _, id := range orderedDesc {
		if !scope[id] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
		}
		if seen[id] {
			return nil, ErrIncompleteScope
		}
		seen[id] = true
	}
	if len(orderedDesc) != len(current) {
		return nil, ErrIncompleteScope
	}

	n := len(orderedDesc)
	assignments := make([]Assignment, n)
	for i, id := range orderedDesc {
		assignments[i] = Assignment{ID: id, Position: n - 1 - i}
	}
	return assignments, nil
}

// Compact recomputes dense positions for the survivors of a scope after a
// removal. survivors must already be sorted by their current position
// ascending; each keeps its relative rank and receives position = index.
func Compact(survivors []uuid.UUID) []Assignment {
	assignments := make([]Assignment, len(survivors))
	for i, id := range survivors {
		assignments[i] = Assignment{ID: id, Position: i}
	}
	return assignments
}

// Locks serializes reorders and cascade renumbering per sibling scope.
// Two concurrent reorders on the same scope would otherwise interleave
// their per-row position writes and break contiguity.
type Locks struct {
	mu sync.Map // scope key -> *sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{}
}

func (l *Locks) Lock(scope string) func() {
	v, _ := l.mu.LoadOrStore(scope, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// LockBoth acquires two scope locks in lexicographic key order, so callers
// locking the same pair from opposite directions cannot deadlock on each
// other. Equal keys are locked once.
func (l *Locks) LockBoth(a, b string) func() {
	if a == b {
		return l.Lock(a)
	}
	if b < a {
		a, b = b, a
	}
	unlockFirst := l.Lock(a)
	unlockSecond := l.Lock(b)
	return func() {
		unlockSecond()
		unlockFirst()
	}
}

// Scope keys for the four ordered sibling collections.

func BoardScope() string {
	return "boards"
}

func FavouriteScope(ownerID uuid.UUID) string {
	return "favourites/" + ownerID.String()
}

func SectionScope(boardID uuid.UUID) string {
	return "sections/" + boardID.String()
}

func TaskScope(sectionID uuid.UUID) string {
	return "tasks/" + sectionID.String()
}
