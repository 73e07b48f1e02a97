package collision

import (
	"fmt"
	"slices"

	"github.com/arloliu/curvefit/errs"
	"github.com/arloliu/curvefit/internal/hash"
)

// Tracker records the argument names of a model signature in declaration order and
// rejects empty or repeated names. Names are bucketed by their xxHash64 ID; two
// distinct names sharing an ID are accepted but flagged, so callers that key lookups
// by ID know to fall back to name comparison.
type Tracker struct {
	byID         map[uint64][]string
	names        []string
	hasCollision bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byID:  make(map[uint64][]string),
		names: make([]string, 0),
	}
}

// Track records name.
func (t *Tracker) Track(name string) error {
	return t.TrackWithID(name, hash.ID(name))
}

// TrackWithID records name under an explicit ID.
//
// Returns ErrInvalidModel when the name is empty or was already tracked.
func (t *Tracker) TrackWithID(name string, id uint64) error {
	if name == "" {
		return fmt.Errorf("%w: empty argument name at position %d", errs.ErrInvalidModel, len(t.names))
	}

	bucket := t.byID[id]
	if slices.Contains(bucket, name) {
		return fmt.Errorf("%w: duplicate argument name %q", errs.ErrInvalidModel, name)
	}
	if len(bucket) > 0 {
		t.hasCollision = true
	}

	t.byID[id] = append(bucket, name)
	t.names = append(t.names, name)

	return nil
}

// HasCollision reports whether two distinct names shared an ID.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the tracked names in the order they were added.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Reset clears all tracked names and the collision flag.
func (t *Tracker) Reset() {
	clear(t.byID)
	t.names = t.names[:0]
	t.hasCollision = false
}
