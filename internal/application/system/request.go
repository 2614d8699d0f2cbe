package system

import (
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
)

// RequestSystem writes resolved input into pooled movement request slots
type RequestSystem struct{}

// NewRequestSystem creates a new request system
func NewRequestSystem() *RequestSystem {
	return &RequestSystem{}
}

// Update applies the player's input direction to the player's slot
func (s *RequestSystem) Update(w *ecs.World, dir entity.Direction) {
	row, ok := w.Row(w.PlayerID)
	if !ok {
		return
	}
	s.Apply(w, row, dir)
}

// Apply writes dir into the request slot of one row.
//
// The slot is overwritten only when no request is active, or when the
// direction changed and the entity is between tiles. Releasing input
// (DirNone) deactivates the slot. The raw input is always kept in Held so
// the movement system can drop a stale request on arrival. Rows without a
// slot are skipped.
func (s *RequestSystem) Apply(w *ecs.World, row int, dir entity.Direction) {
	if !w.HasRequest[row] {
		return
	}
	req := &w.Request[row]
	req.Held = dir

	if dir == entity.DirNone {
		req.Active = false
		return
	}
	if !req.Active || (req.Direction != dir && !w.Movement[row].IsMoving) {
		req.Direction = dir
		req.Active = true
	}
}
