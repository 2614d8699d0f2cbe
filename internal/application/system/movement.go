package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/younwookim/gridsync/internal/domain/animation"
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
)

// arrivalSlack absorbs the few nanoseconds lost when a tick length comes
// from integer division, such as time.Second/60.
const arrivalSlack = time.Microsecond

// MovementSystem runs the grid movement state machine.
//
// Per entity and tick:
//   - Moving: advance interpolation; on arrival snap to the target and fall
//     through to the NotMoving rules in the same tick.
//   - NotMoving: a request in a new direction turns in place; a request in
//     the facing direction starts a step if the tile is passable.
//   - TurnDirection: wait for the turn clip's IsComplete as written by the
//     sprite system on the previous tick, then step or stand.
//
// Locked blocks turning and starting steps only.
type MovementSystem struct {
	oracle  Passability
	logger  *zap.Logger
	arrived []ecs.EntityID
}

// NewMovementSystem creates a new movement system
func NewMovementSystem(oracle Passability, logger *zap.Logger) *MovementSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovementSystem{
		oracle:  oracle,
		logger:  logger,
		arrived: make([]ecs.EntityID, 0, 16),
	}
}

// SetPassability swaps the passability oracle (on stage change)
func (s *MovementSystem) SetPassability(oracle Passability) {
	s.oracle = oracle
}

// Arrived lists entities that finished a step during the last Update.
// The slice is reused by the next Update.
func (s *MovementSystem) Arrived() []ecs.EntityID {
	return s.arrived
}

// Update advances every movable entity by dt
func (s *MovementSystem) Update(w *ecs.World, dt time.Duration) {
	s.arrived = s.arrived[:0]

	for i := range w.IDs {
		if w.Movement[i].State == ecs.Moving {
			if !s.interpolate(w, i, dt) {
				continue
			}
			s.arrived = append(s.arrived, w.IDs[i])
			dropStale(w, i)
		}
		s.evaluate(w, i)
	}
}

// dropStale replaces a request written before the step started with the
// input held now, so a released or changed direction is not chained.
func dropStale(w *ecs.World, i int) {
	if !w.HasRequest[i] {
		return
	}
	req := &w.Request[i]
	if req.Active && req.Direction != req.Held {
		req.Direction = req.Held
		req.Active = req.Held != entity.DirNone
	}
}

// interpolate moves the entity along its step and reports arrival
func (s *MovementSystem) interpolate(w *ecs.World, i int, dt time.Duration) bool {
	m := &w.Movement[i]
	pos := &w.Position[i]

	m.Elapsed += dt
	if m.StepTime-m.Elapsed < arrivalSlack {
		pos.PixelX = m.TargetX
		pos.PixelY = m.TargetY
		pos.X = entity.FloorDiv(int(m.TargetX), w.TileSize)
		pos.Y = entity.FloorDiv(int(m.TargetY), w.TileSize)
		m.Progress = 0
		m.Elapsed = 0
		m.IsMoving = false
		m.State = ecs.NotMoving
		return true
	}

	m.Progress = float64(m.Elapsed) / float64(m.StepTime)
	t := m.Progress
	if t < 0 {
		t = 0
	}
	pos.PixelX = m.StartX + (m.TargetX-m.StartX)*t
	pos.PixelY = m.StartY + (m.TargetY-m.StartY)*t
	return false
}

// evaluate applies the NotMoving and TurnDirection rules
func (s *MovementSystem) evaluate(w *ecs.World, i int) {
	if !w.HasRequest[i] {
		return
	}
	m := &w.Movement[i]
	req := &w.Request[i]

	switch m.State {
	case ecs.TurnDirection:
		if !w.Sprite[i].IsComplete {
			return
		}
		if m.Locked || !req.Active || req.Direction != m.Facing {
			m.State = ecs.NotMoving
			return
		}
		if !s.startStep(w, i, m.Facing) {
			m.State = ecs.NotMoving
		}

	case ecs.NotMoving:
		if m.Locked || !req.Active || req.Direction == entity.DirNone {
			return
		}
		if req.Direction != m.Facing {
			m.Facing = req.Direction
			m.State = ecs.TurnDirection
			return
		}
		s.startStep(w, i, req.Direction)
	}
}

// startStep begins a step if the destination is passable. A blocked step
// leaves the request active so it is retried while input is held.
func (s *MovementSystem) startStep(w *ecs.World, i int, dir entity.Direction) bool {
	m := &w.Movement[i]
	pos := &w.Position[i]

	if m.Speed <= 0 || s.oracle == nil {
		return false
	}
	if !s.oracle.CanMove(w, w.IDs[i], pos.X, pos.Y, dir) {
		return false
	}

	dx, dy := dir.Delta()
	m.Facing = dir
	m.MovementDirection = dir
	m.StartX = pos.PixelX
	m.StartY = pos.PixelY
	m.TargetX = float64((pos.X + dx) * w.TileSize)
	m.TargetY = float64((pos.Y + dy) * w.TileSize)
	m.Progress = 0
	m.Elapsed = 0
	m.StepTime = animation.Seconds(1 / m.Speed)
	m.IsMoving = true
	m.State = ecs.Moving

	// consumed; the request system rewrites it next tick while input is held
	w.Request[i].Active = false
	return true
}

// SetLocked sets the movement lock of an entity
func SetLocked(w *ecs.World, id ecs.EntityID, locked bool) {
	if row, ok := w.Row(id); ok {
		w.Movement[row].Locked = locked
	}
}

// Teleport places an entity on a tile, cancelling any step in flight.
// Used for stage transitions and resume snapshots only.
func Teleport(w *ecs.World, id ecs.EntityID, tx, ty int, facing entity.Direction) {
	row, ok := w.Row(id)
	if !ok {
		return
	}
	pos := &w.Position[row]
	pos.X, pos.Y = tx, ty
	pos.PixelX = float64(tx * w.TileSize)
	pos.PixelY = float64(ty * w.TileSize)

	m := &w.Movement[row]
	m.IsMoving = false
	m.Progress = 0
	m.Elapsed = 0
	m.State = ecs.NotMoving
	if facing != entity.DirNone {
		m.Facing = facing
	}
	w.Request[row].Active = false
}
