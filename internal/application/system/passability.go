package system

import (
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
)

// Passability decides whether an entity may step from a tile in a direction
type Passability interface {
	CanMove(w *ecs.World, id ecs.EntityID, fromX, fromY int, dir entity.Direction) bool
}

// PassabilityFunc adapts a function to Passability
type PassabilityFunc func(w *ecs.World, id ecs.EntityID, fromX, fromY int, dir entity.Direction) bool

// CanMove implements Passability
func (f PassabilityFunc) CanMove(w *ecs.World, id ecs.EntityID, fromX, fromY int, dir entity.Direction) bool {
	return f(w, id, fromX, fromY, dir)
}

// StagePassability denies solid or out-of-bounds tiles and tiles another
// entity stands on or is stepping into.
type StagePassability struct {
	Stage *entity.Stage
}

// NewStagePassability creates the default oracle for a stage
func NewStagePassability(stage *entity.Stage) *StagePassability {
	return &StagePassability{Stage: stage}
}

// CanMove implements Passability
func (p *StagePassability) CanMove(w *ecs.World, id ecs.EntityID, fromX, fromY int, dir entity.Direction) bool {
	if p.Stage == nil {
		return false
	}
	dx, dy := dir.Delta()
	if dx == 0 && dy == 0 {
		return false
	}
	tx, ty := fromX+dx, fromY+dy
	if !p.Stage.IsWalkable(tx, ty) {
		return false
	}
	_, occupied := w.OccupiedBy(tx, ty, id)
	return !occupied
}
