package system

import (
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
)

// Transition asks the scene layer to switch stages
type Transition struct {
	TargetStage string
	X, Y        int
}

// DetectTransition reports a warp when the player finished a step onto a
// warp tile this tick.
func DetectTransition(w *ecs.World, stage *entity.Stage, arrived []ecs.EntityID) (Transition, bool) {
	if stage == nil {
		return Transition{}, false
	}
	for _, id := range arrived {
		if id != w.PlayerID {
			continue
		}
		row, ok := w.Row(id)
		if !ok {
			return Transition{}, false
		}
		p := w.Position[row]
		warp, ok := stage.WarpAt(p.X, p.Y)
		if !ok {
			return Transition{}, false
		}
		return Transition{TargetStage: warp.TargetStage, X: warp.TargetX, Y: warp.TargetY}, true
	}
	return Transition{}, false
}
