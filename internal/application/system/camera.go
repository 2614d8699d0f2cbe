package system

import (
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
)

// Camera exposes the top-left pixel of the view following the player
type Camera struct {
	X, Y          int
	Width, Height int
}

// NewCamera creates a camera for the given screen size
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{Width: screenW, Height: screenH}
}

// Follow centers the view on the entity's rounded pixel position, clamped
// so the view never leaves the stage. Stages smaller than the screen are
// centered.
func (c *Camera) Follow(w *ecs.World, id ecs.EntityID, stage *entity.Stage) {
	row, ok := w.Row(id)
	if !ok || stage == nil {
		return
	}
	p := w.Position[row]
	half := stage.TileSize / 2

	c.X = clampView(p.DrawX()+half-c.Width/2, stage.PixelWidth(), c.Width)
	c.Y = clampView(p.DrawY()+half-c.Height/2, stage.PixelHeight(), c.Height)
}

func clampView(v, world, view int) int {
	if world <= view {
		return -(view - world) / 2
	}
	if v < 0 {
		return 0
	}
	if v > world-view {
		return world - view
	}
	return v
}
