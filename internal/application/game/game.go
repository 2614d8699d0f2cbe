// Package game provides the main game loop manager that handles Scene transitions.
package game

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/gridsync/internal/application/scene"
)

// DefaultDT is one tick at ebiten's default 60 TPS
const DefaultDT = time.Second / 60

// Game implements ebiten.Game and manages Scene transitions.
type Game struct {
	current scene.Scene
	screenW int
	screenH int
	dt      time.Duration
}

// New creates a new Game with the given initial scene.
// The initial scene's OnEnter is called immediately.
func New(initialScene scene.Scene, screenW, screenH int) *Game {
	g := &Game{
		current: initialScene,
		screenW: screenW,
		screenH: screenH,
		dt:      DefaultDT,
	}
	g.current.OnEnter()
	return g
}

// Update updates the current scene and handles scene transitions.
// Implements ebiten.Game interface.
func (g *Game) Update() error {
	next, err := g.current.Update(g.dt)
	if err != nil {
		return err
	}

	// Handle scene transition
	if next != nil {
		g.current.OnExit()
		g.current = next
		g.current.OnEnter()
	}

	return nil
}

// Draw renders the current scene.
// Implements ebiten.Game interface.
func (g *Game) Draw(screen *ebiten.Image) {
	g.current.Draw(screen)
}

// Layout returns the game's logical screen dimensions.
// Implements ebiten.Game interface.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// SetTPS sets ebiten's tick rate and the matching tick length
func (g *Game) SetTPS(tps int) {
	if tps <= 0 {
		return
	}
	ebiten.SetTPS(tps)
	g.dt = time.Second / time.Duration(tps)
}

// SetDT sets the tick length passed to scenes.
// Useful for testing or custom frame rates.
func (g *Game) SetDT(dt time.Duration) {
	g.dt = dt
}

// Close runs the current scene's OnExit. Call it once the ebiten loop
// has returned.
func (g *Game) Close() {
	g.current.OnExit()
}
