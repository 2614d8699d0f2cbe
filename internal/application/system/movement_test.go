package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
	"github.com/younwookim/gridsync/internal/infrastructure/config"
	"github.com/younwookim/gridsync/internal/infrastructure/manifest"
)

// At 4 tiles/s a step lasts 250ms, so every 62.5ms tick adds exactly 0.25.
const testDT = 62500 * time.Microsecond

const testTileSize = 16

// createTestSpriteManifest builds a sprite with every canonical clip.
// Walk frames last 0.5s, the turn clip lasts two test ticks.
func createTestSpriteManifest(id string) config.SpriteManifest {
	m := config.SpriteManifest{
		ID:   id,
		Unit: config.UnitSeconds,
		Frames: []config.FrameRectConfig{
			{X: 0, Y: 0, W: 16, H: 32},
			{X: 16, Y: 0, W: 16, H: 32},
			{X: 32, Y: 0, W: 16, H: 32},
		},
	}
	for _, d := range entity.AllDirections {
		m.Animations = append(m.Animations,
			config.AnimationManifest{
				Name: "face_" + d.String(), Loop: true,
				FrameIndices: []int{0}, FrameDurations: []float64{0.5},
			},
			config.AnimationManifest{
				Name: "go_" + d.String(), Loop: true,
				FrameIndices: []int{1, 0, 2}, FrameDurations: []float64{0.5, 0.5, 0.5},
				Events: map[int]string{0: "footstep", 2: "footstep"},
			},
			config.AnimationManifest{
				Name:         "go_fast_" + d.String(),
				FrameIndices: []int{1, 0}, FrameDurations: []float64{0.0625, 0.0625},
			},
		)
	}
	return m
}

func createTestLibrary(t *testing.T) *manifest.Library {
	t.Helper()
	lib, err := manifest.NewLibrary(
		[]config.SpriteManifest{createTestSpriteManifest("hero"), createTestSpriteManifest("npc")},
		[]config.TilesetManifest{{
			ID:   "water",
			Unit: config.UnitMilliseconds,
			Tiles: []config.TileAnimationDef{{
				LocalTileID: 0,
				Animation: []config.TileFrameConfig{
					{TileID: 0, Duration: 150},
					{TileID: 1, Duration: 100},
					{TileID: 2, Duration: 250},
				},
			}},
		}},
	)
	require.NoError(t, err)
	return lib
}

// createTestStage builds a stage from rows where '#' is a wall
func createTestStage(rows ...string) *entity.Stage {
	tiles := make([][]entity.Tile, len(rows))
	for y, row := range rows {
		tiles[y] = make([]entity.Tile, len(row))
		for x, c := range row {
			if c == '#' {
				tiles[y][x] = entity.Tile{Type: entity.TileWall, Solid: true}
			}
		}
	}
	return &entity.Stage{
		ID:       "test",
		Width:    len(rows[0]),
		Height:   len(rows),
		TileSize: testTileSize,
		Tiles:    tiles,
	}
}

func createOpenStage() *entity.Stage {
	return createTestStage(
		"##########",
		"#........#",
		"#........#",
		"#........#",
		"#........#",
		"#........#",
		"#........#",
		"#........#",
		"#........#",
		"##########",
	)
}

type movementHarness struct {
	w        *ecs.World
	stage    *entity.Stage
	player   ecs.EntityID
	requests *RequestSystem
	movement *MovementSystem
	sprites  *SpriteAnimationSystem
}

func createMovementHarness(t *testing.T, stage *entity.Stage, x, y int, facing entity.Direction) *movementHarness {
	t.Helper()
	w := ecs.NewWorld(8, testTileSize)
	id := w.CreatePlayer(ecs.SpawnConfig{TileX: x, TileY: y, Facing: facing, Speed: 4, SpriteID: "hero"})
	return &movementHarness{
		w:        w,
		stage:    stage,
		player:   id,
		requests: NewRequestSystem(),
		movement: NewMovementSystem(NewStagePassability(stage), zap.NewNop()),
		sprites:  NewSpriteAnimationSystem(createTestLibrary(t), zap.NewNop()),
	}
}

// tick runs request, movement and sprite animation in pipeline order
func (h *movementHarness) tick(t *testing.T, dir entity.Direction) {
	t.Helper()
	h.tickDT(t, dir, testDT)
}

func (h *movementHarness) tickDT(t *testing.T, dir entity.Direction, dt time.Duration) {
	t.Helper()
	h.requests.Update(h.w, dir)
	h.movement.Update(h.w, dt)
	require.NoError(t, h.sprites.Update(h.w, dt))
}

func (h *movementHarness) row() int {
	row, _ := h.w.Row(h.player)
	return row
}

func (h *movementHarness) move() *ecs.GridMovement { return &h.w.Movement[h.row()] }
func (h *movementHarness) pos() ecs.Position       { return h.w.Position[h.row()] }
func (h *movementHarness) anim() *ecs.SpriteAnimation {
	return &h.w.Sprite[h.row()]
}

func TestMovement_TurnThenMove(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirSouth)
	require.Equal(t, ecs.NotMoving, h.move().State)

	// tick 1: new direction turns in place
	h.tick(t, entity.DirEast)
	assert.Equal(t, ecs.TurnDirection, h.move().State)
	assert.Equal(t, entity.DirEast, h.move().Facing)
	assert.Equal(t, entity.DirSouth, h.move().MovementDirection, "turning never changes MovementDirection")
	assert.Equal(t, "go_fast_east", h.anim().Name)
	assert.True(t, h.anim().PlayOnce)
	assert.False(t, h.anim().IsComplete)

	// tick 2: the turn clip completes, movement has not seen it yet
	h.tick(t, entity.DirEast)
	assert.True(t, h.anim().IsComplete)
	assert.Equal(t, ecs.TurnDirection, h.move().State, "completion is observed one tick later")

	// tick 3: still held, so the step starts
	h.tick(t, entity.DirEast)
	assert.Equal(t, ecs.Moving, h.move().State)
	assert.Equal(t, entity.DirEast, h.move().MovementDirection)
	assert.True(t, h.move().IsMoving)
	assert.Equal(t, "go_east", h.anim().Name)
	assert.Equal(t, float64(4*testTileSize), h.move().StartX)
	assert.Equal(t, float64(5*testTileSize), h.move().TargetX)
}

func TestMovement_TurnThenRelease(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirSouth)

	h.tick(t, entity.DirWest)
	require.Equal(t, ecs.TurnDirection, h.move().State)

	for i := 0; i < 3; i++ {
		h.tick(t, entity.DirNone)
	}
	assert.Equal(t, ecs.NotMoving, h.move().State)
	assert.Equal(t, entity.DirWest, h.move().Facing)
	assert.Equal(t, 4, h.pos().X, "a tap only turns")
	assert.Equal(t, "face_west", h.anim().Name)
}

func TestMovement_TurnThenChange(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirSouth)

	h.tick(t, entity.DirWest)
	h.tick(t, entity.DirWest)
	require.True(t, h.anim().IsComplete)

	// the held direction changed before the turn was observed complete
	h.tick(t, entity.DirNorth)
	assert.Equal(t, ecs.NotMoving, h.move().State)
	assert.Equal(t, 4, h.pos().X)

	h.tick(t, entity.DirNorth)
	assert.Equal(t, ecs.TurnDirection, h.move().State)
	assert.Equal(t, entity.DirNorth, h.move().Facing)
}

func TestMovement_BackToBackTraversal(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 6, entity.DirNorth)

	// facing north already: the first tick starts the step
	h.tick(t, entity.DirNorth)
	require.Equal(t, ecs.Moving, h.move().State)

	for tile := 1; tile <= 2; tile++ {
		for i := 0; i < 4; i++ {
			h.tick(t, entity.DirNorth)
			assert.Equal(t, ecs.Moving, h.move().State, "no idle tick while held (tile %d, tick %d)", tile, i)
		}
		assert.Equal(t, 6-tile, h.pos().Y)
		assert.Equal(t, float64((6-tile)*testTileSize), h.pos().PixelY, "pixel snaps exactly to the target")
		assert.Equal(t, 0.0, h.move().Progress)
		assert.Contains(t, h.movement.Arrived(), h.player)
	}
}

func TestMovement_TraversalAtSixtyTPS(t *testing.T) {
	const dt = time.Second / 60

	tests := []struct {
		name  string
		speed float64
		want  int
	}{
		{name: "4 tiles per second", speed: 4, want: 15},
		{name: "2 tiles per second", speed: 2, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createMovementHarness(t, createOpenStage(), 4, 8, entity.DirNorth)
			h.move().Speed = tt.speed

			h.tickDT(t, entity.DirNorth, dt)
			require.Equal(t, ecs.Moving, h.move().State)

			for tile := 1; tile <= 2; tile++ {
				ticks := 0
				for h.pos().Y == 9-tile && ticks < 2*tt.want {
					h.tickDT(t, entity.DirNorth, dt)
					ticks++
				}
				assert.Equal(t, tt.want, ticks, "ticks per tile (tile %d)", tile)
				assert.Equal(t, float64((8-tile)*testTileSize), h.pos().PixelY)
				assert.Equal(t, ecs.Moving, h.move().State, "next step chains on the arrival tick")
			}
		})
	}
}

func TestMovement_DirectionChangeMidStep(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 6, entity.DirNorth)

	// tick 1 starts the step, tick 2 re-arms north while moving
	h.tick(t, entity.DirNorth)
	h.tick(t, entity.DirNorth)
	require.Equal(t, ecs.Moving, h.move().State)
	require.True(t, h.w.RequestSlot(h.player).Active)

	// east is refused while the step is in flight
	h.tick(t, entity.DirEast)
	h.tick(t, entity.DirEast)
	assert.Equal(t, entity.DirNorth, h.w.RequestSlot(h.player).Direction)
	assert.Equal(t, entity.DirEast, h.w.RequestSlot(h.player).Held)

	// arrival: north is no longer held, so it turns east instead of stepping north
	h.tick(t, entity.DirEast)
	assert.Equal(t, 5, h.pos().Y)
	assert.Equal(t, ecs.TurnDirection, h.move().State)
	assert.Equal(t, entity.DirEast, h.move().Facing)
	assert.Equal(t, entity.DirNorth, h.move().MovementDirection)
	assert.False(t, h.move().IsMoving)

	h.tick(t, entity.DirEast)
	h.tick(t, entity.DirEast)
	assert.Equal(t, ecs.Moving, h.move().State)
	assert.Equal(t, entity.DirEast, h.move().MovementDirection)
	assert.Equal(t, float64(5*testTileSize), h.move().TargetX)
	assert.Equal(t, float64(5*testTileSize), h.move().TargetY, "no second north step")
}

func TestMovement_ReleaseMidStepStopsOnArrival(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 6, entity.DirNorth)

	h.tick(t, entity.DirNorth)
	h.tick(t, entity.DirNorth)
	h.w.RequestSlot(h.player).Active = true
	h.w.RequestSlot(h.player).Held = entity.DirNone

	for i := 0; i < 3; i++ {
		h.movement.Update(h.w, testDT)
	}
	assert.Equal(t, 5, h.pos().Y)
	assert.Equal(t, ecs.NotMoving, h.move().State)
	assert.False(t, h.w.RequestSlot(h.player).Active, "a released direction is dropped on arrival")
}

func TestMovement_Interpolation(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirEast)

	h.tick(t, entity.DirEast)
	assert.Equal(t, 64.0, h.pos().PixelX, "start tick does not advance")

	h.tick(t, entity.DirNone)
	assert.Equal(t, 0.25, h.move().Progress)
	assert.Equal(t, 68.0, h.pos().PixelX)
	assert.Equal(t, 4, h.pos().X, "grid cell updates on arrival")

	h.tick(t, entity.DirNone)
	h.tick(t, entity.DirNone)
	assert.Equal(t, 76.0, h.pos().PixelX)

	// released mid-step: the step still completes, then stops
	h.tick(t, entity.DirNone)
	assert.Equal(t, 5, h.pos().X)
	assert.Equal(t, 80.0, h.pos().PixelX)
	assert.Equal(t, ecs.NotMoving, h.move().State)
	assert.False(t, h.move().IsMoving)
}

func TestMovement_BlockedKeepsRequest(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 1, 1, entity.DirNorth)

	h.tick(t, entity.DirNorth)
	assert.Equal(t, ecs.NotMoving, h.move().State)
	assert.Equal(t, 1, h.pos().Y)

	slot := h.w.RequestSlot(h.player)
	assert.True(t, slot.Active, "a blocked step does not consume the request")
	assert.Equal(t, entity.DirNorth, slot.Direction)
}

func TestMovement_BlockedTurnCommitsFacing(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 1, 1, entity.DirSouth)

	for i := 0; i < 4; i++ {
		h.tick(t, entity.DirWest)
	}
	assert.Equal(t, ecs.NotMoving, h.move().State)
	assert.Equal(t, entity.DirWest, h.move().Facing)
	assert.Equal(t, entity.DirSouth, h.move().MovementDirection)
	assert.Equal(t, 1, h.pos().X)
	assert.Equal(t, "face_west", h.anim().Name)
}

func TestMovement_Locked(t *testing.T) {
	t.Run("blocks turning and starting", func(t *testing.T) {
		h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirSouth)
		SetLocked(h.w, h.player, true)

		h.tick(t, entity.DirEast)
		assert.Equal(t, ecs.NotMoving, h.move().State)
		assert.Equal(t, entity.DirSouth, h.move().Facing)

		h.tick(t, entity.DirSouth)
		assert.Equal(t, ecs.NotMoving, h.move().State)
		assert.Equal(t, 4, h.pos().Y)
	})

	t.Run("in-flight step completes", func(t *testing.T) {
		h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirSouth)

		h.tick(t, entity.DirSouth)
		require.Equal(t, ecs.Moving, h.move().State)
		SetLocked(h.w, h.player, true)

		for i := 0; i < 4; i++ {
			h.tick(t, entity.DirSouth)
		}
		assert.Equal(t, 5, h.pos().Y)
		assert.Equal(t, ecs.NotMoving, h.move().State, "lock prevents the next step")
	})

	t.Run("lock during turn returns to standing", func(t *testing.T) {
		h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirSouth)

		h.tick(t, entity.DirEast)
		SetLocked(h.w, h.player, true)
		for i := 0; i < 3; i++ {
			h.tick(t, entity.DirEast)
		}
		assert.Equal(t, ecs.NotMoving, h.move().State)
		assert.Equal(t, 4, h.pos().X)
	})
}

func TestMovement_DirectionChangeAtTileBoundary(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirNorth)

	h.tick(t, entity.DirNorth)
	require.Equal(t, ecs.Moving, h.move().State)

	// switch to east right after the step started; the slot was consumed,
	// so east is written on the next tick
	for i := 0; i < 4; i++ {
		h.tick(t, entity.DirEast)
	}
	assert.Equal(t, 3, h.pos().Y)
	assert.Equal(t, ecs.TurnDirection, h.move().State, "a new direction after arrival turns in place")
	assert.Equal(t, entity.DirEast, h.move().Facing)
	assert.Equal(t, entity.DirNorth, h.move().MovementDirection)
}

func TestMovement_OccupiedTileBlocks(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirEast)
	h.w.CreateNPC(ecs.SpawnConfig{TileX: 5, TileY: 4, SpriteID: "npc"}, ecs.NPC{})

	h.tick(t, entity.DirEast)
	assert.Equal(t, ecs.NotMoving, h.move().State)
}

func TestMovement_SkipsEntitiesWithoutSlot(t *testing.T) {
	w := ecs.NewWorld(4, testTileSize)
	id := w.NewEntity()
	row, _ := w.Row(id)
	w.Movement[row].Speed = 4

	sys := NewMovementSystem(NewStagePassability(createOpenStage()), nil)
	assert.NotPanics(t, func() { sys.Update(w, testDT) })
	assert.Equal(t, ecs.NotMoving, w.Movement[row].State)
}

func TestMovement_ZeroSpeedNeverStarts(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirSouth)
	h.move().Speed = 0

	h.tick(t, entity.DirSouth)
	assert.Equal(t, ecs.NotMoving, h.move().State)
}

func TestMovement_PassabilityFunc(t *testing.T) {
	w := ecs.NewWorld(4, testTileSize)
	id := w.CreatePlayer(ecs.SpawnConfig{TileX: 0, TileY: 0, Facing: entity.DirEast, Speed: 4, SpriteID: "hero"})

	var asked []entity.Direction
	oracle := PassabilityFunc(func(_ *ecs.World, e ecs.EntityID, fx, fy int, dir entity.Direction) bool {
		assert.Equal(t, id, e)
		assert.Equal(t, 0, fx)
		assert.Equal(t, 0, fy)
		asked = append(asked, dir)
		return true
	})
	sys := NewMovementSystem(oracle, nil)

	w.ActivateRequest(id, entity.DirEast)
	sys.Update(w, testDT)

	assert.Equal(t, []entity.Direction{entity.DirEast}, asked)
	assert.False(t, w.RequestSlot(id).Active, "starting a step consumes the request")
}

func TestTeleport(t *testing.T) {
	h := createMovementHarness(t, createOpenStage(), 4, 4, entity.DirSouth)
	h.tick(t, entity.DirSouth)
	require.True(t, h.move().IsMoving)

	Teleport(h.w, h.player, 2, 7, entity.DirWest)
	assert.Equal(t, ecs.Position{X: 2, Y: 7, PixelX: 32, PixelY: 112}, h.pos())
	assert.False(t, h.move().IsMoving)
	assert.Equal(t, ecs.NotMoving, h.move().State)
	assert.Equal(t, entity.DirWest, h.move().Facing)
}

func TestStagePassability(t *testing.T) {
	stage := createOpenStage()
	w := ecs.NewWorld(4, testTileSize)
	p := w.CreatePlayer(ecs.SpawnConfig{TileX: 1, TileY: 1, SpriteID: "hero"})
	w.CreateNPC(ecs.SpawnConfig{TileX: 2, TileY: 2, SpriteID: "npc"}, ecs.NPC{})
	oracle := NewStagePassability(stage)

	assert.False(t, oracle.CanMove(w, p, 1, 1, entity.DirNorth), "wall")
	assert.True(t, oracle.CanMove(w, p, 1, 1, entity.DirEast))
	assert.False(t, oracle.CanMove(w, p, 2, 1, entity.DirSouth), "occupied")
	assert.False(t, oracle.CanMove(w, p, 1, 1, entity.DirNone))
	assert.False(t, (&StagePassability{}).CanMove(w, p, 1, 1, entity.DirEast))
}
