// Package playing provides the main gameplay scene.
package playing

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/younwookim/gridsync/internal/application/scene"
	"github.com/younwookim/gridsync/internal/application/state"
	"github.com/younwookim/gridsync/internal/application/system"
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
	"github.com/younwookim/gridsync/internal/infrastructure/config"
	"github.com/younwookim/gridsync/internal/infrastructure/manifest"
	"github.com/younwookim/gridsync/internal/infrastructure/storage"
)

// Colors for rendering
var (
	colorBG          = color.RGBA{26, 26, 46, 255}
	colorWall        = color.RGBA{80, 80, 100, 255}
	colorPlayer      = color.RGBA{100, 200, 100, 255}
	colorNPC         = color.RGBA{200, 160, 100, 255}
	colorFacing      = color.RGBA{255, 255, 255, 255}
	colorPlaceholder = color.RGBA{255, 0, 255, 255}
	colorOverlay     = color.RGBA{0, 0, 0, 160}
)

// StageSource loads stage configs by name
type StageSource interface {
	LoadStage(name string) (*config.StageConfig, error)
}

// Options configure a Playing scene
type Options struct {
	Config     *config.GameConfig
	Stages     StageSource
	Library    *manifest.Library
	Input      system.InputSource
	Saves      *storage.SaveManager // nil = no resume snapshot
	Logger     *zap.Logger
	RecordPath string
	Seed       int64  // 0 = engine start seed
	Stage      string // starts at this stage's spawn, skipping the snapshot
}

// Playing is the main gameplay scene
type Playing struct {
	config   *config.GameConfig
	stages   StageSource
	lib      *manifest.Library
	input    system.InputSource
	saves    *storage.SaveManager
	logger   *zap.Logger
	stageCfg *config.StageConfig
	state    state.GameState
	screenW  int
	screenH  int
	tileSize int

	world    *ecs.World
	pipeline *system.Pipeline
	player   ecs.EntityID
	pending  system.Transition

	// frame events seen so far, shown in the HUD
	events int

	seed int64

	// Input recording
	recorder       *Recorder
	recordFilename string
}

// New creates a new Playing scene on the resume snapshot if one exists,
// otherwise on the configured start stage.
func New(opts Options) (*Playing, error) {
	engine := opts.Config.Engine
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = int64(engine.Start.Seed)
	}

	world := ecs.NewWorld(engine.World.MaxEntities, engine.World.TileSize)
	pipeline := system.NewPipeline(world, system.PipelineConfig{
		Clips:      opts.Library,
		TileCache:  opts.Library,
		ScreenW:    engine.Display.ScreenWidth,
		ScreenH:    engine.Display.ScreenHeight,
		LoadRadius: engine.World.ChunkLoadRadius,
		Seed:       seed,
	}, logger)

	p := &Playing{
		config:         opts.Config,
		stages:         opts.Stages,
		lib:            opts.Library,
		input:          opts.Input,
		saves:          opts.Saves,
		logger:         logger,
		state:          state.StateLoading,
		screenW:        engine.Display.ScreenWidth,
		screenH:        engine.Display.ScreenHeight,
		tileSize:       engine.World.TileSize,
		world:          world,
		pipeline:       pipeline,
		seed:           seed,
		recordFilename: opts.RecordPath,
	}

	p.player = world.CreatePlayer(ecs.SpawnConfig{
		Speed:    engine.Movement.PlayerSpeed,
		SpriteID: engine.Start.Player,
	})

	if err := p.start(opts.Stage); err != nil {
		return nil, err
	}

	// Initialize recorder if recording is enabled
	if opts.RecordPath != "" {
		p.recorder = NewRecorder(seed, p.stageCfg.ID, time.Second/time.Duration(max(engine.Display.Framerate, 1)))
		logger.Info("recording enabled", zap.String("path", opts.RecordPath), zap.Int64("seed", seed))
	}

	return p, nil
}

// start enters the snapshot stage, falling back to the start stage
func (p *Playing) start(stage string) error {
	if stage != "" {
		return p.enterStage(stage, 0, 0, entity.DirNone, true)
	}
	if p.saves != nil {
		snap, err := p.saves.Load()
		switch {
		case err == nil:
			facing := entity.ParseDirection(snap.Facing)
			enterErr := p.enterStage(snap.Stage, snap.X, snap.Y, facing, false)
			if enterErr == nil {
				p.logger.Info("resumed from snapshot", zap.String("stage", snap.Stage))
				return nil
			}
			p.logger.Warn("snapshot stage failed to load, starting fresh",
				zap.String("stage", snap.Stage), zap.Error(enterErr))
		case !errors.Is(err, storage.ErrNoSnapshot):
			p.logger.Warn("failed to read snapshot, starting fresh", zap.Error(err))
		}
	}
	return p.enterStage(p.config.Engine.Start.Stage, 0, 0, entity.DirNone, true)
}

// enterStage loads a stage, replaces its NPCs and places the player
func (p *Playing) enterStage(name string, x, y int, facing entity.Direction, atSpawn bool) error {
	cfg, err := p.stages.LoadStage(name)
	if err != nil {
		return err
	}
	data, err := system.LoadStage(cfg, p.lib, p.config.Engine.World.ChunkSize)
	if err != nil {
		return err
	}
	if atSpawn {
		x, y, facing = data.Stage.SpawnX, data.Stage.SpawnY, data.Stage.SpawnFacing
	}
	if !data.Stage.InBounds(x, y) {
		return eris.Errorf("stage %q: entry tile (%d,%d) out of bounds", name, x, y)
	}

	// rows are swap-removed, so walk backwards
	for i := len(p.world.IDs) - 1; i >= 0; i-- {
		if p.world.IsNPC[i] {
			p.world.DestroyEntity(p.world.IDs[i])
		}
	}
	system.SpawnNPCs(p.world, cfg, p.config.Engine.Movement.NPCSpeed)

	p.pipeline.SetStage(data, nil)
	system.Teleport(p.world, p.player, x, y, facing)
	p.stageCfg = cfg

	p.logger.Info("stage entered",
		zap.String("stage", cfg.ID),
		zap.Int("x", x),
		zap.Int("y", y),
		zap.Int("npcs", p.world.CountNPCs()),
	)
	return nil
}

// Update proceeds the game state (implements scene.Scene)
func (p *Playing) Update(dt time.Duration) (scene.Scene, error) {
	switch p.state {
	case state.StateLoading:
		return nil, nil
	case state.StateTransition:
		tr := p.pending
		if err := p.enterStage(tr.TargetStage, tr.X, tr.Y, entity.DirNone, false); err != nil {
			return nil, err
		}
		p.state = state.StatePlaying
	}

	// F5: Save recording manually
	if p.recorder != nil && inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		p.saveRecording()
	}

	input := p.input.Poll(dt)

	// Record input if recording is enabled
	if p.recorder != nil {
		p.recorder.RecordFrame(input, dt)
	}

	tr, warped, err := p.pipeline.Tick(dt, input)
	if err != nil {
		return nil, err
	}
	p.events += len(p.pipeline.Sprites.Events())

	switch {
	case warped:
		p.pending = tr
		p.state = state.StateTransition
		p.logger.Info("warp",
			zap.String("from", p.stageCfg.ID),
			zap.String("to", tr.TargetStage),
			zap.Uint64("tick", p.pipeline.Ticks()),
		)
	case p.locked():
		p.state = state.StateMenu
	default:
		p.state = state.StatePlaying
	}

	return nil, nil // nil = stay on this scene
}

func (p *Playing) locked() bool {
	row, ok := p.world.Row(p.player)
	return ok && p.world.Movement[row].Locked
}

// saveRecording saves the current recording to file
func (p *Playing) saveRecording() {
	if p.recorder == nil {
		return
	}

	filename := p.recordFilename
	if filename == "" {
		filename = GenerateFilename()
	}

	if err := p.recorder.Save(filename); err != nil {
		p.logger.Warn("failed to save recording", zap.Error(err))
	} else {
		p.logger.Info("recording saved", zap.String("path", filename), zap.Int("frames", p.recorder.FrameCount()))
	}
}

// saveSnapshot stores where the player resumes next time
func (p *Playing) saveSnapshot() {
	if p.saves == nil || p.stageCfg == nil {
		return
	}
	row, ok := p.world.Row(p.player)
	if !ok {
		return
	}
	pos := p.world.Position[row]
	stageID := p.stageCfg.ID
	if p.state == state.StateTransition {
		stageID, pos.X, pos.Y = p.pending.TargetStage, p.pending.X, p.pending.Y
	}

	err := p.saves.Save(storage.Snapshot{
		Stage:  stageID,
		X:      pos.X,
		Y:      pos.Y,
		Facing: p.world.Movement[row].Facing.String(),
		Ticks:  p.pipeline.Ticks(),
	})
	if err != nil {
		p.logger.Warn("failed to save snapshot", zap.Error(err))
	}
}

// Draw renders the game screen
func (p *Playing) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)

	cam := p.pipeline.Camera
	p.drawTiles(screen, cam.X, cam.Y)
	p.drawEntities(screen, cam.X, cam.Y)
	p.drawUI(screen)

	switch p.state {
	case state.StateMenu:
		p.drawMenuOverlay(screen)
	case state.StateTransition:
		screen.Fill(color.Black)
	}
}

func (p *Playing) drawTiles(screen *ebiten.Image, camX, camY int) {
	stage := p.pipeline.Stage.Stage
	ts := float64(p.tileSize)

	for _, c := range p.pipeline.Streamer.Visible() {
		for ly := 0; ly < c.Height; ly++ {
			for lx := 0; lx < c.Width; lx++ {
				tx, ty := c.OriginX+lx, c.OriginY+ly
				x := float64(tx*p.tileSize - camX)
				y := float64(ty*p.tileSize - camY)
				if x+ts < 0 || y+ts < 0 || x >= float64(p.screenW) || y >= float64(p.screenH) {
					continue
				}

				var tc color.Color
				switch {
				case stage.GetTile(tx, ty).Type == entity.TileWall:
					tc = colorWall
				case c.TileAt(lx, ly) != 0:
					tc = tileColor(c.TileAt(lx, ly))
				default:
					continue
				}
				ebitenutil.DrawRect(screen, x, y, ts, ts, tc)
			}
		}
	}
}

// tileColor gives every tile id a stable debug color, so animated tiles
// visibly cycle.
func tileColor(gid uint32) color.RGBA {
	return color.RGBA{
		R: uint8(40 + gid*37%120),
		G: uint8(70 + gid*53%130),
		B: uint8(60 + gid*29%150),
		A: 255,
	}
}

func (p *Playing) drawEntities(screen *ebiten.Image, camX, camY int) {
	for i, id := range p.world.IDs {
		rf, ok := p.world.RenderFrame(id)
		if !ok {
			continue
		}

		w, h := float64(p.tileSize), float64(p.tileSize)
		c := colorNPC
		if id == p.player {
			c = colorPlayer
		}
		frame, err := p.lib.Frame(rf.SpriteID, rf.Animation, rf.Frame)
		if err != nil {
			c = colorPlaceholder
		} else if frame.Source.W > 0 && frame.Source.H > 0 {
			w, h = float64(frame.Source.W), float64(frame.Source.H)
		}

		// sprites stand on the bottom edge of their tile
		x := float64(rf.X-camX) + (float64(p.tileSize)-w)/2
		y := float64(rf.Y-camY) + float64(p.tileSize) - h
		ebitenutil.DrawRect(screen, x, y, w, h, c)

		dx, dy := p.world.Movement[i].Facing.Delta()
		fx := x + w/2 - 1 + float64(dx)*(w/2-2)
		fy := y + h/2 - 1 + float64(dy)*(h/2-2)
		ebitenutil.DrawRect(screen, fx, fy, 2, 2, colorFacing)
	}
}

func (p *Playing) drawUI(screen *ebiten.Image) {
	pos := p.world.GetPlayerPosition()
	debugText := fmt.Sprintf("%s (%d,%d)  %s\nTick: %d  Events: %d  FPS: %.0f",
		p.stageCfg.ID, pos.X, pos.Y, p.state, p.pipeline.Ticks(), p.events, ebiten.ActualFPS())
	if p.recorder != nil && p.recorder.IsRecording() {
		debugText += fmt.Sprintf("\nREC %d", p.recorder.FrameCount())
	}
	ebitenutil.DebugPrint(screen, debugText)
}

func (p *Playing) drawMenuOverlay(screen *ebiten.Image) {
	ebitenutil.DrawRect(screen, 0, 0, float64(p.screenW), float64(p.screenH), colorOverlay)
	ebitenutil.DebugPrintAt(screen, "MENU (movement locked)", p.screenW/2-66, p.screenH/2-8)
}

// OnEnter is called when entering this scene
func (p *Playing) OnEnter() {
	if p.state == state.StateLoading {
		p.state = state.StatePlaying
	}
}

// OnExit is called when leaving this scene
func (p *Playing) OnExit() {
	if p.recorder != nil && p.recorder.IsRecording() {
		p.saveRecording()
		p.recorder.Stop()
	}
	p.saveSnapshot()
}

// Layout returns the game's screen dimensions (used by game.Game)
func (p *Playing) Layout(outsideWidth, outsideHeight int) (int, int) {
	return p.screenW, p.screenH
}

// World returns the entity world
func (p *Playing) World() *ecs.World { return p.world }

// Pipeline returns the system pipeline
func (p *Playing) Pipeline() *system.Pipeline { return p.pipeline }

// State returns the scene state
func (p *Playing) State() state.GameState { return p.state }

// StageID returns the current stage id
func (p *Playing) StageID() string { return p.stageCfg.ID }

// Events returns the number of frame events fired so far
func (p *Playing) Events() int { return p.events }

// Player returns the player entity
func (p *Playing) Player() ecs.EntityID { return p.player }
