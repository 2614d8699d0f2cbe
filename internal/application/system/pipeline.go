package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/younwookim/gridsync/internal/ecs"
)

// Pipeline runs the per-tick systems in their fixed order:
// requests, NPC wander, movement, transition detection, camera, chunk
// streaming, sprite animation, tile animation.
type Pipeline struct {
	World    *ecs.World
	Stage    *StageData
	Requests *RequestSystem
	Wander   *WanderSystem
	Movement *MovementSystem
	Camera   *Camera
	Streamer *ChunkStreamer
	Sprites  *SpriteAnimationSystem
	Tiles    *TileAnimationSystem

	logger *zap.Logger
	ticks  uint64
}

// PipelineConfig holds what NewPipeline needs beyond the world
type PipelineConfig struct {
	Clips       ClipResolver
	TileCache   TileFrameCache
	ScreenW     int
	ScreenH     int
	LoadRadius  int
	Seed        int64
	Passability Passability // nil = stage passability
}

// NewPipeline wires the systems for a world
func NewPipeline(w *ecs.World, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	requests := NewRequestSystem()
	tiles := NewTileAnimationSystem(cfg.TileCache, logger)
	return &Pipeline{
		World:    w,
		Requests: requests,
		Wander:   NewWanderSystem(cfg.Seed, requests),
		Movement: NewMovementSystem(cfg.Passability, logger),
		Camera:   NewCamera(cfg.ScreenW, cfg.ScreenH),
		Streamer: NewChunkStreamer(tiles, cfg.LoadRadius),
		Sprites:  NewSpriteAnimationSystem(cfg.Clips, logger),
		Tiles:    tiles,
		logger:   logger,
	}
}

// SetStage switches the stage the pipeline simulates
func (p *Pipeline) SetStage(data *StageData, oracle Passability) {
	p.Stage = data
	if oracle == nil {
		oracle = NewStagePassability(data.Stage)
	}
	p.Movement.SetPassability(oracle)
	p.Streamer.SetStage(data)
	p.Tiles.Reset()
}

// Ticks returns the number of completed ticks
func (p *Pipeline) Ticks() uint64 { return p.ticks }

// Tick runs one simulation step. The returned transition, if any, should
// be applied by the caller before the next tick.
func (p *Pipeline) Tick(dt time.Duration, in InputState) (Transition, bool, error) {
	w := p.World

	if in.Menu {
		if row, ok := w.Row(w.PlayerID); ok {
			locked := !w.Movement[row].Locked
			w.Movement[row].Locked = locked
			p.logger.Debug("movement lock toggled", zap.Bool("locked", locked))
		}
	}

	p.Requests.Update(w, in.Direction)
	p.Wander.Update(w, dt)
	p.Movement.Update(w, dt)

	var tr Transition
	var warped bool
	if p.Stage != nil {
		tr, warped = DetectTransition(w, p.Stage.Stage, p.Movement.Arrived())
		p.Camera.Follow(w, w.PlayerID, p.Stage.Stage)
		pos := w.GetPlayerPosition()
		if err := p.Streamer.Update(pos.X, pos.Y); err != nil {
			return Transition{}, false, err
		}
	}

	if err := p.Sprites.Update(w, dt); err != nil {
		return Transition{}, false, err
	}
	p.Tiles.Update(dt)

	p.ticks++
	return tr, warped, nil
}
