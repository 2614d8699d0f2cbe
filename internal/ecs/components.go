package ecs

import (
	"math"
	"time"

	"github.com/younwookim/gridsync/internal/domain/animation"
	"github.com/younwookim/gridsync/internal/domain/entity"
)

// Position holds an entity's grid cell and its pixel position.
// During interpolation the pixel position is the source of truth; the grid
// cell is re-derived from it when a step completes.
type Position struct {
	X, Y           int // tiles
	PixelX, PixelY float64
}

// DrawX returns the rounded pixel X used for rendering
func (p Position) DrawX() int { return int(math.Round(p.PixelX)) }

// DrawY returns the rounded pixel Y used for rendering
func (p Position) DrawY() int { return int(math.Round(p.PixelY)) }

// RunningState is the grid movement state
type RunningState uint8

const (
	NotMoving RunningState = iota
	TurnDirection
	Moving
)

func (s RunningState) String() string {
	switch s {
	case NotMoving:
		return "NotMoving"
	case TurnDirection:
		return "TurnDirection"
	case Moving:
		return "Moving"
	default:
		return "Unknown"
	}
}

// GridMovement represents tile-to-tile movement state
type GridMovement struct {
	IsMoving         bool
	StartX, StartY   float64 // pixel
	TargetX, TargetY float64 // pixel
	Progress         float64 // [0,1) while moving
	Speed            float64 // tiles per second

	// Elapsed and StepTime time the step in integer nanoseconds; Progress is
	// derived from them so arrival does not depend on float accumulation.
	Elapsed  time.Duration
	StepTime time.Duration

	Facing            entity.Direction
	MovementDirection entity.Direction // changes only when a step starts

	// Locked blocks starting a turn or a step; an in-flight step still completes.
	Locked bool
	State  RunningState
}

// SpriteAnimation is the per-entity playback state
type SpriteAnimation struct {
	SpriteID       string
	Name           string
	Frame          int
	Elapsed        time.Duration
	IsPlaying      bool
	IsComplete     bool
	PlayOnce       bool
	FlipHorizontal bool
	Events         animation.EventMask
}

// Play switches to a new clip. Selecting the clip already playing in the
// same mode is a no-op, so callers may select every tick. A change of name
// or of the play-once flag restarts playback from frame 0.
func (s *SpriteAnimation) Play(name string, once bool) {
	if s.Name == name && s.PlayOnce == once {
		return
	}
	s.Name = name
	s.PlayOnce = once
	s.Frame = 0
	s.Elapsed = 0
	s.IsComplete = false
	s.IsPlaying = true
	s.Events = 0
}

// MovementRequest is the pooled intent slot. It is never removed from an
// entity; Active marks whether it currently holds a request.
type MovementRequest struct {
	Direction entity.Direction
	Active    bool
	Held      entity.Direction // input seen on the latest tick, DirNone when released
}

// NPCBehavior selects how an NPC produces movement requests
type NPCBehavior uint8

const (
	BehaviorStatic NPCBehavior = iota
	BehaviorWander
)

// NPC holds non-player character data
type NPC struct {
	Behavior      NPCBehavior
	IdleAnimation string // optional override of face_<dir> while idle
	HomeX, HomeY  int
	Radius        int           // wander radius in tiles
	Interval      time.Duration // pause between wander steps
	Wait          time.Duration // remaining pause
	Held          entity.Direction
	fallbackNoted bool
}

// FallbackNoted reports whether the idle override was already replaced
func (n *NPC) FallbackNoted() bool { return n.fallbackNoted }

// NoteFallback replaces the idle override with the default idle clip
func (n *NPC) NoteFallback() {
	n.IdleAnimation = animation.DefaultIdle
	n.fallbackNoted = true
}

// RenderFrame is what the renderer needs to draw one entity
type RenderFrame struct {
	SpriteID       string
	Animation      string
	Frame          int
	FlipHorizontal bool
	X, Y           int // rounded pixel position
}
