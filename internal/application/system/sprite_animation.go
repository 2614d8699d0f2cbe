package system

import (
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/younwookim/gridsync/internal/domain/animation"
	"github.com/younwookim/gridsync/internal/ecs"
	"github.com/younwookim/gridsync/internal/infrastructure/manifest"
)

// ClipResolver resolves sprite clips by name
type ClipResolver interface {
	Animation(spriteID, name string) (*animation.Clip, error)
}

// AnimationEvent is a frame event fired during a tick
type AnimationEvent struct {
	Entity ecs.EntityID
	Name   string
	Frame  int
}

// SpriteAnimationSystem selects each entity's clip from its movement state
// and advances playback.
type SpriteAnimationSystem struct {
	clips  ClipResolver
	logger *zap.Logger
	events []AnimationEvent
}

// NewSpriteAnimationSystem creates a new sprite animation system
func NewSpriteAnimationSystem(clips ClipResolver, logger *zap.Logger) *SpriteAnimationSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpriteAnimationSystem{
		clips:  clips,
		logger: logger,
		events: make([]AnimationEvent, 0, 16),
	}
}

// Events returns the frame events fired during the last Update.
// The slice is reused by the next Update.
func (s *SpriteAnimationSystem) Events() []AnimationEvent {
	return s.events
}

// Update selects and advances every entity's animation
func (s *SpriteAnimationSystem) Update(w *ecs.World, dt time.Duration) error {
	s.events = s.events[:0]

	for i := range w.IDs {
		sa := &w.Sprite[i]
		if sa.SpriteID == "" {
			// nothing to wait on; let turns finish immediately
			sa.IsComplete = true
			continue
		}

		s.selectClip(w, i)
		clip, err := s.resolve(w, i)
		if err != nil {
			return err
		}
		sa.FlipHorizontal = clip.FlipHorizontal

		if !sa.IsPlaying || (sa.IsComplete && sa.PlayOnce) {
			continue
		}
		s.advance(w.IDs[i], sa, clip, dt)
	}
	return nil
}

// selectClip maps movement state to a canonical clip name
func (s *SpriteAnimationSystem) selectClip(w *ecs.World, i int) {
	m := &w.Movement[i]
	sa := &w.Sprite[i]

	switch m.State {
	case ecs.Moving:
		sa.Play(animation.GoName(m.MovementDirection), false)
	case ecs.TurnDirection:
		sa.Play(animation.TurnName(m.Facing), true)
	default:
		if w.IsNPC[i] && w.NPC[i].IdleAnimation != "" {
			sa.Play(w.NPC[i].IdleAnimation, false)
			return
		}
		sa.Play(animation.FaceName(m.Facing), false)
	}
}

// resolve fetches the selected clip. An NPC whose configured idle clip does
// not exist falls back to the default idle clip with a warning; any other
// missing clip is a configuration error.
func (s *SpriteAnimationSystem) resolve(w *ecs.World, i int) (*animation.Clip, error) {
	sa := &w.Sprite[i]
	clip, err := s.clips.Animation(sa.SpriteID, sa.Name)
	if err == nil {
		return clip, nil
	}

	n := &w.NPC[i]
	if !w.IsNPC[i] || n.IdleAnimation == "" || sa.Name != n.IdleAnimation ||
		sa.Name == animation.DefaultIdle || !errors.Is(err, manifest.ErrAnimationNotFound) {
		return nil, eris.Wrapf(err, "entity %d", w.IDs[i])
	}

	s.logger.Warn("unknown npc animation, using default idle",
		zap.Uint64("entity", uint64(w.IDs[i])),
		zap.String("sprite", sa.SpriteID),
		zap.String("animation", sa.Name),
		zap.String("fallback", animation.DefaultIdle),
	)
	n.NoteFallback()

	sa.Play(animation.DefaultIdle, false)
	clip, err = s.clips.Animation(sa.SpriteID, sa.Name)
	if err != nil {
		return nil, eris.Wrapf(err, "entity %d", w.IDs[i])
	}
	return clip, nil
}

func (s *SpriteAnimationSystem) advance(id ecs.EntityID, sa *ecs.SpriteAnimation, clip *animation.Clip, dt time.Duration) {
	// frame 0 counts as visited as soon as the clip starts
	s.fire(id, sa, clip)

	loop := clip.Loop && !sa.PlayOnce
	step := animation.Advance(clip.Frames, &sa.Frame, &sa.Elapsed, dt, loop)
	if step.Has(animation.StepWrapped) {
		sa.Events = 0
	}
	if step.Has(animation.StepCompleted) {
		sa.IsComplete = true
	}
	if step.Has(animation.StepAdvanced) || step.Has(animation.StepWrapped) {
		s.fire(id, sa, clip)
	}
}

// fire emits the current frame's event once per visit
func (s *SpriteAnimationSystem) fire(id ecs.EntityID, sa *ecs.SpriteAnimation, clip *animation.Clip) {
	f := animation.Clamp(sa.Frame, len(clip.Frames))
	ev := clip.Frames[f].Event
	if ev == "" || sa.Events.Has(f) {
		return
	}
	sa.Events = sa.Events.With(f)
	s.events = append(s.events, AnimationEvent{Entity: id, Name: ev, Frame: f})
}
