package system

import (
	"math/rand"
	"time"

	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
)

// WanderSystem is the input resolver for wandering NPCs. It picks a
// direction at each interval, holds it until the NPC starts a step or the
// interval runs out, and feeds it through the same request contract as
// player input.
type WanderSystem struct {
	rng      *rand.Rand
	requests *RequestSystem
}

// NewWanderSystem creates a wander system with a fixed seed so replays
// reproduce NPC movement.
func NewWanderSystem(seed int64, requests *RequestSystem) *WanderSystem {
	return &WanderSystem{
		rng:      rand.New(rand.NewSource(seed)),
		requests: requests,
	}
}

// Update advances every wandering NPC's decision timer
func (s *WanderSystem) Update(w *ecs.World, dt time.Duration) {
	for i := range w.IDs {
		if !w.IsNPC[i] {
			continue
		}
		n := &w.NPC[i]
		if n.Behavior != ecs.BehaviorWander {
			continue
		}
		m := &w.Movement[i]

		switch {
		case n.Held != entity.DirNone:
			if m.State == ecs.Moving {
				n.Held = entity.DirNone
				n.Wait = n.Interval
				break
			}
			n.Wait -= dt
			if n.Wait <= 0 {
				// blocked for a whole interval; give up
				n.Held = entity.DirNone
				n.Wait = n.Interval
			}
		case m.State == ecs.NotMoving:
			n.Wait -= dt
			if n.Wait <= 0 {
				n.Held = s.pick(w, i)
				n.Wait = n.Interval
			}
		}

		s.requests.Apply(w, i, n.Held)
	}
}

// pick chooses a direction that stays within the NPC's home radius, or
// DirNone to idle for another interval.
func (s *WanderSystem) pick(w *ecs.World, i int) entity.Direction {
	k := s.rng.Intn(len(entity.AllDirections) + 1)
	if k == len(entity.AllDirections) {
		return entity.DirNone
	}
	d := entity.AllDirections[k]

	n := &w.NPC[i]
	p := w.Position[i]
	dx, dy := d.Delta()
	if abs(p.X+dx-n.HomeX) > n.Radius || abs(p.Y+dy-n.HomeY) > n.Radius {
		return entity.DirNone
	}
	return d
}
