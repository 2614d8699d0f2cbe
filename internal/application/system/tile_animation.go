package system

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/younwookim/gridsync/internal/domain/animation"
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/infrastructure/manifest"
)

// TileFrameCache is the shared, read-only tile animation cache
type TileFrameCache interface {
	TileHandle(tilesetID string, localTileID int) (int, bool)
	FramesByHandle(h int) []animation.TileFrame
}

// TileAnimationSystem advances animated tiles of loaded chunks and patches
// their tile buffers in place.
//
// A running clock of total animated time lets a chunk loaded late start at
// the same frame as chunks that were loaded all along.
type TileAnimationSystem struct {
	cache  TileFrameCache
	logger *zap.Logger

	clock  time.Duration
	chunks []*entity.Chunk // loaded chunks that have animated tiles
	pool   [][]entity.TileAnimationState
}

// NewTileAnimationSystem creates a new tile animation system
func NewTileAnimationSystem(cache TileFrameCache, logger *zap.Logger) *TileAnimationSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TileAnimationSystem{
		cache:  cache,
		logger: logger,
		chunks: make([]*entity.Chunk, 0, 16),
	}
}

// Clock returns the total time animated so far
func (s *TileAnimationSystem) Clock() time.Duration { return s.clock }

// ActiveChunks returns the number of loaded chunks with animated tiles
func (s *TileAnimationSystem) ActiveChunks() int { return len(s.chunks) }

// LoadChunk marks a chunk loaded and, if it has animated tiles, creates
// their playback state primed to the current clock.
func (s *TileAnimationSystem) LoadChunk(c *entity.Chunk) error {
	if c.Loaded {
		return nil
	}
	c.Loaded = true
	if !c.Static.HasAnimatedTiles {
		return nil
	}

	states := s.take(c.SlotCount())
	for _, at := range c.Static.AnimatedTiles {
		h, ok := s.cache.TileHandle(at.TilesetID, at.LocalTileID)
		if !ok {
			s.give(states)
			c.Loaded = false
			return eris.Wrapf(manifest.ErrTileAnimationNotFound, "chunk %v slot %d: tileset %q tile %d",
				c.Coord, at.Slot, at.TilesetID, at.LocalTileID)
		}
		frames := s.cache.FramesByHandle(h)
		frame, elapsed := animation.Seek(frames, s.clock)
		states[at.Slot] = entity.TileAnimationState{
			Active:               true,
			AnimationTilesetID:   at.TilesetID,
			AnimationLocalTileID: at.LocalTileID,
			FirstGID:             at.FirstGID,
			Handle:               h,
			CurrentFrameIndex:    frame,
			ElapsedTime:          elapsed,
		}
		if len(frames) > 0 {
			c.Patch(at.Slot, at.FirstGID+frames[frame].TileID)
		}
	}
	c.Animations = states
	s.chunks = append(s.chunks, c)

	s.logger.Debug("chunk animations loaded",
		zap.Int("chunkX", c.Coord.X),
		zap.Int("chunkY", c.Coord.Y),
		zap.Int("tiles", len(c.Static.AnimatedTiles)),
	)
	return nil
}

// UnloadChunk releases a chunk's playback state and restores its
// authored tiles.
func (s *TileAnimationSystem) UnloadChunk(c *entity.Chunk) {
	if !c.Loaded {
		return
	}
	c.Loaded = false
	if c.Animations == nil {
		return
	}

	for i, lc := range s.chunks {
		if lc == c {
			last := len(s.chunks) - 1
			s.chunks[i] = s.chunks[last]
			s.chunks[last] = nil
			s.chunks = s.chunks[:last]
			break
		}
	}
	s.give(c.Animations)
	c.Animations = nil
	c.ResetTiles()
}

// Update advances every animated tile by dt
func (s *TileAnimationSystem) Update(dt time.Duration) {
	if dt > 0 {
		s.clock += dt
	}

	for _, c := range s.chunks {
		for _, at := range c.Static.AnimatedTiles {
			st := &c.Animations[at.Slot]
			if !st.Active {
				continue
			}
			frames := s.cache.FramesByHandle(st.Handle)
			if len(frames) == 0 {
				continue
			}
			step := animation.Advance(frames, &st.CurrentFrameIndex, &st.ElapsedTime, dt, true)
			if step.Has(animation.StepAdvanced) {
				c.Patch(at.Slot, st.FirstGID+frames[st.CurrentFrameIndex].TileID)
			}
		}
	}
}

// Reset unloads every chunk and restarts the clock (stage change)
func (s *TileAnimationSystem) Reset() {
	for len(s.chunks) > 0 {
		s.UnloadChunk(s.chunks[len(s.chunks)-1])
	}
	s.clock = 0
}

func (s *TileAnimationSystem) take(n int) []entity.TileAnimationState {
	for i := len(s.pool) - 1; i >= 0; i-- {
		if cap(s.pool[i]) >= n {
			states := s.pool[i][:n]
			s.pool[i] = s.pool[len(s.pool)-1]
			s.pool = s.pool[:len(s.pool)-1]
			return states
		}
	}
	return make([]entity.TileAnimationState, n)
}

func (s *TileAnimationSystem) give(states []entity.TileAnimationState) {
	clear(states)
	s.pool = append(s.pool, states)
}
