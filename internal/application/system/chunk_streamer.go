package system

import (
	"github.com/younwookim/gridsync/internal/domain/entity"
)

// ChunkStreamer keeps the chunks around the player loaded
type ChunkStreamer struct {
	data   *StageData
	tiles  *TileAnimationSystem
	radius int

	center  entity.ChunkCoord
	primed  bool
	visible []*entity.Chunk
}

// NewChunkStreamer creates a streamer loading chunks within radius of the
// player's chunk.
func NewChunkStreamer(tiles *TileAnimationSystem, radius int) *ChunkStreamer {
	if radius < 0 {
		radius = 0
	}
	return &ChunkStreamer{
		tiles:   tiles,
		radius:  radius,
		visible: make([]*entity.Chunk, 0, (2*radius+1)*(2*radius+1)),
	}
}

// SetStage unloads the current stage's chunks and switches to a new one
func (s *ChunkStreamer) SetStage(data *StageData) {
	if s.data != nil {
		for _, c := range s.data.Chunks {
			s.tiles.UnloadChunk(c)
			c.Loaded = false
		}
	}
	s.data = data
	s.primed = false
	s.visible = s.visible[:0]
}

// Visible returns the loaded chunks, valid until the next Update
func (s *ChunkStreamer) Visible() []*entity.Chunk {
	return s.visible
}

// Update loads and unloads chunks when the player enters a new chunk
func (s *ChunkStreamer) Update(tx, ty int) error {
	if s.data == nil {
		return nil
	}
	center := s.data.ChunkOf(tx, ty)
	if s.primed && center == s.center {
		return nil
	}
	s.center = center
	s.primed = true

	for _, c := range s.data.Chunks {
		if !s.inRange(c.Coord) && c.Loaded {
			s.tiles.UnloadChunk(c)
			c.Loaded = false
		}
	}

	s.visible = s.visible[:0]
	for y := center.Y - s.radius; y <= center.Y+s.radius; y++ {
		for x := center.X - s.radius; x <= center.X+s.radius; x++ {
			c := s.data.ChunkAt(entity.ChunkCoord{X: x, Y: y})
			if c == nil {
				continue
			}
			if err := s.tiles.LoadChunk(c); err != nil {
				return err
			}
			s.visible = append(s.visible, c)
		}
	}
	return nil
}

func (s *ChunkStreamer) inRange(c entity.ChunkCoord) bool {
	return abs(c.X-s.center.X) <= s.radius && abs(c.Y-s.center.Y) <= s.radius
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
