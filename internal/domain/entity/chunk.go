package entity

import "time"

// ChunkCoord identifies a chunk by its position in chunk units
type ChunkCoord struct {
	X, Y int
}

// AnimatedTile marks one chunk slot whose tile id is animated
type AnimatedTile struct {
	Slot        int // chunk-local flat index
	TilesetID   string
	LocalTileID int
	FirstGID    uint32
}

// ChunkStatic is the authored, immutable part of a chunk
type ChunkStatic struct {
	BaseTiles        []uint32 // authored tile ids, row-major
	AnimatedTiles    []AnimatedTile
	HasAnimatedTiles bool // false = tile animation skips this chunk entirely
}

// TileAnimationState is the playback state of one animated chunk slot.
// Frames are not stored here; Handle points into the shared frame cache.
type TileAnimationState struct {
	Active               bool
	AnimationTilesetID   string
	AnimationLocalTileID int
	FirstGID             uint32
	Handle               int
	CurrentFrameIndex    int
	ElapsedTime          time.Duration
}

// Chunk is a fixed-size block of tiles rendered and animated together
type Chunk struct {
	Coord   ChunkCoord
	OriginX int // tile coordinates of the top-left slot
	OriginY int
	Width   int
	Height  int
	Static  ChunkStatic

	// Tiles is the composited tile-id buffer read by the renderer.
	Tiles []uint32
	// Animations is indexed by slot and only allocated while the chunk is
	// loaded and has animated tiles.
	Animations []TileAnimationState

	Loaded bool
	// Version increases on every patch of Tiles. It starts at 1 so a
	// consumer holding 0 always rebuilds on first use.
	Version uint64
}

// NewChunk creates a chunk from its authored tiles
func NewChunk(coord ChunkCoord, originX, originY, width, height int, base []uint32, animated []AnimatedTile) *Chunk {
	tiles := make([]uint32, len(base))
	copy(tiles, base)
	return &Chunk{
		Coord:   coord,
		OriginX: originX,
		OriginY: originY,
		Width:   width,
		Height:  height,
		Static: ChunkStatic{
			BaseTiles:        base,
			AnimatedTiles:    animated,
			HasAnimatedTiles: len(animated) > 0,
		},
		Tiles:   tiles,
		Version: 1,
	}
}

// SlotCount returns the number of tile slots in the chunk
func (c *Chunk) SlotCount() int {
	return c.Width * c.Height
}

// Slot returns the flat index of a chunk-local tile
func (c *Chunk) Slot(localX, localY int) int {
	return localY*c.Width + localX
}

// TileAt returns the composited tile id at chunk-local coordinates
func (c *Chunk) TileAt(localX, localY int) uint32 {
	if localX < 0 || localX >= c.Width || localY < 0 || localY >= c.Height {
		return 0
	}
	return c.Tiles[c.Slot(localX, localY)]
}

// Patch writes a new tile id into the buffer and bumps the version
func (c *Chunk) Patch(slot int, gid uint32) {
	if c.Tiles[slot] == gid {
		return
	}
	c.Tiles[slot] = gid
	c.Version++
}

// ResetTiles restores the authored tile ids
func (c *Chunk) ResetTiles() {
	copy(c.Tiles, c.Static.BaseTiles)
	c.Version++
}
