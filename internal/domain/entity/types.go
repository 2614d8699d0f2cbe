package entity

// TileType represents the type of a tile
type TileType int

const (
	TileEmpty TileType = iota
	TileWall
	TileWater
)

// Tile represents a single tile in the stage
type Tile struct {
	Type  TileType
	Solid bool
	GID   uint32 // composited ground tile id (0 = no tile)
}

// Warp moves the player to another stage when stepped on
type Warp struct {
	X, Y        int // tile coordinates on this stage
	TargetStage string
	TargetX     int
	TargetY     int
}

// Stage represents the current stage's tile data
type Stage struct {
	ID          string
	Width       int // tiles
	Height      int // tiles
	TileSize    int // pixels
	Tiles       [][]Tile
	Warps       []Warp
	SpawnX      int // tile coordinates
	SpawnY      int
	SpawnFacing Direction
}

// InBounds reports whether tile coordinates lie inside the stage
func (s *Stage) InBounds(tx, ty int) bool {
	return tx >= 0 && tx < s.Width && ty >= 0 && ty < s.Height
}

// GetTile returns the tile at the given tile coordinates.
// Out-of-bounds coordinates read as solid wall.
func (s *Stage) GetTile(tx, ty int) Tile {
	if !s.InBounds(tx, ty) {
		return Tile{Type: TileWall, Solid: true}
	}
	return s.Tiles[ty][tx]
}

// IsWalkable checks if a tile can be entered
func (s *Stage) IsWalkable(tx, ty int) bool {
	return !s.GetTile(tx, ty).Solid
}

// WarpAt returns the warp on the given tile, if any
func (s *Stage) WarpAt(tx, ty int) (Warp, bool) {
	for _, w := range s.Warps {
		if w.X == tx && w.Y == ty {
			return w, true
		}
	}
	return Warp{}, false
}

// PixelWidth returns the stage width in pixels
func (s *Stage) PixelWidth() int { return s.Width * s.TileSize }

// PixelHeight returns the stage height in pixels
func (s *Stage) PixelHeight() int { return s.Height * s.TileSize }

// FloorDiv divides rounding toward negative infinity
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
