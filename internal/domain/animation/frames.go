package animation

import "time"

// MaxEventFrames is the number of frames an event mask can track
const MaxEventFrames = 64

// Rect is a source rectangle on a sprite sheet
type Rect struct {
	X, Y, W, H int
}

// SpriteFrame is one displayed frame of a sprite clip
type SpriteFrame struct {
	Source   Rect
	Duration time.Duration
	Event    string // fired once per visit; empty = none
}

// FrameDuration implements Timed
func (f SpriteFrame) FrameDuration() time.Duration { return f.Duration }

// Clip is a named, ordered sprite frame sequence
type Clip struct {
	Name           string
	Loop           bool
	FlipHorizontal bool
	Frames         []SpriteFrame
}

// TileFrame is one step of an animated tile
type TileFrame struct {
	TileID   uint32 // tileset-local id
	Duration time.Duration
}

// FrameDuration implements Timed
func (f TileFrame) FrameDuration() time.Duration { return f.Duration }

// EventMask tracks which frame indices already fired their event during the
// current pass through a clip.
type EventMask uint64

// Has reports whether frame i is marked. Indices outside the mask read as
// marked so they never fire.
func (m EventMask) Has(i int) bool {
	if i < 0 || i >= MaxEventFrames {
		return true
	}
	return m&(1<<uint(i)) != 0
}

// With returns the mask with frame i marked
func (m EventMask) With(i int) EventMask {
	if i < 0 || i >= MaxEventFrames {
		return m
	}
	return m | 1<<uint(i)
}
