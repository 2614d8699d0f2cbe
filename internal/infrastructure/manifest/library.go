// Package manifest resolves sprite clips and tile animations from loaded
// manifests. A Library is built once before the first tick and only read
// afterwards.
package manifest

import (
	"errors"

	"github.com/rotisserie/eris"

	"github.com/younwookim/gridsync/internal/domain/animation"
	"github.com/younwookim/gridsync/internal/infrastructure/config"
)

var (
	ErrSpriteNotFound        = errors.New("sprite not found")
	ErrAnimationNotFound     = errors.New("animation not found")
	ErrTileAnimationNotFound = errors.New("tile animation not found")
)

// Sprite is a resolved sprite sheet with its clips
type Sprite struct {
	ID          string
	Sheet       string
	FrameWidth  int
	FrameHeight int
	Clips       map[string]*animation.Clip
}

// Tileset is a resolved tileset image description
type Tileset struct {
	ID      string
	Image   string
	Columns int
}

// TileKey identifies an animated tile
type TileKey struct {
	TilesetID   string
	LocalTileID int
}

// Library is the animation manifest resolver
type Library struct {
	sprites  map[string]*Sprite
	tilesets map[string]Tileset

	// Tile frame sequences are interned: every chunk slot showing the same
	// tile holds the same handle into tileFrames.
	tileHandles map[TileKey]int
	tileFrames  [][]animation.TileFrame
}

// NewLibrary validates manifests and converts them to playback frames
func NewLibrary(sprites []config.SpriteManifest, tilesets []config.TilesetManifest) (*Library, error) {
	l := &Library{
		sprites:     make(map[string]*Sprite, len(sprites)),
		tilesets:    make(map[string]Tileset, len(tilesets)),
		tileHandles: make(map[TileKey]int),
	}

	for i := range sprites {
		s, err := buildSprite(&sprites[i])
		if err != nil {
			return nil, err
		}
		if _, dup := l.sprites[s.ID]; dup {
			return nil, eris.Errorf("duplicate sprite %q", s.ID)
		}
		l.sprites[s.ID] = s
	}

	for i := range tilesets {
		if err := l.addTileset(&tilesets[i]); err != nil {
			return nil, err
		}
	}

	return l, nil
}

func buildSprite(m *config.SpriteManifest) (*Sprite, error) {
	s := &Sprite{
		ID:          m.ID,
		Sheet:       m.Sheet,
		FrameWidth:  m.FrameWidth,
		FrameHeight: m.FrameHeight,
		Clips:       make(map[string]*animation.Clip, len(m.Animations)),
	}

	for _, a := range m.Animations {
		if len(a.FrameIndices) == 0 {
			return nil, eris.Errorf("sprite %q animation %q has no frames", m.ID, a.Name)
		}
		if len(a.FrameIndices) != len(a.FrameDurations) {
			return nil, eris.Errorf("sprite %q animation %q: %d frame indices but %d durations",
				m.ID, a.Name, len(a.FrameIndices), len(a.FrameDurations))
		}
		unit := a.Unit
		if unit == "" {
			unit = m.Unit
		}

		clip := &animation.Clip{
			Name:           a.Name,
			Loop:           a.Loop,
			FlipHorizontal: a.FlipHorizontal,
			Frames:         make([]animation.SpriteFrame, len(a.FrameIndices)),
		}
		for i, idx := range a.FrameIndices {
			if idx < 0 || idx >= len(m.Frames) {
				return nil, eris.Errorf("sprite %q animation %q frame %d references missing frame %d",
					m.ID, a.Name, i, idx)
			}
			d, err := config.ParseDuration(unit, a.FrameDurations[i])
			if err != nil {
				return nil, eris.Wrapf(err, "sprite %q animation %q", m.ID, a.Name)
			}
			r := m.Frames[idx]
			clip.Frames[i] = animation.SpriteFrame{
				Source:   animation.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H},
				Duration: d,
			}
		}
		for i, ev := range a.Events {
			if i < 0 || i >= len(clip.Frames) || i >= animation.MaxEventFrames {
				return nil, eris.Errorf("sprite %q animation %q event %q on frame %d out of range",
					m.ID, a.Name, ev, i)
			}
			clip.Frames[i].Event = ev
		}

		if _, dup := s.Clips[a.Name]; dup {
			return nil, eris.Errorf("sprite %q has duplicate animation %q", m.ID, a.Name)
		}
		s.Clips[a.Name] = clip
	}
	return s, nil
}

func (l *Library) addTileset(m *config.TilesetManifest) error {
	if _, dup := l.tilesets[m.ID]; dup {
		return eris.Errorf("duplicate tileset %q", m.ID)
	}
	l.tilesets[m.ID] = Tileset{ID: m.ID, Image: m.Image, Columns: m.Columns}

	for _, t := range m.Tiles {
		if len(t.Animation) == 0 {
			continue
		}
		frames := make([]animation.TileFrame, len(t.Animation))
		for i, f := range t.Animation {
			d, err := config.ParseDuration(m.Unit, f.Duration)
			if err != nil {
				return eris.Wrapf(err, "tileset %q tile %d", m.ID, t.LocalTileID)
			}
			frames[i] = animation.TileFrame{TileID: f.TileID, Duration: d}
		}
		key := TileKey{TilesetID: m.ID, LocalTileID: t.LocalTileID}
		if _, dup := l.tileHandles[key]; dup {
			return eris.Errorf("tileset %q animates tile %d twice", m.ID, t.LocalTileID)
		}
		l.tileHandles[key] = len(l.tileFrames)
		l.tileFrames = append(l.tileFrames, frames)
	}
	return nil
}

// Sprite returns a sprite by id
func (l *Library) Sprite(id string) (*Sprite, error) {
	s, ok := l.sprites[id]
	if !ok {
		return nil, eris.Wrapf(ErrSpriteNotFound, "sprite %q", id)
	}
	return s, nil
}

// Animation resolves (spriteId, animationName) to a clip
func (l *Library) Animation(spriteID, name string) (*animation.Clip, error) {
	s, err := l.Sprite(spriteID)
	if err != nil {
		return nil, err
	}
	c, ok := s.Clips[name]
	if !ok {
		return nil, eris.Wrapf(ErrAnimationNotFound, "sprite %q animation %q", spriteID, name)
	}
	return c, nil
}

// HasAnimation reports whether a sprite defines a clip
func (l *Library) HasAnimation(spriteID, name string) bool {
	s, ok := l.sprites[spriteID]
	if !ok {
		return false
	}
	_, ok = s.Clips[name]
	return ok
}

// Frame resolves one frame of a clip. A stale index is clamped.
func (l *Library) Frame(spriteID, name string, frame int) (animation.SpriteFrame, error) {
	c, err := l.Animation(spriteID, name)
	if err != nil {
		return animation.SpriteFrame{}, err
	}
	return c.Frames[animation.Clamp(frame, len(c.Frames))], nil
}

// TileFrames resolves (tilesetId, localTileId) to its frame sequence
func (l *Library) TileFrames(tilesetID string, localTileID int) ([]animation.TileFrame, error) {
	h, ok := l.TileHandle(tilesetID, localTileID)
	if !ok {
		return nil, eris.Wrapf(ErrTileAnimationNotFound, "tileset %q tile %d", tilesetID, localTileID)
	}
	return l.tileFrames[h], nil
}

// TileHandle returns the interned handle of an animated tile
func (l *Library) TileHandle(tilesetID string, localTileID int) (int, bool) {
	h, ok := l.tileHandles[TileKey{TilesetID: tilesetID, LocalTileID: localTileID}]
	return h, ok
}

// FramesByHandle returns the frame sequence behind a handle
func (l *Library) FramesByHandle(h int) []animation.TileFrame {
	if h < 0 || h >= len(l.tileFrames) {
		return nil
	}
	return l.tileFrames[h]
}

// Tileset returns a tileset description by id
func (l *Library) Tileset(id string) (Tileset, bool) {
	t, ok := l.tilesets[id]
	return t, ok
}

// TileAnimationCount returns the number of distinct animated tiles
func (l *Library) TileAnimationCount() int { return len(l.tileFrames) }
