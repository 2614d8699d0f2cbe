package config

import (
	"errors"
	"math"
	"time"

	"github.com/rotisserie/eris"
)

var (
	ErrMissingDurationUnit = errors.New("duration unit missing")
	ErrUnknownDurationUnit = errors.New("unknown duration unit")
)

// Duration units accepted by manifests
const (
	UnitSeconds      = "s"
	UnitMilliseconds = "ms"
	UnitTicks        = "ticks" // 1/60 s, the handheld frame rate manifests are authored at
)

// TicksPerSecond is the rate of the "ticks" unit
const TicksPerSecond = 60

// SpriteManifest is one sprites/*.yaml file
type SpriteManifest struct {
	ID          string              `yaml:"id"`
	Sheet       string              `yaml:"sheet"`
	FrameWidth  int                 `yaml:"frameWidth"`
	FrameHeight int                 `yaml:"frameHeight"`
	Unit        string              `yaml:"unit"`
	Frames      []FrameRectConfig   `yaml:"frames"`
	Animations  []AnimationManifest `yaml:"animations"`
}

type FrameRectConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// AnimationManifest lists a clip as indices into the sprite's frames
type AnimationManifest struct {
	Name           string         `yaml:"name"`
	Loop           bool           `yaml:"loop"`
	FlipHorizontal bool           `yaml:"flipHorizontal"`
	FrameIndices   []int          `yaml:"frameIndices"`
	FrameDurations []float64      `yaml:"frameDurations"`
	Unit           string         `yaml:"unit,omitempty"` // overrides the sprite unit
	Events         map[int]string `yaml:"events,omitempty"`
}

// TilesetManifest is one tilesets/*.yaml file
type TilesetManifest struct {
	ID      string              `yaml:"id"`
	Image   string              `yaml:"image"`
	Columns int                 `yaml:"columns"`
	Unit    string              `yaml:"unit"`
	Tiles   []TileAnimationDef `yaml:"tiles"`
}

type TileAnimationDef struct {
	LocalTileID int               `yaml:"localTileId"`
	Animation   []TileFrameConfig `yaml:"animation"`
}

type TileFrameConfig struct {
	TileID   uint32  `yaml:"tileId"`
	Duration float64 `yaml:"duration"`
}

// ParseDuration converts an authored duration in the given unit
func ParseDuration(unit string, v float64) (time.Duration, error) {
	var scale float64
	switch unit {
	case UnitSeconds:
		scale = float64(time.Second)
	case UnitMilliseconds:
		scale = float64(time.Millisecond)
	case UnitTicks:
		scale = float64(time.Second) / TicksPerSecond
	case "":
		return 0, eris.Wrap(ErrMissingDurationUnit, "manifest must set unit to s, ms or ticks")
	default:
		return 0, eris.Wrapf(ErrUnknownDurationUnit, "%q", unit)
	}
	if v < 0 || math.IsNaN(v) {
		return 0, eris.Errorf("negative duration %v%s", v, unit)
	}
	return time.Duration(math.Round(v * scale)), nil
}
