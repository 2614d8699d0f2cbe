package animation

import "github.com/younwookim/gridsync/internal/domain/entity"

// Canonical clip names are "<prefix><direction>", e.g. "go_fast_west".
const (
	PrefixFace = "face_"
	PrefixGo   = "go_"
	PrefixTurn = "go_fast_"

	// DefaultIdle is used when an NPC names a clip its sprite does not have.
	DefaultIdle = PrefixFace + "south"
)

// Names are built once so the per-tick selection never concatenates.
var (
	faceNames [entity.DirEast + 1]string
	goNames   [entity.DirEast + 1]string
	turnNames [entity.DirEast + 1]string
)

func init() {
	for _, d := range entity.AllDirections {
		faceNames[d] = PrefixFace + d.String()
		goNames[d] = PrefixGo + d.String()
		turnNames[d] = PrefixTurn + d.String()
	}
	faceNames[entity.DirNone] = DefaultIdle
	goNames[entity.DirNone] = PrefixGo + "south"
	turnNames[entity.DirNone] = PrefixTurn + "south"
}

// FaceName returns the idle clip for a facing
func FaceName(d entity.Direction) string { return faceNames[index(d)] }

// GoName returns the walking clip for a direction
func GoName(d entity.Direction) string { return goNames[index(d)] }

// TurnName returns the turn-in-place clip for a direction
func TurnName(d entity.Direction) string { return turnNames[index(d)] }

func index(d entity.Direction) entity.Direction {
	if d > entity.DirEast {
		return entity.DirNone
	}
	return d
}
