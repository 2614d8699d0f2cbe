package entity

// Direction is a cardinal grid direction.
type Direction uint8

const (
	DirNone Direction = iota
	DirSouth
	DirNorth
	DirWest
	DirEast
)

// AllDirections lists the four movable directions in manifest order.
var AllDirections = [4]Direction{DirSouth, DirNorth, DirWest, DirEast}

// String returns the lowercase manifest name ("south", "north", ...)
func (d Direction) String() string {
	switch d {
	case DirSouth:
		return "south"
	case DirNorth:
		return "north"
	case DirWest:
		return "west"
	case DirEast:
		return "east"
	default:
		return "none"
	}
}

// Delta returns the grid step for one tile in this direction.
// Y grows downward (south).
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirSouth:
		return 0, 1
	case DirNorth:
		return 0, -1
	case DirWest:
		return -1, 0
	case DirEast:
		return 1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	switch d {
	case DirSouth:
		return DirNorth
	case DirNorth:
		return DirSouth
	case DirWest:
		return DirEast
	case DirEast:
		return DirWest
	default:
		return DirNone
	}
}

// ParseDirection converts a config string to a Direction.
// Unknown strings map to DirNone.
func ParseDirection(s string) Direction {
	switch s {
	case "south", "down":
		return DirSouth
	case "north", "up":
		return DirNorth
	case "west", "left":
		return DirWest
	case "east", "right":
		return DirEast
	default:
		return DirNone
	}
}
