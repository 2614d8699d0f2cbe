package state

// GameState represents the current state of the playing scene
type GameState int

const (
	StateLoading GameState = iota
	StatePlaying
	StateMenu       // player movement locked
	StateTransition // a warp is pending; applied on the next update
)

// String returns the string representation of the game state
func (s GameState) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StateMenu:
		return "Menu"
	case StateTransition:
		return "Transition"
	default:
		return "Unknown"
	}
}
