package system

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/younwookim/gridsync/internal/domain/animation"
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/infrastructure/config"
)

// InputState holds the resolved input for one tick
type InputState struct {
	Direction entity.Direction // DirNone when nothing is held or buffered
	Interact  bool
	Menu      bool // toggles the movement lock
}

// InputSource yields one InputState per tick
type InputSource interface {
	Poll(dt time.Duration) InputState
}

type bufferedPress struct {
	dir entity.Direction
	age time.Duration
}

// DirectionBuffer resolves raw key state into one logical direction.
// The most recently pressed held key wins. When nothing is held, a tap
// younger than the timeout is still reported, so a quick tap can start a
// turn that a release on the very next tick would otherwise cancel.
type DirectionBuffer struct {
	timeout time.Duration
	ring    []bufferedPress
	head    int
	count   int

	stack [4]entity.Direction // held keys in press order
	held  int
}

// NewDirectionBuffer creates a buffer holding up to depth taps
func NewDirectionBuffer(depth int, timeout time.Duration) *DirectionBuffer {
	if depth < 1 {
		depth = 1
	}
	return &DirectionBuffer{
		timeout: timeout,
		ring:    make([]bufferedPress, depth),
	}
}

// Update advances the buffer by dt and returns the resolved direction.
// Both arrays are indexed by entity.Direction.
func (b *DirectionBuffer) Update(held, pressed [entity.DirEast + 1]bool, dt time.Duration) entity.Direction {
	b.age(dt)

	// drop released keys, keeping press order
	n := 0
	for i := 0; i < b.held; i++ {
		if held[b.stack[i]] {
			b.stack[n] = b.stack[i]
			n++
		}
	}
	b.held = n

	for _, d := range entity.AllDirections {
		if !pressed[d] {
			continue
		}
		b.push(d)
		if held[d] {
			b.promote(d)
		}
	}
	// keys already down when the buffer started never report a press
	for _, d := range entity.AllDirections {
		if held[d] && !b.isHeld(d) {
			b.promote(d)
		}
	}

	if b.held > 0 {
		return b.stack[b.held-1]
	}
	return b.newest()
}

// Reset forgets held keys and buffered taps
func (b *DirectionBuffer) Reset() {
	b.head, b.count, b.held = 0, 0, 0
}

func (b *DirectionBuffer) age(dt time.Duration) {
	for b.count > 0 {
		oldest := (b.head - b.count + len(b.ring)) % len(b.ring)
		if b.ring[oldest].age+dt < b.timeout {
			break
		}
		b.count--
	}
	for i := 0; i < b.count; i++ {
		idx := (b.head - 1 - i + len(b.ring)) % len(b.ring)
		b.ring[idx].age += dt
	}
}

func (b *DirectionBuffer) push(d entity.Direction) {
	b.ring[b.head] = bufferedPress{dir: d}
	b.head = (b.head + 1) % len(b.ring)
	if b.count < len(b.ring) {
		b.count++
	}
}

func (b *DirectionBuffer) newest() entity.Direction {
	if b.count == 0 {
		return entity.DirNone
	}
	return b.ring[(b.head-1+len(b.ring))%len(b.ring)].dir
}

func (b *DirectionBuffer) isHeld(d entity.Direction) bool {
	for i := 0; i < b.held; i++ {
		if b.stack[i] == d {
			return true
		}
	}
	return false
}

func (b *DirectionBuffer) promote(d entity.Direction) {
	n := 0
	for i := 0; i < b.held; i++ {
		if b.stack[i] != d {
			b.stack[n] = b.stack[i]
			n++
		}
	}
	b.stack[n] = d
	b.held = n + 1
}

// KeyboardInput reads arrow keys / WASD through ebiten
type KeyboardInput struct {
	buffer *DirectionBuffer
}

// NewKeyboardInput creates a keyboard input source
func NewKeyboardInput(cfg config.InputConfig) *KeyboardInput {
	timeout := animation.Seconds(cfg.BufferTimeout)
	return &KeyboardInput{buffer: NewDirectionBuffer(cfg.BufferDepth, timeout)}
}

var directionKeys = [entity.DirEast + 1][2]ebiten.Key{
	entity.DirSouth: {ebiten.KeyArrowDown, ebiten.KeyS},
	entity.DirNorth: {ebiten.KeyArrowUp, ebiten.KeyW},
	entity.DirWest:  {ebiten.KeyArrowLeft, ebiten.KeyA},
	entity.DirEast:  {ebiten.KeyArrowRight, ebiten.KeyD},
}

// Poll reads the current keyboard state
func (k *KeyboardInput) Poll(dt time.Duration) InputState {
	var held, pressed [entity.DirEast + 1]bool
	for _, d := range entity.AllDirections {
		for _, key := range directionKeys[d] {
			held[d] = held[d] || ebiten.IsKeyPressed(key)
			pressed[d] = pressed[d] || inpututil.IsKeyJustPressed(key)
		}
	}

	return InputState{
		Direction: k.buffer.Update(held, pressed, dt),
		Interact:  inpututil.IsKeyJustPressed(ebiten.KeyZ) || inpututil.IsKeyJustPressed(ebiten.KeyEnter),
		Menu:      inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyX),
	}
}
