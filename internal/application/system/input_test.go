package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/infrastructure/config"
)

type keys [entity.DirEast + 1]bool

func keySet(dirs ...entity.Direction) keys {
	var k keys
	for _, d := range dirs {
		k[d] = true
	}
	return k
}

func createTestBuffer() *DirectionBuffer {
	return NewDirectionBuffer(4, 150*time.Millisecond)
}

func TestDirectionBuffer_Held(t *testing.T) {
	b := createTestBuffer()

	dir := b.Update(keySet(entity.DirEast), keySet(entity.DirEast), testDT)
	assert.Equal(t, entity.DirEast, dir)

	dir = b.Update(keySet(entity.DirEast), keys{}, testDT)
	assert.Equal(t, entity.DirEast, dir, "holding keeps the direction")
}

func TestDirectionBuffer_LatestPressWins(t *testing.T) {
	b := createTestBuffer()

	b.Update(keySet(entity.DirEast), keySet(entity.DirEast), testDT)
	dir := b.Update(keySet(entity.DirEast, entity.DirNorth), keySet(entity.DirNorth), testDT)
	assert.Equal(t, entity.DirNorth, dir)

	dir = b.Update(keySet(entity.DirEast), keys{}, testDT)
	assert.Equal(t, entity.DirEast, dir, "releasing the newer key falls back to the older one")
}

func TestDirectionBuffer_TapOutlivesRelease(t *testing.T) {
	b := createTestBuffer()

	dir := b.Update(keySet(entity.DirWest), keySet(entity.DirWest), testDT)
	require.Equal(t, entity.DirWest, dir)

	// released: the tap is reported until it is older than the timeout
	assert.Equal(t, entity.DirWest, b.Update(keys{}, keys{}, testDT))
	assert.Equal(t, entity.DirWest, b.Update(keys{}, keys{}, testDT))
	assert.Equal(t, entity.DirNone, b.Update(keys{}, keys{}, testDT))
}

func TestDirectionBuffer_HeldWithoutPress(t *testing.T) {
	b := createTestBuffer()

	dir := b.Update(keySet(entity.DirSouth), keys{}, testDT)
	assert.Equal(t, entity.DirSouth, dir)
}

func TestDirectionBuffer_DepthAndReset(t *testing.T) {
	b := NewDirectionBuffer(2, time.Second)

	dir := b.Update(keys{}, keySet(entity.DirSouth, entity.DirNorth, entity.DirWest), testDT)
	assert.Equal(t, entity.DirWest, dir)

	b.Reset()
	assert.Equal(t, entity.DirNone, b.Update(keys{}, keys{}, testDT))
}

func TestNewKeyboardInput(t *testing.T) {
	k := NewKeyboardInput(config.InputConfig{BufferDepth: 0, BufferTimeout: 0.15})

	require.NotNil(t, k)
	assert.Len(t, k.buffer.ring, 1, "depth is at least one")
	assert.Equal(t, 150*time.Millisecond, k.buffer.timeout)
}
