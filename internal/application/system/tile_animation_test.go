package system

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/infrastructure/manifest"
)

const testWaterFirstGID = 100

// createAnimatedChunk builds a 2x1 chunk whose first slot is animated water
func createAnimatedChunk(x int) *entity.Chunk {
	return entity.NewChunk(entity.ChunkCoord{X: x}, x*2, 0, 2, 1,
		[]uint32{testWaterFirstGID, 7},
		[]entity.AnimatedTile{{Slot: 0, TilesetID: "water", LocalTileID: 0, FirstGID: testWaterFirstGID}},
	)
}

func TestTileAnimation_StaticChunk(t *testing.T) {
	sys := NewTileAnimationSystem(createTestLibrary(t), nil)
	c := entity.NewChunk(entity.ChunkCoord{}, 0, 0, 2, 1, []uint32{1, 2}, nil)

	require.NoError(t, sys.LoadChunk(c))
	assert.True(t, c.Loaded)
	assert.Nil(t, c.Animations)
	assert.Equal(t, 0, sys.ActiveChunks())

	sys.Update(time.Second)
	assert.Equal(t, []uint32{1, 2}, c.Tiles)
	assert.Equal(t, uint64(1), c.Version)
}

func TestTileAnimation_PatchesInPlace(t *testing.T) {
	sys := NewTileAnimationSystem(createTestLibrary(t), nil)
	c := createAnimatedChunk(0)
	require.NoError(t, sys.LoadChunk(c))
	require.Len(t, c.Animations, 2)
	assert.True(t, c.Animations[0].Active)
	assert.False(t, c.Animations[1].Active)

	// water frames: tile 0 for 150ms, tile 1 for 100ms, tile 2 for 250ms
	sys.Update(100 * time.Millisecond)
	assert.Equal(t, uint32(testWaterFirstGID), c.Tiles[0])
	v := c.Version

	sys.Update(100 * time.Millisecond)
	assert.Equal(t, uint32(testWaterFirstGID+1), c.Tiles[0])
	assert.Equal(t, v+1, c.Version)
	assert.Equal(t, uint32(7), c.Tiles[1], "static slot untouched")

	sys.Update(300 * time.Millisecond)
	assert.Equal(t, uint32(testWaterFirstGID), c.Tiles[0], "wrapped after 500ms")
	assert.Equal(t, 500*time.Millisecond, sys.Clock())
}

func TestTileAnimation_SharedTimingAcrossChunks(t *testing.T) {
	sys := NewTileAnimationSystem(createTestLibrary(t), nil)
	early := createAnimatedChunk(0)
	require.NoError(t, sys.LoadChunk(early))

	steps := []time.Duration{
		16 * time.Millisecond, 33 * time.Millisecond, 70 * time.Millisecond,
		5 * time.Millisecond, 160 * time.Millisecond, 41 * time.Millisecond,
	}
	for i := 0; i < 4; i++ {
		for _, dt := range steps {
			sys.Update(dt)
		}
	}

	late := createAnimatedChunk(1)
	require.NoError(t, sys.LoadChunk(late))
	assert.Equal(t, early.Tiles[0], late.Tiles[0], "primed on load")
	assert.Equal(t, early.Animations[0].CurrentFrameIndex, late.Animations[0].CurrentFrameIndex)
	assert.Equal(t, early.Animations[0].ElapsedTime, late.Animations[0].ElapsedTime)

	for i := 0; i < 10; i++ {
		for _, dt := range steps {
			sys.Update(dt)
			require.Equal(t, early.Tiles[0], late.Tiles[0])
			require.Equal(t, early.Animations[0].ElapsedTime, late.Animations[0].ElapsedTime)
		}
	}
}

func TestTileAnimation_UnloadRestoresAndPools(t *testing.T) {
	sys := NewTileAnimationSystem(createTestLibrary(t), nil)
	c := createAnimatedChunk(0)
	require.NoError(t, sys.LoadChunk(c))
	sys.Update(200 * time.Millisecond)
	require.Equal(t, uint32(testWaterFirstGID+1), c.Tiles[0])
	states := c.Animations

	sys.UnloadChunk(c)
	assert.False(t, c.Loaded)
	assert.Nil(t, c.Animations)
	assert.Equal(t, uint32(testWaterFirstGID), c.Tiles[0], "authored tile restored")
	assert.Equal(t, 0, sys.ActiveChunks())

	other := createAnimatedChunk(1)
	require.NoError(t, sys.LoadChunk(other))
	assert.Same(t, &states[0], &other.Animations[0], "state slice reused from the pool")
	assert.Equal(t, 1, sys.ActiveChunks())

	// unloading twice is harmless
	sys.UnloadChunk(c)
	assert.Equal(t, 1, sys.ActiveChunks())
}

func TestTileAnimation_MissingTileAnimation(t *testing.T) {
	sys := NewTileAnimationSystem(createTestLibrary(t), nil)
	c := entity.NewChunk(entity.ChunkCoord{}, 0, 0, 1, 1, []uint32{1},
		[]entity.AnimatedTile{{Slot: 0, TilesetID: "lava", LocalTileID: 3, FirstGID: 1}})

	err := sys.LoadChunk(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, manifest.ErrTileAnimationNotFound))
	assert.False(t, c.Loaded)
	assert.Nil(t, c.Animations)
}

func TestTileAnimation_Reset(t *testing.T) {
	sys := NewTileAnimationSystem(createTestLibrary(t), nil)
	a, b := createAnimatedChunk(0), createAnimatedChunk(1)
	require.NoError(t, sys.LoadChunk(a))
	require.NoError(t, sys.LoadChunk(b))
	sys.Update(time.Second)

	sys.Reset()
	assert.Equal(t, 0, sys.ActiveChunks())
	assert.Equal(t, time.Duration(0), sys.Clock())
	assert.False(t, a.Loaded)
	assert.False(t, b.Loaded)
}
