package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
)

func TestRequestSystem_Apply(t *testing.T) {
	w := ecs.NewWorld(4, testTileSize)
	id := w.CreatePlayer(ecs.SpawnConfig{TileX: 1, TileY: 1, Speed: 4, SpriteID: "hero"})
	row, _ := w.Row(id)
	slot := w.RequestSlot(id)
	require.NotNil(t, slot)
	sys := NewRequestSystem()

	t.Run("writes when inactive", func(t *testing.T) {
		sys.Update(w, entity.DirNorth)
		assert.True(t, slot.Active)
		assert.Equal(t, entity.DirNorth, slot.Direction)
	})

	t.Run("changes direction between tiles", func(t *testing.T) {
		sys.Update(w, entity.DirWest)
		assert.True(t, slot.Active)
		assert.Equal(t, entity.DirWest, slot.Direction)
	})

	t.Run("keeps the first change while moving", func(t *testing.T) {
		w.Movement[row].IsMoving = true
		defer func() { w.Movement[row].IsMoving = false }()

		sys.Update(w, entity.DirEast)
		assert.Equal(t, entity.DirWest, slot.Direction)
		assert.Equal(t, entity.DirEast, slot.Held, "refused input is still recorded as held")
	})

	t.Run("writes while moving once consumed", func(t *testing.T) {
		w.Movement[row].IsMoving = true
		defer func() { w.Movement[row].IsMoving = false }()
		slot.Active = false

		sys.Update(w, entity.DirEast)
		assert.True(t, slot.Active)
		assert.Equal(t, entity.DirEast, slot.Direction)
	})

	t.Run("release deactivates", func(t *testing.T) {
		sys.Update(w, entity.DirNone)
		assert.False(t, slot.Active)
		assert.Equal(t, entity.DirNone, slot.Held)
		assert.Same(t, slot, w.RequestSlot(id), "slot is never reallocated")
	})
}

func TestRequestSystem_NoSlotOrPlayer(t *testing.T) {
	w := ecs.NewWorld(4, testTileSize)
	sys := NewRequestSystem()
	assert.NotPanics(t, func() { sys.Update(w, entity.DirSouth) })

	id := w.NewEntity()
	row, _ := w.Row(id)
	sys.Apply(w, row, entity.DirSouth)
	assert.False(t, w.Request[row].Active)
	assert.Nil(t, w.RequestSlot(id))
}
