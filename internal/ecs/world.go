package ecs

import (
	"github.com/younwookim/gridsync/internal/domain/animation"
	"github.com/younwookim/gridsync/internal/domain/entity"
)

// EntityID is a unique identifier for an entity (never recycled)
type EntityID uint64

// World stores components in dense parallel columns. Row i of every column
// belongs to IDs[i]. Destroying an entity swaps the last row into its place.
type World struct {
	nextID EntityID
	index  map[EntityID]int

	IDs        []EntityID
	Position   []Position
	Movement   []GridMovement
	Sprite     []SpriteAnimation
	Request    []MovementRequest
	HasRequest []bool
	NPC        []NPC
	IsNPC      []bool

	// Singleton references
	PlayerID EntityID
	TileSize int
}

// NewWorld creates an empty world with room for capacity entities before
// any column has to grow.
func NewWorld(capacity, tileSize int) *World {
	return &World{
		nextID:     1, // 0 is "nil"
		index:      make(map[EntityID]int, capacity),
		IDs:        make([]EntityID, 0, capacity),
		Position:   make([]Position, 0, capacity),
		Movement:   make([]GridMovement, 0, capacity),
		Sprite:     make([]SpriteAnimation, 0, capacity),
		Request:    make([]MovementRequest, 0, capacity),
		HasRequest: make([]bool, 0, capacity),
		NPC:        make([]NPC, 0, capacity),
		IsNPC:      make([]bool, 0, capacity),
		TileSize:   tileSize,
	}
}

// NewEntity appends a row with zero-valued components and returns its ID
func (w *World) NewEntity() EntityID {
	id := w.nextID
	w.nextID++

	w.index[id] = len(w.IDs)
	w.IDs = append(w.IDs, id)
	w.Position = append(w.Position, Position{})
	w.Movement = append(w.Movement, GridMovement{})
	w.Sprite = append(w.Sprite, SpriteAnimation{})
	w.Request = append(w.Request, MovementRequest{})
	w.HasRequest = append(w.HasRequest, false)
	w.NPC = append(w.NPC, NPC{})
	w.IsNPC = append(w.IsNPC, false)
	return id
}

// DestroyEntity removes an entity's row
func (w *World) DestroyEntity(id EntityID) {
	row, ok := w.index[id]
	if !ok {
		return
	}
	last := len(w.IDs) - 1
	if row != last {
		w.IDs[row] = w.IDs[last]
		w.Position[row] = w.Position[last]
		w.Movement[row] = w.Movement[last]
		w.Sprite[row] = w.Sprite[last]
		w.Request[row] = w.Request[last]
		w.HasRequest[row] = w.HasRequest[last]
		w.NPC[row] = w.NPC[last]
		w.IsNPC[row] = w.IsNPC[last]
		w.index[w.IDs[row]] = row
	}
	w.IDs = w.IDs[:last]
	w.Position = w.Position[:last]
	w.Movement = w.Movement[:last]
	w.Sprite = w.Sprite[:last]
	w.Request = w.Request[:last]
	w.HasRequest = w.HasRequest[:last]
	w.NPC = w.NPC[:last]
	w.IsNPC = w.IsNPC[:last]
	delete(w.index, id)

	if id == w.PlayerID {
		w.PlayerID = 0
	}
}

// Exists checks if an entity is alive
func (w *World) Exists(id EntityID) bool {
	_, ok := w.index[id]
	return ok
}

// Row returns the column index of an entity
func (w *World) Row(id EntityID) (int, bool) {
	row, ok := w.index[id]
	return row, ok
}

// Len returns the number of live entities
func (w *World) Len() int { return len(w.IDs) }

// SpawnConfig describes where and how a movable entity starts
type SpawnConfig struct {
	TileX, TileY int
	Facing       entity.Direction
	Speed        float64 // tiles per second
	SpriteID     string
}

func (w *World) spawn(cfg SpawnConfig) (EntityID, int) {
	id := w.NewEntity()
	row := w.index[id]

	facing := cfg.Facing
	if facing == entity.DirNone {
		facing = entity.DirSouth
	}
	w.Position[row] = Position{
		X:      cfg.TileX,
		Y:      cfg.TileY,
		PixelX: float64(cfg.TileX * w.TileSize),
		PixelY: float64(cfg.TileY * w.TileSize),
	}
	w.Movement[row] = GridMovement{
		Speed:             cfg.Speed,
		Facing:            facing,
		MovementDirection: facing,
		State:             NotMoving,
	}
	w.Sprite[row] = SpriteAnimation{SpriteID: cfg.SpriteID}
	w.Sprite[row].Play(animation.FaceName(facing), false)
	w.HasRequest[row] = true
	return id, row
}

// CreatePlayer creates the player entity
func (w *World) CreatePlayer(cfg SpawnConfig) EntityID {
	id, _ := w.spawn(cfg)
	w.PlayerID = id
	return id
}

// CreateNPC creates a non-player character
func (w *World) CreateNPC(cfg SpawnConfig, npc NPC) EntityID {
	id, row := w.spawn(cfg)
	npc.HomeX, npc.HomeY = cfg.TileX, cfg.TileY
	w.NPC[row] = npc
	w.IsNPC[row] = true
	return id
}

// RequestSlot returns the entity's pooled request slot, or nil when the
// entity has none. The pointer stays valid until the world is resized.
func (w *World) RequestSlot(id EntityID) *MovementRequest {
	row, ok := w.index[id]
	if !ok || !w.HasRequest[row] {
		return nil
	}
	return &w.Request[row]
}

// ActivateRequest writes a direction into the slot and flags it active
func (w *World) ActivateRequest(id EntityID, dir entity.Direction) bool {
	slot := w.RequestSlot(id)
	if slot == nil {
		return false
	}
	slot.Direction = dir
	slot.Active = true
	slot.Held = dir
	return true
}

// DeactivateRequest flags the slot inactive without removing it
func (w *World) DeactivateRequest(id EntityID) {
	if slot := w.RequestSlot(id); slot != nil {
		slot.Active = false
		slot.Held = entity.DirNone
	}
}

// RenderFrame returns the renderer triple and draw position of an entity
func (w *World) RenderFrame(id EntityID) (RenderFrame, bool) {
	row, ok := w.index[id]
	if !ok {
		return RenderFrame{}, false
	}
	s := &w.Sprite[row]
	p := w.Position[row]
	return RenderFrame{
		SpriteID:       s.SpriteID,
		Animation:      s.Name,
		Frame:          s.Frame,
		FlipHorizontal: s.FlipHorizontal,
		X:              p.DrawX(),
		Y:              p.DrawY(),
	}, true
}

// GetPlayerPosition returns the player's position
func (w *World) GetPlayerPosition() Position {
	row, ok := w.index[w.PlayerID]
	if !ok {
		return Position{}
	}
	return w.Position[row]
}

// OccupiedBy returns the entity standing on or stepping into a tile.
// The ignore entity is skipped.
func (w *World) OccupiedBy(tx, ty int, ignore EntityID) (EntityID, bool) {
	for i, id := range w.IDs {
		if id == ignore {
			continue
		}
		p := w.Position[i]
		if p.X == tx && p.Y == ty {
			return id, true
		}
		m := &w.Movement[i]
		if m.IsMoving && w.TileSize > 0 &&
			entity.FloorDiv(int(m.TargetX), w.TileSize) == tx &&
			entity.FloorDiv(int(m.TargetY), w.TileSize) == ty {
			return id, true
		}
	}
	return 0, false
}

// CountNPCs returns the number of NPCs
func (w *World) CountNPCs() int {
	n := 0
	for _, is := range w.IsNPC {
		if is {
			n++
		}
	}
	return n
}
