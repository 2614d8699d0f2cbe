package system

import (
	"github.com/rotisserie/eris"

	"github.com/younwookim/gridsync/internal/domain/animation"
	"github.com/younwookim/gridsync/internal/domain/entity"
	"github.com/younwookim/gridsync/internal/ecs"
	"github.com/younwookim/gridsync/internal/infrastructure/config"
)

// StageData is a loaded stage plus its chunk grid
type StageData struct {
	Stage     *entity.Stage
	ChunkSize int
	ChunksW   int
	ChunksH   int
	Chunks    []*entity.Chunk // row-major by chunk coordinate
}

// ChunkAt returns the chunk at a chunk coordinate, or nil outside the grid
func (d *StageData) ChunkAt(c entity.ChunkCoord) *entity.Chunk {
	if c.X < 0 || c.X >= d.ChunksW || c.Y < 0 || c.Y >= d.ChunksH {
		return nil
	}
	return d.Chunks[c.Y*d.ChunksW+c.X]
}

// ChunkOf returns the chunk coordinate containing a tile
func (d *StageData) ChunkOf(tx, ty int) entity.ChunkCoord {
	return entity.ChunkCoord{
		X: entity.FloorDiv(tx, d.ChunkSize),
		Y: entity.FloorDiv(ty, d.ChunkSize),
	}
}

// LoadStage converts a StageConfig into a Stage and its chunks. Tiles whose
// (tileset, tileIndex) has an entry in the cache become animated slots.
func LoadStage(cfg *config.StageConfig, cache TileFrameCache, chunkSize int) (*StageData, error) {
	if cfg.Size.TileSize <= 0 {
		return nil, eris.Errorf("stage %q: tileSize must be positive", cfg.ID)
	}
	if chunkSize <= 0 {
		return nil, eris.Errorf("stage %q: chunk size must be positive", cfg.ID)
	}

	firstGIDs := make(map[string]uint32, len(cfg.Tilesets))
	for _, ts := range cfg.Tilesets {
		firstGIDs[ts.ID] = ts.FirstGID
	}

	tileWidth := cfg.Size.Width / cfg.Size.TileSize
	tileHeight := len(cfg.Layers.Collision)

	tiles := make([][]entity.Tile, tileHeight)
	for y, row := range cfg.Layers.Collision {
		tiles[y] = make([]entity.Tile, tileWidth)
		for x, char := range []rune(row) {
			if x >= tileWidth {
				break
			}
			mapping, ok := cfg.TileMapping[string(char)]
			if !ok {
				tiles[y][x] = entity.Tile{Type: entity.TileEmpty, Solid: false}
				continue
			}

			var tileType entity.TileType
			switch mapping.Type {
			case "wall":
				tileType = entity.TileWall
			case "water":
				tileType = entity.TileWater
			default:
				tileType = entity.TileEmpty
			}

			var gid uint32
			if mapping.Tileset != "" {
				first, ok := firstGIDs[mapping.Tileset]
				if !ok {
					return nil, eris.Errorf("stage %q: tile %q uses unknown tileset %q", cfg.ID, string(char), mapping.Tileset)
				}
				gid = first + uint32(mapping.TileIndex)
			}

			tiles[y][x] = entity.Tile{
				Type:  tileType,
				Solid: mapping.Solid,
				GID:   gid,
			}
		}
	}

	warps := make([]entity.Warp, 0, len(cfg.Warps))
	for _, w := range cfg.Warps {
		warps = append(warps, entity.Warp{
			X:           w.X,
			Y:           w.Y,
			TargetStage: w.Target,
			TargetX:     w.TargetX,
			TargetY:     w.TargetY,
		})
	}

	stage := &entity.Stage{
		ID:          cfg.ID,
		Width:       tileWidth,
		Height:      tileHeight,
		TileSize:    cfg.Size.TileSize,
		Tiles:       tiles,
		Warps:       warps,
		SpawnX:      cfg.PlayerSpawn.X,
		SpawnY:      cfg.PlayerSpawn.Y,
		SpawnFacing: entity.ParseDirection(cfg.PlayerSpawn.Facing),
	}

	return &StageData{
		Stage:     stage,
		ChunkSize: chunkSize,
		ChunksW:   (tileWidth + chunkSize - 1) / chunkSize,
		ChunksH:   (tileHeight + chunkSize - 1) / chunkSize,
		Chunks:    buildChunks(cfg, stage, cache, chunkSize),
	}, nil
}

// buildChunks slices the stage into chunks. Edge chunks are clipped to the
// stage bounds.
func buildChunks(cfg *config.StageConfig, stage *entity.Stage, cache TileFrameCache, size int) []*entity.Chunk {
	cw := (stage.Width + size - 1) / size
	ch := (stage.Height + size - 1) / size
	chunks := make([]*entity.Chunk, 0, cw*ch)

	// reverse lookup: which tileset/local id each collision char came from
	type source struct {
		tileset string
		local   int
		first   uint32
	}
	sources := make(map[rune]source, len(cfg.TileMapping))
	firstGIDs := make(map[string]uint32, len(cfg.Tilesets))
	for _, ts := range cfg.Tilesets {
		firstGIDs[ts.ID] = ts.FirstGID
	}
	for k, m := range cfg.TileMapping {
		if m.Tileset == "" || len(k) == 0 {
			continue
		}
		sources[[]rune(k)[0]] = source{tileset: m.Tileset, local: m.TileIndex, first: firstGIDs[m.Tileset]}
	}

	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			ox, oy := cx*size, cy*size
			w := min(size, stage.Width-ox)
			h := min(size, stage.Height-oy)

			base := make([]uint32, w*h)
			var animated []entity.AnimatedTile
			for ly := 0; ly < h; ly++ {
				row := []rune(cfg.Layers.Collision[oy+ly])
				for lx := 0; lx < w; lx++ {
					slot := ly*w + lx
					base[slot] = stage.Tiles[oy+ly][ox+lx].GID
					if ox+lx >= len(row) {
						continue
					}
					src, ok := sources[row[ox+lx]]
					if !ok || cache == nil {
						continue
					}
					if _, animatedTile := cache.TileHandle(src.tileset, src.local); !animatedTile {
						continue
					}
					animated = append(animated, entity.AnimatedTile{
						Slot:        slot,
						TilesetID:   src.tileset,
						LocalTileID: src.local,
						FirstGID:    src.first,
					})
				}
			}
			chunks = append(chunks, entity.NewChunk(entity.ChunkCoord{X: cx, Y: cy}, ox, oy, w, h, base, animated))
		}
	}
	return chunks
}

// SpawnNPCs creates the stage's NPCs in the world
func SpawnNPCs(w *ecs.World, cfg *config.StageConfig, defaultSpeed float64) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(cfg.NPCs))
	for _, n := range cfg.NPCs {
		speed := n.Speed
		if speed <= 0 {
			speed = defaultSpeed
		}
		behavior := ecs.BehaviorStatic
		if n.Behavior == "wander" {
			behavior = ecs.BehaviorWander
		}
		interval := animation.Seconds(n.Interval)

		ids = append(ids, w.CreateNPC(ecs.SpawnConfig{
			TileX:    n.X,
			TileY:    n.Y,
			Facing:   entity.ParseDirection(n.Facing),
			Speed:    speed,
			SpriteID: n.Sprite,
		}, ecs.NPC{
			Behavior:      behavior,
			IdleAnimation: n.Animation,
			Radius:        n.Radius,
			Interval:      interval,
			Wait:          interval,
		}))
	}
	return ids
}
