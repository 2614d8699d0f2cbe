package config

// StageConfig is the root config for stage JSON files
type StageConfig struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Size        StageSizeConfig              `json:"size"`
	Tilesets    []TilesetRefConfig           `json:"tilesets"`
	PlayerSpawn SpawnPointConfig             `json:"playerSpawn"`
	Layers      LayersConfig                 `json:"layers"`
	TileMapping map[string]TileMappingConfig `json:"tileMapping"`
	NPCs        []NPCSpawnConfig             `json:"npcs"`
	Warps       []WarpConfig                 `json:"warps"`
}

// StageSizeConfig is measured in pixels, like the collision layer rows
// multiplied by tileSize.
type StageSizeConfig struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	TileSize int `json:"tileSize"`
}

// TilesetRefConfig binds a tileset manifest to a global id range
type TilesetRefConfig struct {
	ID       string `json:"id"`
	FirstGID uint32 `json:"firstGid"`
}

type SpawnPointConfig struct {
	X      int    `json:"x"` // tiles
	Y      int    `json:"y"`
	Facing string `json:"facing"`
}

type LayersConfig struct {
	Collision []string `json:"collision"`
}

// TileMappingConfig maps one collision-layer character to a tile
type TileMappingConfig struct {
	Type      string `json:"type"`
	Solid     bool   `json:"solid"`
	Tileset   string `json:"tileset"`
	TileIndex int    `json:"tileIndex"` // tileset-local id
}

type NPCSpawnConfig struct {
	ID        string  `json:"id"`
	Sprite    string  `json:"sprite"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Facing    string  `json:"facing"`
	Animation string  `json:"animation,omitempty"` // idle override
	Behavior  string  `json:"behavior"`            // "static" or "wander"
	Radius    int     `json:"radius,omitempty"`
	Interval  float64 `json:"interval,omitempty"` // seconds between wander steps
	Speed     float64 `json:"speed,omitempty"`
}

type WarpConfig struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Target  string `json:"target"`
	TargetX int    `json:"targetX"`
	TargetY int    `json:"targetY"`
}
