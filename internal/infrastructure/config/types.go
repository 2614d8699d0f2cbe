package config

// EngineConfig is the root config for engine.json
type EngineConfig struct {
	Display  DisplayConfig  `json:"display"`
	World    WorldConfig    `json:"world"`
	Movement MovementConfig `json:"movement"`
	Input    InputConfig    `json:"input"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  StorageConfig  `json:"storage"`
	Start    StartConfig    `json:"start"`
}

type DisplayConfig struct {
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Scale        int    `json:"scale"`
	Framerate    int    `json:"framerate"`
	Title        string `json:"title"`
}

type WorldConfig struct {
	TileSize        int `json:"tileSize"`        // pixels
	ChunkSize       int `json:"chunkSize"`       // tiles per chunk side
	ChunkLoadRadius int `json:"chunkLoadRadius"` // chunks around the player kept loaded
	MaxEntities     int `json:"maxEntities"`
}

type MovementConfig struct {
	PlayerSpeed float64 `json:"playerSpeed"` // tiles per second
	NPCSpeed    float64 `json:"npcSpeed"`
}

type InputConfig struct {
	BufferDepth   int     `json:"bufferDepth"`
	BufferTimeout float64 `json:"bufferTimeout"` // seconds
}

type LoggingConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
	Console    bool   `json:"console"`
}

type StorageConfig struct {
	AppName string `json:"appName"`
	Enabled bool   `json:"enabled"`
}

type StartConfig struct {
	Stage  string `json:"stage"`
	Player string `json:"player"` // sprite id
	Seed   uint64 `json:"seed"`   // NPC wander seed
}
