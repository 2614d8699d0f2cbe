package config

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// GameConfig holds all loaded configurations
type GameConfig struct {
	Engine   *EngineConfig
	Sprites  []SpriteManifest
	Tilesets []TilesetManifest
}

// Loader loads game configuration from files using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// LoadEngine loads engine.json
func (l *Loader) LoadEngine() (*EngineConfig, error) {
	data, err := fs.ReadFile(l.fsys, "engine.json")
	if err != nil {
		return nil, eris.Wrap(err, "failed to read engine.json")
	}

	var cfg EngineConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrap(err, "failed to parse engine.json")
	}

	return &cfg, nil
}

// LoadStage loads a stage JSON file
func (l *Loader) LoadStage(name string) (*StageConfig, error) {
	p := "stages/" + name + ".json"
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read stage %s", name)
	}

	var cfg StageConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrapf(err, "failed to parse stage %s", name)
	}

	return &cfg, nil
}

// LoadSprites loads every sprites/*.yaml manifest, sorted by file name
func (l *Loader) LoadSprites() ([]SpriteManifest, error) {
	var out []SpriteManifest
	err := l.eachYAML("sprites", func(name string, data []byte) error {
		var m SpriteManifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return eris.Wrapf(err, "failed to parse sprite manifest %s", name)
		}
		if m.ID == "" {
			m.ID = trimExt(name)
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// LoadTilesets loads every tilesets/*.yaml manifest, sorted by file name
func (l *Loader) LoadTilesets() ([]TilesetManifest, error) {
	var out []TilesetManifest
	err := l.eachYAML("tilesets", func(name string, data []byte) error {
		var m TilesetManifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return eris.Wrapf(err, "failed to parse tileset manifest %s", name)
		}
		if m.ID == "" {
			m.ID = trimExt(name)
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// LoadAll loads the engine config and every animation manifest
func (l *Loader) LoadAll() (*GameConfig, error) {
	engine, err := l.LoadEngine()
	if err != nil {
		return nil, err
	}

	sprites, err := l.LoadSprites()
	if err != nil {
		return nil, err
	}

	tilesets, err := l.LoadTilesets()
	if err != nil {
		return nil, err
	}

	return &GameConfig{
		Engine:   engine,
		Sprites:  sprites,
		Tilesets: tilesets,
	}, nil
}

func (l *Loader) eachYAML(dir string, fn func(name string, data []byte) error) error {
	names, err := fs.Glob(l.fsys, dir+"/*.yaml")
	if err != nil {
		return eris.Wrapf(err, "failed to list %s", dir)
	}
	sort.Strings(names)
	for _, p := range names {
		data, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			return eris.Wrapf(err, "failed to read %s", p)
		}
		if err := fn(path.Base(p), data); err != nil {
			return err
		}
	}
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(path.Ext(name))]
}
