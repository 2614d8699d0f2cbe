package storage

import (
	"errors"

	"github.com/quasilyte/gdata/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrNoSnapshot = errors.New("no saved snapshot")

const (
	snapshotObject   = "resume"
	snapshotProperty = "player"
)

// Backend is the subset of *gdata.Manager the save manager uses
type Backend interface {
	ObjectPropExists(objectKey, propKey string) bool
	LoadObjectProp(objectKey, propKey string) ([]byte, error)
	SaveObjectProp(objectKey, propKey string, data []byte) error
}

// Snapshot is where the player resumes on the next start
type Snapshot struct {
	Stage  string `yaml:"stage"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Facing string `yaml:"facing"`
	Ticks  uint64 `yaml:"ticks"`
}

// SaveManager persists the resume snapshot. A nil backend turns every
// operation into a no-op so the game still runs where storage is missing.
type SaveManager struct {
	backend Backend
	logger  *zap.Logger
}

// Open creates a save manager backed by gdata's per-user app directory
func Open(appName string, logger *zap.Logger) (*SaveManager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open save data for %q", appName)
	}
	return NewSaveManager(m, logger), nil
}

// NewSaveManager creates a save manager over any backend
func NewSaveManager(backend Backend, logger *zap.Logger) *SaveManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaveManager{backend: backend, logger: logger}
}

// Load reads the snapshot, returning ErrNoSnapshot when none was saved
func (m *SaveManager) Load() (Snapshot, error) {
	if m.backend == nil || !m.backend.ObjectPropExists(snapshotObject, snapshotProperty) {
		return Snapshot{}, ErrNoSnapshot
	}

	data, err := m.backend.LoadObjectProp(snapshotObject, snapshotProperty)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "failed to load snapshot")
	}

	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, eris.Wrap(err, "failed to unmarshal snapshot")
	}
	if s.Stage == "" {
		return Snapshot{}, ErrNoSnapshot
	}

	m.logger.Debug("snapshot loaded", zap.String("stage", s.Stage), zap.Int("x", s.X), zap.Int("y", s.Y))
	return s, nil
}

// Save writes the snapshot
func (m *SaveManager) Save(s Snapshot) error {
	if m.backend == nil {
		return nil
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "failed to marshal snapshot")
	}

	if err := m.backend.SaveObjectProp(snapshotObject, snapshotProperty, data); err != nil {
		return eris.Wrap(err, "failed to save snapshot")
	}

	m.logger.Debug("snapshot saved", zap.String("stage", s.Stage), zap.Int("x", s.X), zap.Int("y", s.Y))
	return nil
}

// Clear overwrites the snapshot with an empty one
func (m *SaveManager) Clear() error {
	return m.Save(Snapshot{})
}
