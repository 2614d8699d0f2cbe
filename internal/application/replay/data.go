package replay

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
)

// FormatVersion is written to every new recording
const FormatVersion = "2.0"

// DefaultTick is the tick length used when a recording does not set one
const DefaultTick = time.Second / 60

// FrameInput records resolved input for a single tick
type FrameInput struct {
	F  int   `json:"f"`            // Tick number
	D  uint8 `json:"d,omitempty"`  // Direction (entity.Direction)
	I  bool  `json:"i,omitempty"`  // Interact
	M  bool  `json:"m,omitempty"`  // Menu
	DT int64 `json:"dt,omitempty"` // Tick length in ns; 0 = ReplayData.TickNanos
}

// ReplayData contains all data needed to replay a game session
type ReplayData struct {
	Version   string       `json:"version"`
	Seed      int64        `json:"seed"`
	Stage     string       `json:"stage"`
	StartTime string       `json:"startTime"`
	TickNanos int64        `json:"tickNanos"`
	Frames    []FrameInput `json:"frames"`
}

// Tick returns the recording's default tick length
func (d *ReplayData) Tick() time.Duration {
	if d.TickNanos <= 0 {
		return DefaultTick
	}
	return time.Duration(d.TickNanos)
}

// WriteFile writes the recording as indented JSON
func (d *ReplayData) WriteFile(filename string) error {
	if len(d.Frames) == 0 {
		return eris.New("no frames to save")
	}

	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode replay")
	}
	if err := os.WriteFile(filename, raw, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write %s", filename)
	}
	return nil
}
