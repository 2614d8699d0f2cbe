package playing

import (
	"fmt"
	"time"

	"github.com/younwookim/gridsync/internal/application/replay"
	"github.com/younwookim/gridsync/internal/application/system"
)

// Recorder captures the resolved input of every tick so a session can be
// replayed headless. Stopping it keeps the frames taken so far.
type Recorder struct {
	data    replay.ReplayData
	stopped bool
}

// NewRecorder starts a recording. tick is the expected tick length; frames
// that run with a different dt store their own.
func NewRecorder(seed int64, stage string, tick time.Duration) *Recorder {
	return &Recorder{
		data: replay.ReplayData{
			Version:   replay.FormatVersion,
			Seed:      seed,
			Stage:     stage,
			StartTime: time.Now().Format(time.RFC3339),
			TickNanos: int64(tick),
			Frames:    make([]replay.FrameInput, 0, 3600), // ~1 minute at 60 TPS
		},
	}
}

// RecordFrame appends one tick
func (r *Recorder) RecordFrame(input system.InputState, dt time.Duration) {
	if r.stopped {
		return
	}

	fi := replay.FrameInput{
		F: len(r.data.Frames),
		D: uint8(input.Direction),
		I: input.Interact,
		M: input.Menu,
	}
	if dt != r.data.Tick() {
		fi.DT = int64(dt)
	}
	r.data.Frames = append(r.data.Frames, fi)
}

// Save writes the recording to filename
func (r *Recorder) Save(filename string) error {
	return r.data.WriteFile(filename)
}

func (r *Recorder) Stop()             { r.stopped = true }
func (r *Recorder) IsRecording() bool { return !r.stopped }
func (r *Recorder) FrameCount() int   { return len(r.data.Frames) }

// GetData returns the recording so far
func (r *Recorder) GetData() replay.ReplayData {
	return r.data
}

// GenerateFilename names a recording after the current time
func GenerateFilename() string {
	return fmt.Sprintf("replay_%s.json", time.Now().Format("20060102_150405"))
}
