package replay

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/younwookim/gridsync/internal/application/system"
	"github.com/younwookim/gridsync/internal/domain/entity"
)

// Replayer handles input playback from recorded data.
// It implements system.InputSource.
type Replayer struct {
	data  ReplayData
	frame int
}

// NewReplayer creates a new replayer from replay data
func NewReplayer(data ReplayData) *Replayer {
	return &Replayer{
		data:  data,
		frame: 0,
	}
}

// LoadReplay loads replay data from a file
func LoadReplay(filename string) (*ReplayData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()

	var data ReplayData
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, eris.Wrap(err, "failed to decode replay")
	}

	return &data, nil
}

// Next returns the recorded input for the current tick and advances
func (r *Replayer) Next() (FrameInput, bool) {
	if r.frame >= len(r.data.Frames) {
		return FrameInput{}, false
	}
	fi := r.data.Frames[r.frame]
	r.frame++
	return fi, true
}

// Poll implements system.InputSource. Past the end it reports no input.
func (r *Replayer) Poll(_ time.Duration) system.InputState {
	fi, ok := r.Next()
	if !ok {
		return system.InputState{}
	}
	return ToInputState(fi)
}

// TickOf returns the tick length recorded for a frame
func (r *Replayer) TickOf(fi FrameInput) time.Duration {
	if fi.DT > 0 {
		return time.Duration(fi.DT)
	}
	return r.data.Tick()
}

// NextTick returns the tick length of the frame Poll returns next
func (r *Replayer) NextTick() time.Duration {
	if r.frame >= len(r.data.Frames) {
		return r.data.Tick()
	}
	return r.TickOf(r.data.Frames[r.frame])
}

// ToInputState converts a recorded frame to pipeline input
func ToInputState(fi FrameInput) system.InputState {
	dir := entity.Direction(fi.D)
	if dir > entity.DirEast {
		dir = entity.DirNone
	}
	return system.InputState{
		Direction: dir,
		Interact:  fi.I,
		Menu:      fi.M,
	}
}

// Done reports whether every frame was played
func (r *Replayer) Done() bool {
	return r.frame >= len(r.data.Frames)
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return len(r.data.Frames)
}

// Seed returns the seed used for the replay
func (r *Replayer) Seed() int64 {
	return r.data.Seed
}

// Stage returns the stage the recording started on
func (r *Replayer) Stage() string {
	return r.data.Stage
}

// Reset resets the replayer to the beginning
func (r *Replayer) Reset() {
	r.frame = 0
}

// CreateTestReplayData creates replay data holding one direction
func CreateTestReplayData(frames int, dir entity.Direction) ReplayData {
	data := ReplayData{
		Version:   FormatVersion,
		Seed:      12345,
		Stage:     "test",
		StartTime: time.Now().Format(time.RFC3339),
		TickNanos: int64(DefaultTick),
		Frames:    make([]FrameInput, frames),
	}

	for i := 0; i < frames; i++ {
		data.Frames[i] = FrameInput{
			F: i,
			D: uint8(dir),
		}
	}

	return data
}
