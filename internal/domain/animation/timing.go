// Package animation holds the frame types and the timing algorithm shared by
// sprite and tile playback.
//
// Time is accumulated as a time.Duration and frame durations are subtracted
// from it, never zeroed, so overshoot carries into the next frame. Integer
// nanoseconds keep the result identical no matter how the elapsed time was
// split across ticks.
package animation

import (
	"math"
	"time"
)

// Timed is implemented by any frame with a display duration
type Timed interface {
	FrameDuration() time.Duration
}

// Step reports what Advance did during one call
type Step uint8

const (
	StepAdvanced  Step = 1 << iota // the frame index changed
	StepWrapped                    // a looping sequence restarted at frame 0
	StepCompleted                  // a non-looping sequence passed its last frame
)

// Has reports whether all bits of f are set
func (s Step) Has(f Step) bool { return s&f == f }

// Advance adds dt to elapsed and steps frame forward while the accumulated
// time covers the current frame's duration.
//
// A non-looping sequence stops at its last frame and reports StepCompleted;
// callers are expected to stop calling Advance once they have recorded the
// completion. An out-of-range frame index is clamped before use.
func Advance[F Timed](frames []F, frame *int, elapsed *time.Duration, dt time.Duration, loop bool) Step {
	n := len(frames)
	if n == 0 {
		return 0
	}
	*frame = Clamp(*frame, n)
	if dt > 0 {
		*elapsed += dt
	}

	var step Step
	zeroRun := 0
	for {
		d := frames[*frame].FrameDuration()
		if *elapsed < d {
			break
		}
		if d <= 0 {
			// A cycle made only of zero-length frames would spin forever.
			zeroRun++
			if zeroRun > n {
				break
			}
		}
		*elapsed -= d

		next := *frame + 1
		if next >= n {
			if !loop {
				step |= StepCompleted
				break
			}
			next = 0
			step |= StepWrapped
		}
		*frame = next
		step |= StepAdvanced
	}
	return step
}

// Seek returns the frame index and leftover time a looping sequence reaches
// after t has elapsed from frame 0. It matches the result of feeding the
// same total time through Advance.
func Seek[F Timed](frames []F, t time.Duration) (frame int, elapsed time.Duration) {
	total := Total(frames)
	if total <= 0 || t <= 0 {
		return 0, 0
	}
	t %= total
	for i := range frames {
		d := frames[i].FrameDuration()
		if t < d {
			return i, t
		}
		t -= d
	}
	return 0, t
}

// Total returns the length of one full cycle
func Total[F Timed](frames []F) time.Duration {
	var total time.Duration
	for i := range frames {
		if d := frames[i].FrameDuration(); d > 0 {
			total += d
		}
	}
	return total
}

// Clamp keeps a frame index inside [0, n).
func Clamp(frame, n int) int {
	if frame >= n {
		frame = n - 1
	}
	if frame < 0 {
		frame = 0
	}
	return frame
}

// Seconds converts a float second count to a Duration, rounding to the
// nearest nanosecond so 0.3 becomes exactly 300ms.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
