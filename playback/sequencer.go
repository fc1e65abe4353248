package playback

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"modernbeep/tone"
)

// Sleeper blocks for a number of milliseconds. Non-positive durations are
// no-ops.
type Sleeper interface {
	Sleep(ctx context.Context, ms int) error
}

// WallClock sleeps in real time. A cancelled context cuts the sleep short;
// the remainder is not retried.
type WallClock struct{}

// maxSleepMs is the longest sleep a time.Duration can hold; longer requests
// saturate to it rather than wrapping negative.
const maxSleepMs = math.MaxInt64 / int64(time.Millisecond)

func (WallClock) Sleep(ctx context.Context, ms int) error {
	if ms <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(min(int64(ms), maxSleepMs)) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Sequencer struct {
	state   *State
	sleeper Sleeper
	status  io.Writer
}

// NewSequencer plays tones against state, pacing with sleeper. When status is
// non-nil a "FREQ LEN REPEATS DELAY" line is written to it before each tone.
func NewSequencer(state *State, sleeper Sleeper, status io.Writer) *Sequencer {
	return &Sequencer{state: state, sleeper: sleeper, status: status}
}

// Play runs every tone in order. On cancellation the state is left muted and
// ctx.Err() is returned.
func (s *Sequencer) Play(ctx context.Context, tones []tone.Tone) error {
	defer s.state.SetMuted(true)

	for _, t := range tones {
		if s.status != nil {
			fmt.Fprintln(s.status, t)
		}
		s.state.SetFreq(float64(t.Freq))

		for i := 0; i < t.Repeats; i++ {
			s.state.SetMuted(false)
			if err := s.sleeper.Sleep(ctx, t.Length); err != nil {
				return err
			}
			s.state.SetMuted(true)
			if err := s.sleeper.Sleep(ctx, t.Delay); err != nil {
				return err
			}
		}
	}
	return nil
}
