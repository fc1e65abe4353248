// Package playback drives tone sequences into an audio output stream.
//
// The sequencer and the write callback run on different goroutines and share
// a State. The sequencer owns frequency and mute; the callback reads them and
// owns the phase offset. Brief staleness is tolerated, so no lock is taken.
package playback

import (
	"math"
	"sync/atomic"
)

type State struct {
	freq  atomic.Uint64 // math.Float64bits
	muted atomic.Bool
	// written and read only by the write callback
	phase float64
}

// NewState returns a muted state at freq Hz.
func NewState(freq float64) *State {
	s := &State{}
	s.SetFreq(freq)
	s.muted.Store(true)
	return s
}

func (s *State) SetFreq(freq float64) { s.freq.Store(math.Float64bits(freq)) }
func (s *State) Freq() float64        { return math.Float64frombits(s.freq.Load()) }
func (s *State) SetMuted(m bool)      { s.muted.Store(m) }
func (s *State) Muted() bool          { return s.muted.Load() }

// Phase is the offset in seconds within the current one-second window, [0,1).
func (s *State) Phase() float64 { return s.phase }
