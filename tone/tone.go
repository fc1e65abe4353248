// Package tone holds tone definitions and the command-line grammar that
// produces them.
package tone

import (
	"errors"
	"fmt"
)

const (
	DefaultFreq    = 440
	DefaultLength  = 1000
	DefaultRepeats = 1
	DefaultDelay   = 50

	MaxFreq = 20000
)

// Tone is one frequency/length/repeats/delay block. Length and Delay are in
// milliseconds.
type Tone struct {
	Freq    int
	Length  int
	Repeats int
	Delay   int
}

func Default() Tone {
	return Tone{
		Freq:    DefaultFreq,
		Length:  DefaultLength,
		Repeats: DefaultRepeats,
		Delay:   DefaultDelay,
	}
}

var (
	ErrFreqTooLow    = errors.New("frequency must be higher than 0")
	ErrFreqTooHigh   = fmt.Errorf("frequency must be lesser than %d", MaxFreq)
	ErrLengthTooLow  = errors.New("length must be higher than 0")
	ErrRepeatsTooLow = errors.New("repeat count must be higher than 0")
)

// Validate checks the bounds enforced at parse time. Delay is not checked;
// a negative delay is a no-op sleep.
func (t Tone) Validate() error {
	switch {
	case t.Freq <= 0:
		return ErrFreqTooLow
	case t.Freq >= MaxFreq:
		return ErrFreqTooHigh
	case t.Length <= 0:
		return ErrLengthTooLow
	case t.Repeats <= 0:
		return ErrRepeatsTooLow
	}
	return nil
}

func (t Tone) String() string {
	return fmt.Sprintf("%d %d %d %d", t.Freq, t.Length, t.Repeats, t.Delay)
}

// Duration is the wall-clock time the tone occupies, in milliseconds.
func (t Tone) Duration() int {
	return t.Repeats * (t.Length + max(t.Delay, 0))
}
