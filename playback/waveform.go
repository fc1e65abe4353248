package playback

import (
	"math"

	"modernbeep/audio"
)

// Waveform renders a square wave from a State. Write is an
// audio.WriteCallback.
type Waveform struct {
	state *State
}

func NewWaveform(state *State) *Waveform {
	return &Waveform{state: state}
}

// Write fills up to frameCountMax frames, in as many begin/end rounds as the
// stream needs. It returns early without error when the stream grants no
// frames.
func (w *Waveform) Write(out audio.OutStream, _, frameCountMax int) error {
	secondsPerFrame := 1 / float64(out.SampleRate())
	channels := out.Channels()
	framesLeft := frameCountMax

	for framesLeft > 0 {
		areas, frameCount, err := out.BeginWrite(framesLeft)
		if err != nil {
			return err
		}
		if frameCount == 0 {
			break
		}

		radiansPerSecond := w.state.Freq() * 2 * math.Pi
		muted := w.state.Muted()
		for frame := 0; frame < frameCount; frame++ {
			var sample float32
			if !muted {
				sample = square(math.Sin((w.state.phase + float64(frame)*secondsPerFrame) * radiansPerSecond))
			}
			for c := 0; c < channels; c++ {
				areas[c].Set(frame, sample)
			}
		}

		w.state.phase = advance(w.state.phase, frameCount, secondsPerFrame)

		if err := out.EndWrite(); err != nil {
			return err
		}
		framesLeft -= frameCount
	}
	return nil
}

func square(x float64) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func advance(phase float64, frames int, secondsPerFrame float64) float64 {
	return math.Mod(phase+secondsPerFrame*float64(frames), 1.0)
}
