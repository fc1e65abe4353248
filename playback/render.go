package playback

import (
	"context"
	"fmt"

	"modernbeep/audio"
	"modernbeep/encoder"
)

// Renderer is a Sleeper that, instead of waiting, renders the waveform for
// the requested time into an encoder. Sequencer plus Renderer produce the
// same signal a live stream would, without a sound card.
type Renderer struct {
	waveform *Waveform
	enc      encoder.Encoder
	stream   *audio.BufferStream
	raw      []byte
	pcm      []int16
	// carry holds the fractional frame left over between sleeps, in
	// frame-milliseconds.
	carry int64
}

func NewRenderer(waveform *Waveform, enc encoder.Encoder, sampleRate, channels int) *Renderer {
	stream := audio.NewBufferStream(sampleRate, channels, encoder.BlockSize)
	return &Renderer{
		waveform: waveform,
		enc:      enc,
		stream:   stream,
		raw:      stream.Bytes(),
		pcm:      make([]int16, encoder.BlockSize*channels),
	}
}

func (r *Renderer) Sleep(ctx context.Context, ms int) error {
	if ms <= 0 {
		return ctx.Err()
	}
	total := int64(ms)*int64(r.stream.SampleRate()) + r.carry
	frames := total / 1000
	r.carry = total % 1000

	for frames > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := int(min(frames, encoder.BlockSize))
		if err := r.renderBlock(n); err != nil {
			return err
		}
		frames -= int64(n)
	}
	return nil
}

func (r *Renderer) renderBlock(frames int) error {
	channels := r.stream.Channels()
	r.stream.Reset(r.raw[:frames*channels*audio.BytesPerSample])
	if err := r.waveform.Write(r.stream, frames, frames); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if r.stream.Written() != frames {
		return fmt.Errorf("render: wrote %d of %d frames", r.stream.Written(), frames)
	}
	pcm := r.pcm[:frames*channels]
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			pcm[i*channels+c] = encoder.Quantize(r.stream.Frame(i, c))
		}
	}
	return r.enc.EncodeBlock(pcm)
}
