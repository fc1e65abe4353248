// Package encoder writes rendered PCM to audio files.
package encoder

const (
	BitsPerSample = 16
	BlockSize     = 4096 // frames per FLAC frame
)

type Encoder interface {
	// EncodeBlock takes interleaved samples, at most BlockSize frames.
	EncodeBlock(block []int16) error
	Close() error
	TotalFrames() uint64
}

// Quantize maps a [-1,1] float sample to int16.
func Quantize(v float32) int16 {
	switch {
	case v >= 1:
		return 32767
	case v <= -1:
		return -32767
	}
	return int16(v * 32767)
}
