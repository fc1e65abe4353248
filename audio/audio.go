package audio

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	SampleRate     = 44100
	Channels       = 2
	BytesPerSample = 4 // native-endian float32

	// LatencyMs is the output buffering requested from the backends. Audio
	// committed within the last LatencyMs may still be queued in the device.
	LatencyMs = 50
)

var ErrNoDevice = errors.New("no output device found")

// ChannelArea is a view over one channel of an output buffer. Frame i of the
// channel lives at buf[i*step:].
type ChannelArea struct {
	buf  []byte
	step int
}

func NewChannelArea(buf []byte, offset, step int) ChannelArea {
	return ChannelArea{buf: buf[offset:], step: step}
}

// Set writes v at the given frame. Out-of-range frames panic.
func (a ChannelArea) Set(frame int, v float32) {
	i := frame * a.step
	binary.NativeEndian.PutUint32(a.buf[i:i+BytesPerSample], math.Float32bits(v))
}

func (a ChannelArea) Get(frame int) float32 {
	i := frame * a.step
	return math.Float32frombits(binary.NativeEndian.Uint32(a.buf[i : i+BytesPerSample]))
}

// OutStream is the write side handed to a WriteCallback.
type OutStream interface {
	SampleRate() int
	Channels() int
	// BeginWrite grants up to frames frames. A zero count means the stream
	// cannot take more right now.
	BeginWrite(frames int) ([]ChannelArea, int, error)
	EndWrite() error
}

// WriteCallback fills out with between frameCountMin and frameCountMax frames.
type WriteCallback func(out OutStream, frameCountMin, frameCountMax int) error

type OutputConfig struct {
	SampleRate int
	Channels   int
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	DefaultOutput() (*DeviceInfo, error)
	NewOutput(device *DeviceInfo, config OutputConfig, cb WriteCallback) (OutputDevice, error)
	Close()
}

type OutputDevice interface {
	Start() error
	// Failed receives the first error reported by the write callback.
	Failed() <-chan error
	Close()
}
