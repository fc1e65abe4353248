//go:build linux

package audio

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("modern_beep"))
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) DefaultOutput() (*DeviceInfo, error) {
	sink, err := p.client.DefaultSink()
	if err != nil {
		return nil, fmt.Errorf("pulse default sink: %w", err)
	}
	if sink == nil {
		return nil, ErrNoDevice
	}
	return &DeviceInfo{ID: sink.ID(), Name: sink.Name()}, nil
}

func (p *pulseContext) NewOutput(device *DeviceInfo, config OutputConfig, cb WriteCallback) (OutputDevice, error) {
	out := &pulseOutput{
		failed: make(chan error, 1),
		buf:    newStream(config.SampleRate, config.Channels),
	}

	reader := pulse.Float32Reader(func(samples []float32) (int, error) {
		if len(samples) == 0 {
			return 0, nil
		}
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*BytesPerSample)
		fill(out.buf, raw, cb, out.failed)
		return len(samples), nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackSampleRate(config.SampleRate),
		pulse.PlaybackLatency(float64(LatencyMs)/1000),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			vols := make(proto.ChannelVolumes, config.Channels)
			for i := range vols {
				vols[i] = uint32(proto.VolumeNorm)
			}
			p.ChannelVolumes = vols
		}),
	}
	switch config.Channels {
	case 1:
		opts = append(opts, pulse.PlaybackMono)
	case 2:
		opts = append(opts, pulse.PlaybackStereo)
	default:
		return nil, fmt.Errorf("pulse: unsupported channel count %d", config.Channels)
	}
	if device != nil {
		sink, err := p.client.SinkByID(device.ID)
		if err == nil && sink != nil {
			opts = append(opts, pulse.PlaybackSink(sink))
		}
	}

	stream, err := p.client.NewPlayback(reader, opts...)
	if err != nil {
		return nil, fmt.Errorf("pulse playback: %w", err)
	}
	out.stream = stream
	return out, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

type pulseOutput struct {
	stream *pulse.PlaybackStream
	buf    *BufferStream
	failed chan error
	once   sync.Once
}

func (o *pulseOutput) Start() error {
	o.stream.Start()
	if err := o.stream.Error(); err != nil {
		return fmt.Errorf("pulse start: %w", err)
	}
	return nil
}

func (o *pulseOutput) Failed() <-chan error { return o.failed }

func (o *pulseOutput) Close() {
	o.once.Do(func() {
		o.stream.Stop()
		o.stream.Close()
	})
}
