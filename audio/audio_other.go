//go:build !linux

package audio

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: %w", err)
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) DefaultOutput() (*DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}
	d := devices[0]
	for _, cand := range devices {
		if cand.IsDefault != 0 {
			d = cand
			break
		}
	}
	return &DeviceInfo{
		ID:   hex.EncodeToString(d.ID[:]),
		Name: d.Name(),
	}, nil
}

func (m *malgoContext) NewOutput(device *DeviceInfo, config OutputConfig, cb WriteCallback) (OutputDevice, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(config.Channels)
	deviceConfig.SampleRate = uint32(config.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = LatencyMs

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Playback.DeviceID = devID.Pointer()
	}

	out := &malgoOutput{
		failed: make(chan error, 1),
		buf:    newStream(config.SampleRate, config.Channels),
	}
	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, _ uint32) {
			fill(out.buf, pOutput, cb, out.failed)
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("malgo device: %w", err)
	}
	out.device = dev
	return out, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoOutput struct {
	device *malgo.Device
	buf    *BufferStream
	failed chan error
	once   sync.Once
}

func (o *malgoOutput) Start() error {
	return o.device.Start()
}

func (o *malgoOutput) Failed() <-chan error { return o.failed }

func (o *malgoOutput) Close() {
	o.once.Do(func() {
		o.device.Stop()
		o.device.Uninit()
	})
}
