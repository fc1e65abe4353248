package audio

import (
	"sync"
	"time"
)

const fakePeriodFrames = 441 // 10ms at 44100 Hz

// FakeContext drives write callbacks from a ticker instead of a sound card.
type FakeContext struct {
	Device     *DeviceInfo
	DefaultErr error
	OpenErr    error
	StartErr   error
	// WriteErr is returned by EndWrite once the stream has produced
	// FailAfterFrames frames.
	WriteErr        error
	FailAfterFrames int

	mu      sync.Mutex
	outputs []*FakeOutput
	closed  bool
}

func NewFakeContext() *FakeContext {
	return &FakeContext{Device: &DeviceInfo{ID: "fake", Name: "fake output"}}
}

func (f *FakeContext) DefaultOutput() (*DeviceInfo, error) {
	if f.DefaultErr != nil {
		return nil, f.DefaultErr
	}
	if f.Device == nil {
		return nil, ErrNoDevice
	}
	return f.Device, nil
}

func (f *FakeContext) NewOutput(_ *DeviceInfo, config OutputConfig, cb WriteCallback) (OutputDevice, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	out := &FakeOutput{
		cb:       cb,
		config:   config,
		startErr: f.StartErr,
		stream: &failingStream{
			BufferStream: NewBufferStream(config.SampleRate, config.Channels, fakePeriodFrames),
			err:          f.WriteErr,
			after:        f.FailAfterFrames,
		},
		failed: make(chan error, 1),
		stopCh: make(chan struct{}),
	}
	f.mu.Lock()
	f.outputs = append(f.outputs, out)
	f.mu.Unlock()
	return out, nil
}

func (f *FakeContext) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *FakeContext) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeContext) Outputs() []*FakeOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeOutput(nil), f.outputs...)
}

type FakeOutput struct {
	cb       WriteCallback
	config   OutputConfig
	startErr error
	stream   *failingStream
	failed   chan error

	mu       sync.Mutex
	started  bool
	closed   bool
	frames   int
	loud     int
	stopCh   chan struct{}
	feedDone chan struct{}
}

func (o *FakeOutput) Start() error {
	if o.startErr != nil {
		return o.startErr
	}
	o.mu.Lock()
	o.started = true
	o.feedDone = make(chan struct{})
	o.mu.Unlock()

	interval := time.Duration(fakePeriodFrames) * time.Second / time.Duration(o.config.SampleRate)
	go func() {
		defer close(o.feedDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		raw := make([]byte, len(o.stream.Bytes()))
		for {
			select {
			case <-o.stopCh:
				return
			case <-ticker.C:
			}
			fill(o.stream.BufferStream, raw, o.stream.wrap(o.cb), o.failed)
			o.count()
		}
	}()
	return nil
}

func (o *FakeOutput) count() {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.stream.BufferStream
	for i := 0; i < s.frames; i++ {
		if s.Frame(i, 0) != 0 {
			o.loud++
		}
	}
	o.frames += s.frames
}

func (o *FakeOutput) Failed() <-chan error { return o.failed }

func (o *FakeOutput) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	started := o.started
	o.mu.Unlock()
	close(o.stopCh)
	if started {
		<-o.feedDone
	}
}

func (o *FakeOutput) Started() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}

func (o *FakeOutput) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Frames reports how many frames were pulled and how many of them were
// non-silent on the first channel.
func (o *FakeOutput) Frames() (total, loud int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frames, o.loud
}

type failingStream struct {
	*BufferStream
	err   error
	after int
	total int
}

func (s *failingStream) EndWrite() error {
	n := s.pending
	if err := s.BufferStream.EndWrite(); err != nil {
		return err
	}
	s.total += n
	if s.err != nil && s.total >= s.after {
		return s.err
	}
	return nil
}

// wrap hands cb the failing view so injected errors surface through EndWrite.
func (s *failingStream) wrap(cb WriteCallback) WriteCallback {
	return func(_ OutStream, frameCountMin, frameCountMax int) error {
		return cb(s, frameCountMin, frameCountMax)
	}
}
