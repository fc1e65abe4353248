package audio

import "fmt"

// BufferStream is an OutStream over an interleaved float32 buffer. Backends
// wrap the buffer they are handed per callback; the renderer and tests
// allocate their own.
type BufferStream struct {
	buf        []byte
	sampleRate int
	channels   int
	frames     int
	pos        int
	pending    int
	areas      []ChannelArea
	// MaxGrant caps frames granted per BeginWrite. Zero means no cap.
	MaxGrant int
}

func NewBufferStream(sampleRate, channels, frames int) *BufferStream {
	s := newStream(sampleRate, channels)
	s.Reset(make([]byte, frames*channels*BytesPerSample))
	return s
}

// newStream returns a stream with no buffer attached yet. Backends Reset it
// onto the buffer handed to each callback.
func newStream(sampleRate, channels int) *BufferStream {
	return &BufferStream{
		sampleRate: sampleRate,
		channels:   channels,
		areas:      make([]ChannelArea, channels),
	}
}

// Reset points the stream at buf and rewinds it.
func (s *BufferStream) Reset(buf []byte) {
	s.buf = buf
	s.frames = len(buf) / (s.channels * BytesPerSample)
	s.pos = 0
	s.pending = 0
}

func (s *BufferStream) SampleRate() int { return s.sampleRate }
func (s *BufferStream) Channels() int   { return s.channels }
func (s *BufferStream) Written() int    { return s.pos }
func (s *BufferStream) Bytes() []byte   { return s.buf }

func (s *BufferStream) BeginWrite(frames int) ([]ChannelArea, int, error) {
	if s.pending != 0 {
		return nil, 0, fmt.Errorf("begin write: previous write not ended")
	}
	n := min(frames, s.frames-s.pos)
	if s.MaxGrant > 0 {
		n = min(n, s.MaxGrant)
	}
	if n <= 0 {
		return nil, 0, nil
	}
	frameBytes := s.channels * BytesPerSample
	region := s.buf[s.pos*frameBytes : (s.pos+n)*frameBytes]
	// the areas slice is reused so the callback path never allocates
	for c := range s.areas {
		s.areas[c] = NewChannelArea(region, c*BytesPerSample, frameBytes)
	}
	s.pending = n
	return s.areas, n, nil
}

func (s *BufferStream) EndWrite() error {
	if s.pending == 0 {
		return fmt.Errorf("end write: no write in progress")
	}
	s.pos += s.pending
	s.pending = 0
	return nil
}

// ZeroRemaining clears every frame after the write position.
func (s *BufferStream) ZeroRemaining() {
	clear(s.buf[s.pos*s.channels*BytesPerSample:])
}

// Frame returns the sample written to channel c at frame i.
func (s *BufferStream) Frame(i, c int) float32 {
	frameBytes := s.channels * BytesPerSample
	return NewChannelArea(s.buf, c*BytesPerSample, frameBytes).Get(i)
}

// fill runs cb over buf and reports the first callback error on failed.
// Frames the callback leaves unwritten are silenced.
func fill(s *BufferStream, buf []byte, cb WriteCallback, failed chan<- error) {
	s.Reset(buf)
	if err := cb(s, s.frames, s.frames); err != nil {
		select {
		case failed <- err:
		default:
		}
	}
	s.ZeroRemaining()
}
