package audio

import (
	"errors"
	"testing"
)

func TestChannelAreaStride(t *testing.T) {
	buf := make([]byte, 4*Channels*BytesPerSample)
	frameBytes := Channels * BytesPerSample
	left := NewChannelArea(buf, 0, frameBytes)
	right := NewChannelArea(buf, BytesPerSample, frameBytes)

	for i := 0; i < 4; i++ {
		left.Set(i, float32(i))
		right.Set(i, -float32(i))
	}
	for i := 0; i < 4; i++ {
		if got := left.Get(i); got != float32(i) {
			t.Errorf("left[%d] = %v, want %v", i, got, float32(i))
		}
		if got := right.Get(i); got != -float32(i) {
			t.Errorf("right[%d] = %v, want %v", i, got, -float32(i))
		}
	}
}

func TestChannelAreaOutOfRangePanics(t *testing.T) {
	buf := make([]byte, 2*BytesPerSample)
	a := NewChannelArea(buf, 0, BytesPerSample)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing past the end of the area")
		}
	}()
	a.Set(2, 1)
}

func TestBufferStreamGrants(t *testing.T) {
	s := NewBufferStream(SampleRate, Channels, 10)
	s.MaxGrant = 4

	var grants []int
	for {
		areas, n, err := s.BeginWrite(100)
		if err != nil {
			t.Fatalf("BeginWrite: %v", err)
		}
		if n == 0 {
			break
		}
		if len(areas) != Channels {
			t.Fatalf("got %d areas, want %d", len(areas), Channels)
		}
		grants = append(grants, n)
		if err := s.EndWrite(); err != nil {
			t.Fatalf("EndWrite: %v", err)
		}
	}

	want := []int{4, 4, 2}
	if len(grants) != len(want) {
		t.Fatalf("grants = %v, want %v", grants, want)
	}
	for i := range want {
		if grants[i] != want[i] {
			t.Fatalf("grants = %v, want %v", grants, want)
		}
	}
	if s.Written() != 10 {
		t.Errorf("Written = %d, want 10", s.Written())
	}
}

func TestBufferStreamEndWithoutBegin(t *testing.T) {
	s := NewBufferStream(SampleRate, 1, 4)
	if err := s.EndWrite(); err == nil {
		t.Fatal("expected error ending a write that never began")
	}
}

func TestFillSilencesUnwrittenFrames(t *testing.T) {
	s := newStream(SampleRate, 1)
	raw := make([]byte, 8*BytesPerSample)
	for i := range raw {
		raw[i] = 0xff
	}
	failed := make(chan error, 1)
	want := errors.New("boom")

	fill(s, raw, func(out OutStream, _, _ int) error {
		areas, n, err := out.BeginWrite(3)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			areas[0].Set(i, 1)
		}
		if err := out.EndWrite(); err != nil {
			return err
		}
		return want
	}, failed)

	for i := 0; i < 3; i++ {
		if got := s.Frame(i, 0); got != 1 {
			t.Errorf("frame %d = %v, want 1", i, got)
		}
	}
	for i := 3; i < 8; i++ {
		if got := s.Frame(i, 0); got != 0 {
			t.Errorf("frame %d = %v, want 0", i, got)
		}
	}
	select {
	case err := <-failed:
		if !errors.Is(err, want) {
			t.Errorf("failed = %v, want %v", err, want)
		}
	default:
		t.Fatal("expected callback error on failed channel")
	}
}

func TestFillDoesNotBlockOnRepeatedErrors(t *testing.T) {
	s := newStream(SampleRate, 1)
	failed := make(chan error, 1)
	cb := func(OutStream, int, int) error { return errors.New("again") }
	for i := 0; i < 3; i++ {
		fill(s, make([]byte, BytesPerSample), cb, failed)
	}
	if len(failed) != 1 {
		t.Errorf("len(failed) = %d, want 1", len(failed))
	}
}

func TestFakeContextNoDevice(t *testing.T) {
	f := NewFakeContext()
	f.Device = nil
	if _, err := f.DefaultOutput(); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("DefaultOutput error = %v, want ErrNoDevice", err)
	}
}

func TestFillDoesNotAllocate(t *testing.T) {
	s := newStream(SampleRate, Channels)
	raw := make([]byte, 256*Channels*BytesPerSample)
	failed := make(chan error, 1)
	cb := func(out OutStream, _, frameCountMax int) error {
		areas, n, err := out.BeginWrite(frameCountMax)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			for c := range areas {
				areas[c].Set(i, 1)
			}
		}
		return out.EndWrite()
	}

	allocs := testing.AllocsPerRun(100, func() {
		fill(s, raw, cb, failed)
	})
	if allocs != 0 {
		t.Errorf("fill allocated %v times per callback, want 0", allocs)
	}
}
