package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"modernbeep/audio"
	"modernbeep/encoder"
	"modernbeep/log"
	"modernbeep/playback"
	"modernbeep/shutdown"
	"modernbeep/tone"
)

var version = "0.1"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, audio.NewContext))
}

func printUsage(w io.Writer) {
	header := "usage:"
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		header = lipgloss.NewRenderer(f).NewStyle().Bold(true).Render(header)
	}
	fmt.Fprintf(w, "%s beep [-f FREQ] [-l LEN] [-r REPEATS] [<-d|-D> DELAY]\n"+
		"beep <TONE_OPTIONS> [-n|--new] <TONE_OPTIONS>\n"+
		"beep <TONE_OPTIONS> [-o|--output FILE.flac] [--logpath DIR]\n"+
		"beep <-h|--help>\n"+
		"beep <-v|-V|--version>\n", header)
}

// run returns the process exit code. newContext is only called once the
// arguments are known to be valid and playback goes to a device.
func run(args []string, stdout, stderr io.Writer, newContext func() (audio.Context, error)) int {
	cfg, err := tone.Parse(args)
	switch {
	case errors.Is(err, tone.ErrHelp):
		printUsage(stderr)
		return 1
	case errors.Is(err, tone.ErrVersion):
		fmt.Fprintf(stderr, "modern_beep %s\n", version)
		return 1
	case errors.Is(err, tone.ErrUsage):
		fmt.Fprintf(stderr, "beep: %v\n", err)
		printUsage(stderr)
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "beep: %v\n", err)
		return 1
	}

	logPath, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to resolve log directory: %v\n", err)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	mode := "live"
	if cfg.Output != "" {
		mode = "render"
	}
	total := 0
	for _, t := range cfg.Tones {
		total += t.Duration()
	}
	log.SessionStart(mode, len(cfg.Tones), total)
	for _, t := range cfg.Tones {
		log.Tone(t.Freq, t.Length, t.Repeats, t.Delay)
	}

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	if cfg.Output != "" {
		err = renderFile(ctx, cfg, stdout)
	} else {
		err = playLive(ctx, cfg, stdout, newContext)
	}

	switch {
	case err == nil:
		log.SessionEnd("ok", 0)
		return 0
	case errors.Is(err, context.Canceled):
		log.SessionEnd("interrupted", shutdown.ExitCode)
		return shutdown.ExitCode
	default:
		log.Errorf("%v", err)
		log.SessionEnd("error", 1)
		fmt.Fprintln(stderr, err)
		return 1
	}
}

func playLive(ctx context.Context, cfg tone.Config, stdout io.Writer, newContext func() (audio.Context, error)) error {
	actx, err := newContext()
	if err != nil {
		return fmt.Errorf("audio: error connecting: %w", err)
	}
	defer actx.Close()

	device, err := actx.DefaultOutput()
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}

	state := playback.NewState(float64(cfg.Tones[0].Freq))
	waveform := playback.NewWaveform(state)
	outConfig := audio.OutputConfig{SampleRate: audio.SampleRate, Channels: audio.Channels}

	out, err := actx.NewOutput(device, outConfig, waveform.Write)
	if err != nil {
		return fmt.Errorf("audio: unable to open device: %w", err)
	}
	defer out.Close()

	if err := out.Start(); err != nil {
		return fmt.Errorf("audio: unable to start device: %w", err)
	}
	log.Device(device.Name, outConfig.SampleRate, outConfig.Channels)

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		if err := playback.NewSequencer(state, playback.WallClock{}, stdout).Play(gctx, cfg.Tones); err != nil {
			return err
		}
		return drain(gctx, cfg.Tones)
	})
	g.Go(func() error {
		select {
		case err := <-out.Failed():
			return fmt.Errorf("audio: stream failed: %w", err)
		case <-done:
			return nil
		}
	})
	return g.Wait()
}

// drain waits for the device to play out the tail of the last tone before the
// stream is torn down. A trailing delay of at least LatencyMs already covers it.
func drain(ctx context.Context, tones []tone.Tone) error {
	last := tones[len(tones)-1]
	return playback.WallClock{}.Sleep(ctx, audio.LatencyMs-max(last.Delay, 0))
}

func renderFile(ctx context.Context, cfg tone.Config, stdout io.Writer) (err error) {
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	// the encoder closes f itself on success
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			err = fmt.Errorf("render: %w", cerr)
		}
		if err != nil {
			os.Remove(cfg.Output)
		}
	}()

	enc, err := encoder.NewFlac(f, audio.SampleRate, audio.Channels)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	state := playback.NewState(float64(cfg.Tones[0].Freq))
	r := playback.NewRenderer(playback.NewWaveform(state), enc, audio.SampleRate, audio.Channels)
	if err := playback.NewSequencer(state, r, stdout).Play(ctx, cfg.Tones); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	log.Info(fmt.Sprintf("rendered %d frames to %s", enc.TotalFrames(), cfg.Output))
	return nil
}
