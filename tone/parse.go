package tone

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrHelp    = errors.New("help requested")
	ErrVersion = errors.New("version requested")
	ErrUsage   = errors.New("invalid usage")
)

// Config is the parsed command line.
type Config struct {
	Tones   []Tone
	Output  string // FLAC path; empty plays through the default device
	LogPath string
}

// UsageError marks an argument the grammar does not accept.
type UsageError struct {
	Arg    string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Arg, e.Reason)
}

func (e *UsageError) Unwrap() error { return ErrUsage }

// Parse reads tone blocks from args (without the program name). Help and
// version flags win over everything else regardless of position.
func Parse(args []string) (Config, error) {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return Config{}, ErrHelp
		}
	}
	for _, arg := range args {
		if arg == "-v" || arg == "-V" || arg == "--version" {
			return Config{}, ErrVersion
		}
	}

	cfg := Config{Tones: []Tone{Default()}}
	cur := &cfg.Tones[0]

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-n", "--new":
			cfg.Tones = append(cfg.Tones, Default())
			cur = &cfg.Tones[len(cfg.Tones)-1]
			continue
		case "-o", "--output", "--logpath":
			if i+1 >= len(args) {
				return Config{}, &UsageError{Arg: arg, Reason: "missing value"}
			}
			if arg == "--logpath" {
				cfg.LogPath = args[i+1]
			} else {
				cfg.Output = args[i+1]
			}
			i++
			continue
		}

		if len(arg) != 2 || arg[0] != '-' {
			return Config{}, &UsageError{Arg: arg, Reason: "unknown argument"}
		}
		if i+1 >= len(args) {
			return Config{}, &UsageError{Arg: arg, Reason: "missing value"}
		}
		value, err := parseNumber(args[i+1])
		if err != nil {
			return Config{}, &UsageError{Arg: arg, Reason: fmt.Sprintf("%q %v", args[i+1], err)}
		}

		switch arg[1] {
		case 'f':
			cur.Freq = value
		case 'l':
			cur.Length = value
		case 'r':
			cur.Repeats = value
		case 'd', 'D':
			cur.Delay = value
		default:
			return Config{}, &UsageError{Arg: arg, Reason: "unknown flag"}
		}
		if err := cur.Validate(); err != nil {
			return Config{}, err
		}
		i++
	}

	return cfg, nil
}

var (
	errNotNumber  = errors.New("is not a number")
	errOutOfRange = errors.New("is out of range")
)

// MaxValue bounds every numeric option, keeping millisecond durations well
// inside time.Duration and frame counts inside int64.
const MaxValue = math.MaxInt32

// parseNumber accepts digits and dots only. The integer prefix is used, so
// "12.9" is 12 and "." is 0.
func parseNumber(s string) (int, error) {
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return 0, errNotNumber
		}
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		// digits only, so the only failure is overflow
		return 0, errOutOfRange
	}
	return int(n), nil
}
