package snowglobe

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hulkholden/snowglobe/common/animation"
	"github.com/hulkholden/snowglobe/common/frame"
	"github.com/hulkholden/snowglobe/common/tint"
	"github.com/hulkholden/snowglobe/common/vmath"
)

// Options are read from the page URL, e.g. ?fps=30&shape=square&tint=random.
type Options struct {
	// FrameRate is the nominal frame rate; time advances 1/FrameRate per frame.
	FrameRate int
	// Duration of a shape transition in seconds.
	Duration float64
	// StartAsCircle selects the resting shape before the first tap.
	StartAsCircle bool
	Tint          vmath.V3
	// KernelURL optionally replaces the built-in background kernel.
	KernelURL string
	// StatsEvery logs driver stats every N frames; 0 disables.
	StatsEvery int
}

func DefaultOptions() Options {
	return Options{
		FrameRate:     frame.DefaultFrameRate,
		Duration:      animation.DefaultDuration,
		StartAsCircle: true,
		Tint:          tint.Default,
		StatsEvery:    10 * frame.DefaultFrameRate,
	}
}

// ParseOptions parses a URL query string, with or without the leading '?'.
// Unset options keep their defaults.
func ParseOptions(query string) (Options, error) {
	opts := DefaultOptions()
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return opts, fmt.Errorf("parsing query %q: %v", query, err)
	}

	if v := values.Get("fps"); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps <= 0 {
			return opts, fmt.Errorf("fps %q: want a positive integer", v)
		}
		opts.FrameRate = fps
		opts.StatsEvery = 10 * fps
	}
	if v := values.Get("duration"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || !(d > 0) {
			return opts, fmt.Errorf("duration %q: want a positive number of seconds", v)
		}
		opts.Duration = d
	}
	switch v := strings.ToLower(values.Get("shape")); v {
	case "", "circle":
		opts.StartAsCircle = true
	case "square":
		opts.StartAsCircle = false
	default:
		return opts, fmt.Errorf("shape %q: want circle or square", v)
	}
	if values.Has("tint") {
		c, err := tint.Parse(values.Get("tint"))
		if err != nil {
			return opts, err
		}
		opts.Tint = c
	}
	if v := values.Get("stats"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("stats %q: want a frame count", v)
		}
		opts.StatsEvery = n
	}
	opts.KernelURL = values.Get("kernel")
	return opts, nil
}
