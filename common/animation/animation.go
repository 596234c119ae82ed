// Package animation implements the touch-driven circle/square morph.
//
// A Controller is either settled on its current shape or transitioning
// towards it. Query returns the progress of the most recent transition as an
// interpolation factor in [0,1]; 1 means settled.
package animation

import (
	"errors"
	"fmt"
	"math"

	"github.com/hulkholden/snowglobe/common/math32"
)

// DefaultDuration is the length of one transition, in seconds.
const DefaultDuration = 1.0

// ErrInvalidDuration is returned for non-positive transition durations.
var ErrInvalidDuration = errors.New("invalid transition duration")

// NeverStarted is the transition start time before any toggle.
var NeverStarted = math.Inf(-1)

// Lerper is implemented by values that can be interpolated, e.g. vmath.V3.
type Lerper[T any] interface {
	Lerp(to T, f float32) T
}

// Lerp interpolates from a to b by k.
func Lerp[T Lerper[T]](a, b T, k float32) T {
	return a.Lerp(b, k)
}

type Config struct {
	// Duration of a transition in seconds.
	Duration float64
	// StartAsCircle is the resting shape before the first toggle.
	StartAsCircle bool
}

func DefaultConfig() Config {
	return Config{Duration: DefaultDuration, StartAsCircle: true}
}

// State is the mutable part of a Controller.
type State struct {
	CircleShape     bool
	TransitionStart float64
}

type Controller struct {
	duration float64
	state    State
}

func New(cfg Config) (*Controller, error) {
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return nil, fmt.Errorf("duration %v: %w", cfg.Duration, ErrInvalidDuration)
	}
	return &Controller{
		duration: cfg.Duration,
		state: State{
			CircleShape:     cfg.StartAsCircle,
			TransitionStart: NeverStarted,
		},
	}, nil
}

// Toggle flips the shape and restarts the transition at now, discarding any
// transition still in progress.
func (c *Controller) Toggle(now float64) {
	c.state.CircleShape = !c.state.CircleShape
	c.state.TransitionStart = now
}

// Progress returns clamp((now-start)/duration, 0, 1).
func (c *Controller) Progress(now float64) float32 {
	elapsed := now - c.state.TransitionStart
	return math32.Saturate(float32(elapsed / c.duration))
}

// Query returns the interpolation factor at now. It does not modify c.
func (c *Controller) Query(now float64) float32 {
	return math32.Lerp(0, 1, c.Progress(now))
}

// Transitioning reports whether a transition is in progress at now.
func (c *Controller) Transitioning(now float64) bool {
	return now-c.state.TransitionStart < c.duration
}

// IsCircle reports the shape the controller rests on, or is heading to.
func (c *Controller) IsCircle() bool { return c.state.CircleShape }

func (c *Controller) Duration() float64 { return c.duration }

func (c *Controller) State() State { return c.state }
