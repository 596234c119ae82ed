// Package frame composes the uniform state, dispatch planner and animation
// controller into a per-frame tick.
package frame

import (
	"errors"
	"fmt"
	"log"

	"github.com/hulkholden/snowglobe/common/animation"
	"github.com/hulkholden/snowglobe/common/dispatch"
	"github.com/hulkholden/snowglobe/common/kernel"
	"github.com/hulkholden/snowglobe/common/uniforms"
	"github.com/hulkholden/snowglobe/common/vmath"
)

const (
	DefaultFrameRate = 60

	// toggleQueueSize bounds the toggles accepted between two frames.
	toggleQueueSize = 32
)

var (
	ErrInvalidFrameRate = errors.New("invalid frame rate")
	ErrMissingComponent = errors.New("missing component")
)

// Surface is a presentable render target.
type Surface interface {
	// Size returns the extent in pixels.
	Size() (width, height int)
}

// SurfaceProvider yields the target for the current frame.
type SurfaceProvider interface {
	Surface() (Surface, error)
}

// Encoder schedules GPU work. Neither method waits for the GPU.
type Encoder interface {
	Encode(k kernel.Kernel, uniforms []byte, target Surface, plan dispatch.Plan) error
	Present(target Surface) error
}

type Config struct {
	// TargetFrameRate fixes the time step to 1/TargetFrameRate seconds.
	TargetFrameRate int
	Tint            vmath.V3

	// Logger defaults to log.Default().
	Logger *log.Logger
	// StatsEvery logs a stats line every N frames. Zero disables it.
	StatsEvery int
}

type Stats struct {
	Frames  int
	Toggles int
	Time    float64
	Mode    dispatch.Mode
}

// Driver owns the uniform state for one surface. Tick, Resize and SetTint
// must be called from one goroutine; RequestToggle is safe from any.
type Driver struct {
	logger     *log.Logger
	step       float32
	statsEvery int

	kernel   kernel.Kernel
	state    *uniforms.State
	planner  *dispatch.Planner
	anim     *animation.Controller
	surfaces SurfaceProvider
	encoder  Encoder

	toggles chan struct{}

	width, height int
	stats         Stats
}

func New(cfg Config, k kernel.Kernel, planner *dispatch.Planner, anim *animation.Controller, surfaces SurfaceProvider, encoder Encoder) (*Driver, error) {
	if cfg.TargetFrameRate <= 0 {
		return nil, fmt.Errorf("frame rate %d: %w", cfg.TargetFrameRate, ErrInvalidFrameRate)
	}
	switch {
	case planner == nil:
		return nil, fmt.Errorf("planner: %w", ErrMissingComponent)
	case anim == nil:
		return nil, fmt.Errorf("animation controller: %w", ErrMissingComponent)
	case surfaces == nil:
		return nil, fmt.Errorf("surface provider: %w", ErrMissingComponent)
	case encoder == nil:
		return nil, fmt.Errorf("encoder: %w", ErrMissingComponent)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		logger:     logger,
		step:       1 / float32(cfg.TargetFrameRate),
		statsEvery: cfg.StatsEvery,
		kernel:     k,
		state:      uniforms.New(cfg.Tint),
		planner:    planner,
		anim:       anim,
		surfaces:   surfaces,
		encoder:    encoder,
		toggles:    make(chan struct{}, toggleQueueSize),
		stats:      Stats{Mode: planner.Mode()},
	}, nil
}

// RequestToggle queues a shape toggle for the next Tick.
func (d *Driver) RequestToggle() {
	select {
	case d.toggles <- struct{}{}:
	default:
		d.logger.Printf("toggle queue full, dropping toggle")
	}
}

// Resize handles a surface resize event.
func (d *Driver) Resize(width, height int) error {
	if err := d.state.Resize(width, height); err != nil {
		return err
	}
	d.width, d.height = width, height
	return nil
}

// SetTint replaces the tint uploaded with subsequent frames.
func (d *Driver) SetTint(c vmath.V3) {
	d.state.SetTint(c)
}

// Tick builds and submits one frame. If the surface cannot be planned the
// frame is abandoned before time, toggles or shape are touched.
func (d *Driver) Tick() error {
	target, err := d.surfaces.Surface()
	if err != nil {
		return fmt.Errorf("acquiring surface: %w", err)
	}
	width, height := target.Size()
	plan, err := d.planner.Plan(width, height)
	if err != nil {
		return err
	}
	if width != d.width || height != d.height {
		if err := d.Resize(width, height); err != nil {
			return err
		}
	}

	d.drainToggles()
	if err := d.state.Advance(d.step); err != nil {
		return err
	}
	now := d.state.Time()
	d.state.SetShape(d.anim.IsCircle(), d.anim.Query(now))

	if err := d.encoder.Encode(d.kernel, d.state.Value().Bytes(), target, plan); err != nil {
		return fmt.Errorf("encoding %q: %w", d.kernel.Name, err)
	}
	if err := d.encoder.Present(target); err != nil {
		return fmt.Errorf("presenting: %w", err)
	}

	d.stats.Frames++
	d.stats.Time = d.state.Time()
	if d.statsEvery > 0 && d.stats.Frames%d.statsEvery == 0 {
		d.logger.Printf("frame %d: time %.2fs, %d toggles, %dx%d via %v (%dx%d groups)",
			d.stats.Frames, d.stats.Time, d.stats.Toggles, width, height, plan.Mode, plan.GroupsX, plan.GroupsY)
	}
	return nil
}

func (d *Driver) drainToggles() {
	for {
		select {
		case <-d.toggles:
			d.anim.Toggle(d.state.Time())
			d.stats.Toggles++
		default:
			return
		}
	}
}

// Uniforms returns a copy of the values uploaded by the last Tick.
func (d *Driver) Uniforms() uniforms.Uniforms {
	return d.state.Value()
}

func (d *Driver) Stats() Stats {
	return d.stats
}
