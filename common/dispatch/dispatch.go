// Package dispatch turns a surface extent and a kernel's reported execution
// shape into a compute launch that covers every pixel.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/hulkholden/snowglobe/common/math32"
	"github.com/hulkholden/snowglobe/common/uniforms"
)

var (
	// ErrCapabilityMismatch is returned when a kernel reports an unusable thread shape.
	ErrCapabilityMismatch = errors.New("capability mismatch")
	// ErrInvalidGeometry is returned for zero or negative surface extents.
	ErrInvalidGeometry = uniforms.ErrInvalidGeometry
)

// Mode selects between the two launch strategies.
type Mode int

const (
	// ThreadGroupGrid launches whole groups and may over-cover the last row and column.
	ThreadGroupGrid Mode = iota
	// DirectThreads launches exactly one thread per pixel.
	DirectThreads
)

func (m Mode) String() string {
	switch m {
	case ThreadGroupGrid:
		return "ThreadGroupGrid"
	case DirectThreads:
		return "DirectThreads"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Capabilities are reported by a compiled kernel.
type Capabilities struct {
	PreferredExecutionWidth int
	MaxThreadsPerGroup      int
}

func (c Capabilities) validate() error {
	if c.PreferredExecutionWidth <= 0 {
		return fmt.Errorf("preferred execution width %d: %w", c.PreferredExecutionWidth, ErrCapabilityMismatch)
	}
	if c.MaxThreadsPerGroup < c.PreferredExecutionWidth {
		return fmt.Errorf("max threads per group %d < execution width %d: %w", c.MaxThreadsPerGroup, c.PreferredExecutionWidth, ErrCapabilityMismatch)
	}
	return nil
}

// Plan is a launch configuration for a single frame.
type Plan struct {
	Mode Mode

	// GridWidth and GridHeight are the surface extent in pixels.
	GridWidth  int
	GridHeight int

	GroupWidth  int
	GroupHeight int

	// GroupsX and GroupsY are the number of groups needed to cover the grid.
	// Backends without non-uniform dispatch launch exactly this many.
	GroupsX int
	GroupsY int
}

// ThreadsX returns the number of threads launched along X.
func (p Plan) ThreadsX() int {
	if p.Mode == DirectThreads {
		return p.GridWidth
	}
	return p.GroupsX * p.GroupWidth
}

// ThreadsY returns the number of threads launched along Y.
func (p Plan) ThreadsY() int {
	if p.Mode == DirectThreads {
		return p.GridHeight
	}
	return p.GroupsY * p.GroupHeight
}

// Covers reports whether a thread is launched for pixel (x, y).
func (p Plan) Covers(x, y int) bool {
	return x >= 0 && y >= 0 && x < p.ThreadsX() && y < p.ThreadsY()
}

// Planner caches the group shape and mode for one kernel on one device.
type Planner struct {
	mode        Mode
	groupWidth  int
	groupHeight int
}

// NewPlanner validates caps and fixes the launch mode for the device.
func NewPlanner(caps Capabilities, supportsNonUniformDispatch bool) (*Planner, error) {
	if err := caps.validate(); err != nil {
		return nil, err
	}
	mode := ThreadGroupGrid
	if supportsNonUniformDispatch {
		mode = DirectThreads
	}
	return &Planner{
		mode:        mode,
		groupWidth:  caps.PreferredExecutionWidth,
		groupHeight: caps.MaxThreadsPerGroup / caps.PreferredExecutionWidth,
	}, nil
}

func (p *Planner) Mode() Mode { return p.mode }

// GroupSize returns the threads per group along X and Y.
func (p *Planner) GroupSize() (int, int) { return p.groupWidth, p.groupHeight }

// Plan returns the launch for a surface of the given extent.
func (p *Planner) Plan(surfaceWidth, surfaceHeight int) (Plan, error) {
	if surfaceWidth <= 0 || surfaceHeight <= 0 {
		return Plan{}, fmt.Errorf("planning %dx%d: %w", surfaceWidth, surfaceHeight, ErrInvalidGeometry)
	}
	return Plan{
		Mode:        p.mode,
		GridWidth:   surfaceWidth,
		GridHeight:  surfaceHeight,
		GroupWidth:  p.groupWidth,
		GroupHeight: p.groupHeight,
		GroupsX:     math32.CeilDiv(surfaceWidth, p.groupWidth),
		GroupsY:     math32.CeilDiv(surfaceHeight, p.groupHeight),
	}, nil
}

// Compute is the one-shot form of NewPlanner followed by Plan.
func Compute(surfaceWidth, surfaceHeight int, caps Capabilities, supportsNonUniformDispatch bool) (Plan, error) {
	p, err := NewPlanner(caps, supportsNonUniformDispatch)
	if err != nil {
		return Plan{}, err
	}
	return p.Plan(surfaceWidth, surfaceHeight)
}
