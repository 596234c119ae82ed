// Package uniforms holds the per-frame values shared with the background kernel.
package uniforms

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hulkholden/snowglobe/common/math32"
	"github.com/hulkholden/snowglobe/common/vmath"
	"github.com/hulkholden/snowglobe/common/wgsltypes"
)

var (
	// ErrInvalidGeometry is returned for zero or negative surface extents.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidStep is returned when asked to move time backwards.
	ErrInvalidStep = errors.New("invalid time step")
)

// Uniforms is copied into GPU-visible memory every frame.
// The field order and padding match the WGSL struct emitted by Struct.
type Uniforms struct {
	aspect   float32
	time     float32
	shapeMix float32
	// circle is 1 when the resting shape is a circle, 0 for a square.
	circle uint32

	color vmath.V3
	pad1  uint32
}

// Struct describes Uniforms for the kernel prologue.
var Struct = wgsltypes.MustRegisterStruct[Uniforms]()

func (u Uniforms) Aspect() float32   { return u.aspect }
func (u Uniforms) Time() float32     { return u.time }
func (u Uniforms) ShapeMix() float32 { return u.shapeMix }
func (u Uniforms) Color() vmath.V3   { return u.color }
func (u Uniforms) Circle() bool      { return u.circle != 0 }

// Bytes returns the little-endian encoding of u using the layout of Struct.
func (u Uniforms) Bytes() []byte {
	buf := make([]byte, Struct.Size)
	put := func(field string, v float32) {
		binary.LittleEndian.PutUint32(buf[Struct.MustOffsetOf(field):], math.Float32bits(v))
	}
	put("aspect", u.aspect)
	put("time", u.time)
	put("shapeMix", u.shapeMix)
	binary.LittleEndian.PutUint32(buf[Struct.MustOffsetOf("circle"):], u.circle)
	colorOffset := Struct.MustOffsetOf("color")
	binary.LittleEndian.PutUint32(buf[colorOffset:], math.Float32bits(u.color.X))
	binary.LittleEndian.PutUint32(buf[colorOffset+4:], math.Float32bits(u.color.Y))
	binary.LittleEndian.PutUint32(buf[colorOffset+8:], math.Float32bits(u.color.Z))
	return buf
}

// State owns the Uniforms for a render surface. Only Advance, Resize,
// SetTint and SetShape change it.
type State struct {
	u Uniforms

	// elapsed is the running total of Advance. Uniforms.time is its f32
	// image, so small steps keep accumulating in long sessions.
	elapsed float64
}

// New returns a State for a square surface at time zero, fully settled.
func New(tint vmath.V3) *State {
	return &State{
		u: Uniforms{
			aspect:   1,
			shapeMix: 1,
			color:    tint.Saturate(),
		},
	}
}

// Advance moves time forward by deltaSeconds, normally 1/targetFrameRate.
func (s *State) Advance(deltaSeconds float32) error {
	if deltaSeconds < 0 || math32.IsNaN(deltaSeconds) {
		return fmt.Errorf("advancing by %v: %w", deltaSeconds, ErrInvalidStep)
	}
	s.elapsed += float64(deltaSeconds)
	s.u.time = float32(s.elapsed)
	return nil
}

// Resize sets the aspect ratio from a surface extent in pixels.
// Aspect is left unchanged on error.
func (s *State) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resizing to %dx%d: %w", width, height, ErrInvalidGeometry)
	}
	s.u.aspect = vmath.NewV2(float32(width), float32(height)).Aspect()
	return nil
}

// SetShape stores the resting shape and the animation's interpolation
// factor towards it, clamped to [0,1].
func (s *State) SetShape(circle bool, k float32) {
	s.u.circle = 0
	if circle {
		s.u.circle = 1
	}
	s.u.shapeMix = math32.Saturate(k)
}

func (s *State) SetTint(c vmath.V3) {
	s.u.color = c.Saturate()
}

// Value returns a copy of the current uniforms.
func (s *State) Value() Uniforms {
	return s.u
}

// Time returns the accumulated seconds at full precision.
func (s *State) Time() float64 {
	return s.elapsed
}
