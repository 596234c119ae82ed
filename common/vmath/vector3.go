package vmath

import "github.com/hulkholden/snowglobe/common/math32"

// V3 mirrors a WGSL vec3<f32>. Colors use X,Y,Z as R,G,B.
type V3 struct {
	X, Y, Z float32
}

func NewV3(x, y, z float32) V3 { return V3{X: x, Y: y, Z: z} }

func (v V3) Add(w V3) V3             { return V3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z} }
func (v V3) Scale(s float32) V3      { return V3{X: v.X * s, Y: v.Y * s, Z: v.Z * s} }
func (v V3) Lerp(w V3, f float32) V3 { return v.Scale(1 - f).Add(w.Scale(f)) }

// Saturate clamps every component to [0,1].
func (v V3) Saturate() V3 {
	return V3{X: math32.Saturate(v.X), Y: math32.Saturate(v.Y), Z: math32.Saturate(v.Z)}
}
