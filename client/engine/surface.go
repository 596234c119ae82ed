//go:build js && wasm

package engine

import (
	"fmt"

	"github.com/hulkholden/snowglobe/client/browser"
	"github.com/hulkholden/snowglobe/common/frame"
	"github.com/hulkholden/snowglobe/common/uniforms"
	"github.com/mokiat/wasmgpu"
)

// CanvasSurface is the canvas texture for one frame.
type CanvasSurface struct {
	texture       wasmgpu.GPUTexture
	width, height int
}

func (s CanvasSurface) Size() (int, int) { return s.width, s.height }

// CanvasSurfaceProvider implements frame.SurfaceProvider for a WebGPU canvas.
type CanvasSurfaceProvider struct {
	canvas  browser.HTMLCanvas
	context wasmgpu.GPUCanvasContext
}

func NewCanvasSurfaceProvider(canvas browser.HTMLCanvas, context wasmgpu.GPUCanvasContext) CanvasSurfaceProvider {
	return CanvasSurfaceProvider{canvas: canvas, context: context}
}

func (p CanvasSurfaceProvider) Surface() (frame.Surface, error) {
	width, height := p.canvas.Size()
	if width <= 0 || height <= 0 {
		// The canvas has no current texture to acquire.
		return nil, fmt.Errorf("canvas is %dx%d: %w", width, height, uniforms.ErrInvalidGeometry)
	}
	return CanvasSurface{
		texture: p.context.GetCurrentTexture(),
		width:   width,
		height:  height,
	}, nil
}
