//go:build js && wasm

// Package snowglobe renders a shape that morphs between a circle and a
// square each time the canvas is tapped.
package snowglobe

import (
	"fmt"
	"log"

	"github.com/hulkholden/snowglobe/client/browser"
	"github.com/hulkholden/snowglobe/client/engine"
	"github.com/hulkholden/snowglobe/common/animation"
	"github.com/hulkholden/snowglobe/common/dispatch"
	"github.com/hulkholden/snowglobe/common/frame"
	"github.com/mokiat/wasmgpu"
)

const canvasID = "canvas"

func Run(device wasmgpu.GPUDevice, context wasmgpu.GPUCanvasContext) error {
	window := browser.Window()
	opts, err := ParseOptions(window.LocationSearch())
	if err != nil {
		return fmt.Errorf("reading options: %v", err)
	}

	source := ""
	if opts.KernelURL != "" {
		if source, err = engine.LoadShaderSource(opts.KernelURL); err != nil {
			return err
		}
	}
	k, err := loadKernel(source)
	if err != nil {
		return err
	}
	planner, err := dispatch.NewPlanner(k.Caps, engine.SupportsNonUniformDispatch(device))
	if err != nil {
		return fmt.Errorf("planning %q: %w", k.Name, err)
	}
	gw, gh := planner.GroupSize()
	log.Printf("kernel %q: %dx%d threads per group, %v", k.Name, gw, gh, planner.Mode())

	anim, err := animation.New(animation.Config{Duration: opts.Duration, StartAsCircle: opts.StartAsCircle})
	if err != nil {
		return err
	}

	canvas := browser.Canvas(canvasID)
	canvas.FitToDisplay(window.DevicePixelRatio())
	driver, err := frame.New(frame.Config{
		TargetFrameRate: opts.FrameRate,
		Tint:            opts.Tint,
		StatsEvery:      opts.StatsEvery,
	}, k, planner, anim, engine.NewCanvasSurfaceProvider(canvas, context), engine.NewComputeEncoder(device, k, presentShaderCode))
	if err != nil {
		return err
	}

	window.OnResize(func() {
		if !canvas.FitToDisplay(window.DevicePixelRatio()) {
			return
		}
		width, height := canvas.Size()
		if err := driver.Resize(width, height); err != nil {
			log.Printf("resize ignored: %v", err)
		}
	})
	canvas.OnPointerDown(driver.RequestToggle)

	engine.InitRenderCallback(func() bool {
		if err := driver.Tick(); err != nil {
			log.Printf("frame failed: %v", err)
			browser.ShowError("Frame error: " + err.Error())
			return false
		}
		return true
	})
	return nil
}
