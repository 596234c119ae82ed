//go:build js && wasm

package browser

import (
	"math"
	"syscall/js"
)

type HTMLWindow struct{ jsValue js.Value }

func Window() HTMLWindow {
	return HTMLWindow{js.Global().Get("window")}
}
func (w HTMLWindow) RequestAnimationFrame(fn js.Func) { w.jsValue.Call("requestAnimationFrame", fn) }
func (w HTMLWindow) DevicePixelRatio() float64      { return w.jsValue.Get("devicePixelRatio").Float() }

// LocationSearch returns the query part of the page URL, including the leading '?'.
func (w HTMLWindow) LocationSearch() string {
	return w.jsValue.Get("location").Get("search").String()
}

// OnResize calls fn after the window is resized.
func (w HTMLWindow) OnResize(fn func()) {
	addEventListener(w.jsValue, "resize", fn)
}

// ShowError displays msg on the page, if the page supports it.
func ShowError(msg string) {
	if fn := js.Global().Get("showError"); !fn.IsUndefined() {
		fn.Invoke(msg)
	}
}

type HTMLCanvas struct{ jsValue js.Value }

// Canvas returns the canvas element with the given id.
func Canvas(id string) HTMLCanvas {
	return HTMLCanvas{js.Global().Get("document").Call("getElementById", id)}
}

// Size returns the size of the drawing buffer in pixels.
func (c HTMLCanvas) Size() (int, int) {
	return c.jsValue.Get("width").Int(), c.jsValue.Get("height").Int()
}

// FitToDisplay resizes the drawing buffer to the displayed size scaled by
// devicePixelRatio and reports whether it changed.
func (c HTMLCanvas) FitToDisplay(dpr float64) bool {
	width := int(math.Round(c.jsValue.Get("clientWidth").Float() * dpr))
	height := int(math.Round(c.jsValue.Get("clientHeight").Float() * dpr))
	if w, h := c.Size(); w == width && h == height {
		return false
	}
	c.jsValue.Set("width", width)
	c.jsValue.Set("height", height)
	return true
}

// OnPointerDown calls fn for each tap, click or pen press on the canvas.
func (c HTMLCanvas) OnPointerDown(fn func()) {
	addEventListener(c.jsValue, "pointerdown", fn)
}

func addEventListener(target js.Value, event string, fn func()) {
	target.Call("addEventListener", event, js.FuncOf(func(this js.Value, args []js.Value) any {
		fn()
		return nil
	}))
}
