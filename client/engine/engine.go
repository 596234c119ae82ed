//go:build js && wasm

package engine

import (
	"fmt"
	"io"
	"net/http"
	"syscall/js"

	"github.com/hulkholden/snowglobe/client/browser"
	"github.com/mokiat/wasmgpu"
)

// InitRenderCallback calls update once per animation frame until it returns false.
func InitRenderCallback(update func() bool) {
	var frame js.Func
	frame = js.FuncOf(func(this js.Value, args []js.Value) any {
		frame.Release()
		if update() {
			InitRenderCallback(update)
		}
		return nil
	})
	browser.Window().RequestAnimationFrame(frame)
}

// SupportsNonUniformDispatch reports whether the device can launch a
// non-group-aligned number of threads. WebGPU only dispatches whole workgroups.
func SupportsNonUniformDispatch(device wasmgpu.GPUDevice) bool {
	return false
}

// LoadShaderSource fetches WGSL source from url.
func LoadShaderSource(url string) (string, error) {
	bytes, err := loadFile(url)
	if err != nil {
		return "", fmt.Errorf("loading shader: %v", err)
	}
	return string(bytes), nil
}

// InitShaderModule creates a module from complete WGSL code.
func InitShaderModule(device wasmgpu.GPUDevice, code string) wasmgpu.GPUShaderModule {
	return device.CreateShaderModule(wasmgpu.GPUShaderModuleDescriptor{
		Code: code,
	})
}

func loadFile(url string) ([]byte, error) {
	res, err := http.DefaultClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed: %q", res.Status)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %v", err)
	}
	return data, nil
}
