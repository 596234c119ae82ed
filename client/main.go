//go:build js && wasm

package main

import (
	"log"
	"syscall/js"
	"time"

	"github.com/hulkholden/snowglobe/client/browser"
	"github.com/hulkholden/snowglobe/client/examples/snowglobe"
	"github.com/mokiat/wasmgpu"
)

type runFunc func(device wasmgpu.GPUDevice, context wasmgpu.GPUCanvasContext) error

var examples = map[string]runFunc{
	"snowglobe": snowglobe.Run,
}

// waitForExports waits until the JS which initializes the globals has finished running.
func waitForExports() {
	for {
		if fn := js.Global().Get("getContext"); !fn.IsUndefined() {
			return
		}
		log.Printf("getContext is still undefined")
		time.Sleep(100 * time.Millisecond)
	}
}

func main() {
	log.Println("Started client!")

	waitForExports()

	jsContext := js.Global().Call("getContext")
	jsDevice := js.Global().Call("getDevice")
	context := wasmgpu.NewCanvasContext(jsContext)
	device := wasmgpu.NewDevice(jsDevice)

	const defaultExample = "snowglobe"
	example := defaultExample
	if jsExample := js.Global().Call("getExample"); !jsExample.IsNull() {
		example = jsExample.String()
	}
	run, ok := examples[example]
	if !ok {
		log.Printf("unknown example %q, running %q", example, defaultExample)
		run = examples[defaultExample]
	}
	if err := run(device, context); err != nil {
		log.Printf("run() failed: %v", err)
		browser.ShowError("Run error: " + err.Error())
	}

	<-make(chan bool)
}
