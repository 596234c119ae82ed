package snowglobe

import (
	_ "embed"

	"github.com/hulkholden/snowglobe/common/frame"
	"github.com/hulkholden/snowglobe/common/kernel"
	"github.com/hulkholden/snowglobe/common/uniforms"
)

// backgroundKernel is the entry point the driver dispatches.
const backgroundKernel = "background"

//go:embed background.wgsl
var backgroundShaderCode string

//go:embed present.wgsl
var presentShaderCode string

// loadKernel compiles source, or the built-in background kernel if source
// is empty, with the Uniforms and Extent prologue.
func loadKernel(source string) (kernel.Kernel, error) {
	if source == "" {
		source = backgroundShaderCode
	}
	return kernel.Load(backgroundKernel, source, uniforms.Struct, frame.ExtentStruct)
}
