//go:build js && wasm

package engine

import "github.com/mokiat/wasmgpu"

type BufferOption func(d *wasmgpu.GPUBufferDescriptor)

func WithCopyDstUsage() BufferOption {
	return func(d *wasmgpu.GPUBufferDescriptor) {
		d.Usage |= wasmgpu.GPUBufferUsageFlagsCopyDst
	}
}
