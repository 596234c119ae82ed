//go:build js && wasm

package engine

import (
	"syscall/js"

	"github.com/mokiat/gog/opt"
	"github.com/mokiat/wasmgpu"
)

// GPUBuffer is a device buffer holding values of type T.
type GPUBuffer[T any] struct {
	device wasmgpu.GPUDevice
	buffer wasmgpu.GPUBuffer
	size   int
}

func (b GPUBuffer[T]) Buffer() wasmgpu.GPUBuffer {
	return b.buffer
}

func (b GPUBuffer[T]) BufferSize() wasmgpu.GPUSize64 {
	return wasmgpu.GPUSize64(b.size)
}

// UpdateBuffer queues a write of bytes to the start of the buffer.
// The buffer needs WithCopyDstUsage.
func (b GPUBuffer[T]) UpdateBuffer(bytes []byte) {
	b.device.Queue().WriteBuffer(b.buffer, 0, bytes)
}

func initBuffer(device wasmgpu.GPUDevice, usage wasmgpu.GPUBufferUsageFlags, size int, data []byte, opts ...BufferOption) wasmgpu.GPUBuffer {
	initContents := data != nil
	desc := wasmgpu.GPUBufferDescriptor{
		Size:             wasmgpu.GPUSize64(size),
		Usage:            usage,
		MappedAtCreation: opt.V(initContents),
	}
	for _, opt := range opts {
		opt(&desc)
	}
	buffer := device.CreateBuffer(desc)
	if initContents {
		js.CopyBytesToJS(uint8ArrayCtor.New(buffer.GetMappedRange(0, 0)), data)
		buffer.Unmap()
	}
	return buffer
}

// InitUniformBuffer creates a uniform buffer holding the encoded value data.
func InitUniformBuffer[T any](device wasmgpu.GPUDevice, data []byte, opts ...BufferOption) GPUBuffer[T] {
	buffer := initBuffer(device, wasmgpu.GPUBufferUsageFlagsUniform, len(data), data, opts...)
	return GPUBuffer[T]{
		device: device,
		buffer: buffer,
		size:   len(data),
	}
}

func InitStorageBufferSlice[T any](device wasmgpu.GPUDevice, values []T, opts ...BufferOption) GPUBuffer[T] {
	data := sliceAsBytesSlice(values)
	buffer := initBuffer(device, wasmgpu.GPUBufferUsageFlagsStorage, len(data), data, opts...)
	return GPUBuffer[T]{
		device: device,
		buffer: buffer,
		size:   len(data),
	}
}
