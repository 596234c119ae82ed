//go:build js && wasm

package engine

import (
	"errors"
	"fmt"

	"github.com/hulkholden/snowglobe/common/dispatch"
	"github.com/hulkholden/snowglobe/common/frame"
	"github.com/hulkholden/snowglobe/common/kernel"
	"github.com/hulkholden/snowglobe/common/uniforms"
	"github.com/hulkholden/snowglobe/common/vmath"
	"github.com/mokiat/gog/opt"
	"github.com/mokiat/wasmgpu"
)

var (
	ErrUnsupportedDispatch = errors.New("unsupported dispatch mode")
	ErrNothingToPresent    = errors.New("nothing encoded to present")
)

// ComputeEncoder implements frame.Encoder. The kernel writes one packed
// RGBA8 value per pixel into a storage buffer, which the present pass then
// draws onto the canvas.
type ComputeEncoder struct {
	device  wasmgpu.GPUDevice
	kernel  kernel.Kernel
	present *PresentPass

	pipeline              wasmgpu.GPUComputePipeline
	computePassDescriptor wasmgpu.GPUComputePassDescriptor

	uniformBuffer GPUBuffer[uniforms.Uniforms]
	extentBuffer  GPUBuffer[frame.Extent]

	// Reallocated whenever the extent changes.
	extent    frame.Extent
	pixels    GPUBuffer[uint32]
	bindGroup wasmgpu.GPUBindGroup

	commandEncoder wasmgpu.GPUCommandEncoder
	pending        bool
}

// NewComputeEncoder builds the pipeline for k and a present pass from presentCode.
func NewComputeEncoder(device wasmgpu.GPUDevice, k kernel.Kernel, presentCode string) *ComputeEncoder {
	module := InitShaderModule(device, k.Code)
	pipeline := device.CreateComputePipeline(wasmgpu.GPUComputePipelineDescriptor{
		// Layout: "auto",
		Compute: wasmgpu.GPUProgrammableStage{
			Module:     module,
			EntryPoint: k.Name,
		},
	})
	return &ComputeEncoder{
		device:                device,
		kernel:                k,
		present:               NewPresentPass(device, presentCode),
		pipeline:              pipeline,
		computePassDescriptor: wasmgpu.GPUComputePassDescriptor{},
		uniformBuffer:         InitUniformBuffer[uniforms.Uniforms](device, uniforms.New(vmath.V3{}).Value().Bytes(), WithCopyDstUsage()),
		extentBuffer:          InitUniformBuffer[frame.Extent](device, frame.NewExtent(0, 0).Bytes(), WithCopyDstUsage()),
	}
}

func (e *ComputeEncoder) Encode(k kernel.Kernel, uniformBytes []byte, target frame.Surface, plan dispatch.Plan) error {
	if k.Name != e.kernel.Name {
		return fmt.Errorf("encoder was built for %q: %w", e.kernel.Name, kernel.ErrUnknownKernel)
	}
	if plan.Mode != dispatch.ThreadGroupGrid {
		return fmt.Errorf("%v: %w", plan.Mode, ErrUnsupportedDispatch)
	}
	surface, ok := target.(CanvasSurface)
	if !ok {
		return fmt.Errorf("unexpected surface type %T", target)
	}

	e.ensureExtent(frame.NewExtent(plan.GridWidth, plan.GridHeight))
	e.uniformBuffer.UpdateBuffer(uniformBytes)

	commandEncoder := e.device.CreateCommandEncoder()
	passEncoder := commandEncoder.BeginComputePass(opt.V(e.computePassDescriptor))
	passEncoder.SetPipeline(e.pipeline)
	passEncoder.SetBindGroup(0, e.bindGroup, nil)
	passEncoder.DispatchWorkgroups(wasmgpu.GPUSize32(plan.GroupsX), wasmgpu.GPUSize32(plan.GroupsY), 1)
	passEncoder.End()

	e.present.Encode(commandEncoder, surface)

	e.commandEncoder = commandEncoder
	e.pending = true
	return nil
}

// Present submits the commands recorded by Encode. It does not wait for the GPU.
func (e *ComputeEncoder) Present(target frame.Surface) error {
	if !e.pending {
		return ErrNothingToPresent
	}
	e.device.Queue().Submit([]wasmgpu.GPUCommandBuffer{
		e.commandEncoder.Finish(),
	})
	e.pending = false
	return nil
}

func (e *ComputeEncoder) ensureExtent(extent frame.Extent) {
	if extent == e.extent {
		return
	}
	e.extent = extent
	e.extentBuffer.UpdateBuffer(extent.Bytes())
	e.pixels = InitStorageBufferSlice(e.device, make([]uint32, extent.Pixels()))
	e.bindGroup = e.device.CreateBindGroup(wasmgpu.GPUBindGroupDescriptor{
		Layout: e.pipeline.GetBindGroupLayout(0),
		Entries: []wasmgpu.GPUBindGroupEntry{
			{Binding: 0, Resource: wasmgpu.GPUBufferBinding{Buffer: e.uniformBuffer.Buffer()}},
			{Binding: 1, Resource: wasmgpu.GPUBufferBinding{Buffer: e.extentBuffer.Buffer()}},
			{Binding: 2, Resource: wasmgpu.GPUBufferBinding{Buffer: e.pixels.Buffer()}},
		},
	})
	e.present.Bind(e.extentBuffer, e.pixels)
}
