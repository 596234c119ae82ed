//go:build js && wasm

package engine

import (
	"github.com/hulkholden/snowglobe/common/frame"
	"github.com/mokiat/gog/opt"
	"github.com/mokiat/wasmgpu"
)

// PresentPass draws a full-screen triangle that copies the kernel output onto the canvas.
type PresentPass struct {
	device    wasmgpu.GPUDevice
	pipeline  wasmgpu.GPURenderPipeline
	bindGroup wasmgpu.GPUBindGroup

	renderPassDescriptor wasmgpu.GPURenderPassDescriptor
}

func NewPresentPass(device wasmgpu.GPUDevice, code string) *PresentPass {
	module := InitShaderModule(device, frame.ExtentStruct.ToWGSL()+"\n"+code)
	pipeline := device.CreateRenderPipeline(wasmgpu.GPURenderPipelineDescriptor{
		// Layout: "auto",
		Vertex: wasmgpu.GPUVertexState{
			Module:     module,
			EntryPoint: "vertex_main",
		},
		Fragment: opt.V(wasmgpu.GPUFragmentState{
			Module:     module,
			EntryPoint: "fragment_main",
			Targets: []wasmgpu.GPUColorTargetState{
				{
					Format: wasmgpu.GPUTextureFormatBGRA8Unorm,
				},
			},
		}),
		Primitive: opt.V(wasmgpu.GPUPrimitiveState{
			Topology: opt.V(wasmgpu.GPUPrimitiveTopologyTriangleList),
		}),
	})
	return &PresentPass{
		device:   device,
		pipeline: pipeline,
		renderPassDescriptor: wasmgpu.GPURenderPassDescriptor{
			ColorAttachments: []wasmgpu.GPURenderPassColorAttachment{
				{
					ClearValue: opt.V(wasmgpu.GPUColor{R: 0.0, G: 0.0, B: 0.0, A: 1.0}),
					LoadOp:     wasmgpu.GPULoadOpClear,
					StoreOp:    wasmgpu.GPUStoreOPStore,
				},
			},
		},
	}
}

// Bind points the pass at the buffers written by the compute kernel.
func (p *PresentPass) Bind(extent GPUBuffer[frame.Extent], pixels GPUBuffer[uint32]) {
	p.bindGroup = p.device.CreateBindGroup(wasmgpu.GPUBindGroupDescriptor{
		Layout: p.pipeline.GetBindGroupLayout(0),
		Entries: []wasmgpu.GPUBindGroupEntry{
			{Binding: 0, Resource: wasmgpu.GPUBufferBinding{Buffer: extent.Buffer()}},
			{Binding: 1, Resource: wasmgpu.GPUBufferBinding{Buffer: pixels.Buffer()}},
		},
	})
}

func (p *PresentPass) Encode(commandEncoder wasmgpu.GPUCommandEncoder, surface CanvasSurface) {
	p.renderPassDescriptor.ColorAttachments[0].View = surface.texture.CreateView()
	passEncoder := commandEncoder.BeginRenderPass(p.renderPassDescriptor)
	passEncoder.SetPipeline(p.pipeline)
	passEncoder.SetBindGroup(0, p.bindGroup, nil)
	passEncoder.Draw(3, opt.V(wasmgpu.GPUSize32(1)), opt.Unspecified[wasmgpu.GPUSize32](), opt.Unspecified[wasmgpu.GPUSize32]())
	passEncoder.End()
}
