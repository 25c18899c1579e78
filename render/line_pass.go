package render

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/armviz/render/shaders"
)

const cameraUniformSize = 64

// linePass draws every wireframe shape as instanced line lists over one
// static buffer of unit shapes.
type linePass struct {
	device         *wgpu.Device
	pipeline       *wgpu.RenderPipeline
	cameraBuffer   *wgpu.Buffer
	cameraGroup    *wgpu.BindGroup
	vertexBuffer   *wgpu.Buffer
	shapeOffsets   map[ShapeType]uint32
	shapeCounts    map[ShapeType]uint32
	instanceBuffer *wgpu.Buffer
	instanceCap    uint32
	instanceCounts map[ShapeType]uint32
}

func newLinePass(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat) (*linePass, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "LineShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.LineWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "LineCameraBGL",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: cameraUniformSize,
			},
		}},
	})
	if err != nil {
		return nil, err
	}
	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}

	instanceAttrs := make([]wgpu.VertexAttribute, 0, 5)
	for i := 0; i < 5; i++ {
		instanceAttrs = append(instanceAttrs, wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(16 * i),
			ShaderLocation: uint32(2 + i),
		})
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "LinePipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: uint64(unsafe.Sizeof(Instance{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes:  instanceAttrs,
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
				Blend:     alphaBlend(),
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p := &linePass{
		device:         device,
		pipeline:       pipeline,
		instanceCounts: make(map[ShapeType]uint32),
	}

	var vertices []Vertex
	vertices, p.shapeOffsets, p.shapeCounts = unitShapes()
	vb := wgpu.ToBytes(vertices)
	p.vertexBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LineUnitVertexBuffer",
		Size:  uint64(len(vb)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	queue.WriteBuffer(p.vertexBuffer, 0, vb)

	p.cameraBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LineCameraBuffer",
		Size:  cameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	p.cameraGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "LineCameraBG",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  p.cameraBuffer,
			Size:    cameraUniformSize,
		}},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *linePass) update(queue *wgpu.Queue, frame *Frame) error {
	vp := frame.ViewProj
	queue.WriteBuffer(p.cameraBuffer, 0, wgpu.ToBytes(vp[:]))

	all, counts := batch(frame.Shapes, frame.Lighting)
	p.instanceCounts = counts
	if len(all) == 0 {
		return nil
	}

	n := uint32(len(all))
	if p.instanceBuffer == nil || p.instanceCap < n {
		if p.instanceBuffer != nil {
			p.instanceBuffer.Release()
		}
		p.instanceCap = n + 128
		var err error
		p.instanceBuffer, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "LineInstanceBuffer",
			Size:  uint64(p.instanceCap) * uint64(unsafe.Sizeof(Instance{})),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
	}
	queue.WriteBuffer(p.instanceBuffer, 0, wgpu.ToBytes(all))
	return nil
}

func (p *linePass) draw(pass *wgpu.RenderPassEncoder) {
	if p.instanceBuffer == nil {
		return
	}
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.cameraGroup, nil)
	pass.SetVertexBuffer(0, p.vertexBuffer, 0, p.vertexBuffer.GetSize())
	pass.SetVertexBuffer(1, p.instanceBuffer, 0, p.instanceBuffer.GetSize())

	var first uint32
	for _, t := range drawOrder {
		count := p.instanceCounts[t]
		if count > 0 {
			pass.Draw(p.shapeCounts[t], count, p.shapeOffsets[t], first)
		}
		first += count
	}
}

func (p *linePass) release() {
	for _, b := range []*wgpu.Buffer{p.instanceBuffer, p.vertexBuffer, p.cameraBuffer} {
		if b != nil {
			b.Release()
		}
	}
	if p.cameraGroup != nil {
		p.cameraGroup.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
}

func alphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
}
