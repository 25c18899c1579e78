package render

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/armviz/render/shaders"
)

type textPass struct {
	device      *wgpu.Device
	atlas       *TextAtlas
	pipeline    *wgpu.RenderPipeline
	atlasView   *wgpu.TextureView
	sampler     *wgpu.Sampler
	bindGroup   *wgpu.BindGroup
	vertices    *wgpu.Buffer
	vertexCount uint32
}

func newTextPass(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, atlas *TextAtlas) (*textPass, error) {
	w, h := atlas.Image.Bounds().Dx(), atlas.Image.Bounds().Dy()
	extent := wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "TextAtlas",
		Size:          extent,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	queue.WriteTexture(tex.AsImageCopy(), atlas.Image.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &extent)

	p := &textPass{device: device, atlas: atlas}
	p.atlasView, err = tex.CreateView(nil)
	if err != nil {
		return nil, err
	}
	p.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "TextShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	p.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "TextPipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				Blend:     alphaBlend(),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: p.atlasView},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *textPass) update(queue *wgpu.Queue, items []TextItem, w, h int) error {
	p.vertexCount = 0
	vertices := p.atlas.Vertices(items, w, h)
	if len(vertices) == 0 {
		return nil
	}
	data := wgpu.ToBytes(vertices)
	if p.vertices == nil || p.vertices.GetSize() < uint64(len(data)) {
		if p.vertices != nil {
			p.vertices.Release()
		}
		var err error
		p.vertices, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "TextVertexBuffer",
			Size:  uint64(len(data)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
	}
	queue.WriteBuffer(p.vertices, 0, data)
	p.vertexCount = uint32(len(vertices))
	return nil
}

func (p *textPass) draw(pass *wgpu.RenderPassEncoder) {
	if p.vertexCount == 0 {
		return
	}
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.SetVertexBuffer(0, p.vertices, 0, p.vertices.GetSize())
	pass.Draw(p.vertexCount, 1, 0, 0)
}

func (p *textPass) release() {
	if p.vertices != nil {
		p.vertices.Release()
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.atlasView != nil {
		p.atlasView.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
}
