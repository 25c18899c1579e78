// Package render draws wireframe primitives and HUD text with WebGPU.
package render

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

type Options struct {
	// FontSize of the HUD atlas in pixels.
	FontSize float64
	// VSync selects FIFO presentation, otherwise immediate.
	VSync bool
}

// Frame is everything drawn in one frame.
type Frame struct {
	ViewProj mgl32.Mat4
	Clear    [4]float64
	Shapes   []Shape
	Text     []TextItem
	Lighting Lighting
}

type Renderer struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue
	config  *wgpu.SurfaceConfiguration

	lines *linePass
	text  *textPass
}

// New creates a renderer that presents to win.
func New(win *glfw.Window, opts Options) (*Renderer, error) {
	if opts.FontSize <= 0 {
		opts.FontSize = 24
	}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	queue := device.GetQueue()

	width, height := win.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, fmt.Errorf("surface has no supported formats")
	}
	presentMode := wgpu.PresentModeImmediate
	if opts.VSync {
		presentMode = wgpu.PresentModeFifo
	}
	config := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, config)

	r := &Renderer{
		surface: surface,
		adapter: adapter,
		device:  device,
		queue:   queue,
		config:  config,
	}

	r.lines, err = newLinePass(device, queue, config.Format)
	if err != nil {
		return nil, fmt.Errorf("line pass: %w", err)
	}
	atlas, err := NewTextAtlas(nil, opts.FontSize)
	if err != nil {
		return nil, fmt.Errorf("text atlas: %w", err)
	}
	r.text, err = newTextPass(device, queue, config.Format, atlas)
	if err != nil {
		return nil, fmt.Errorf("text pass: %w", err)
	}
	return r, nil
}

// Resize reconfigures the surface. Zero sizes (minimized window) are ignored.
func (r *Renderer) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if uint32(w) == r.config.Width && uint32(h) == r.config.Height {
		return
	}
	r.config.Width = uint32(w)
	r.config.Height = uint32(h)
	r.surface.Configure(r.adapter, r.device, r.config)
}

func (r *Renderer) Size() (int, int) {
	return int(r.config.Width), int(r.config.Height)
}

// Atlas is the HUD glyph atlas, for measuring text.
func (r *Renderer) Atlas() *TextAtlas {
	return r.text.atlas
}

// Draw renders and presents one frame.
func (r *Renderer) Draw(f *Frame) error {
	if err := r.lines.update(r.queue, f); err != nil {
		return fmt.Errorf("update lines: %w", err)
	}
	if err := r.text.update(r.queue, f.Text, int(r.config.Width), int(r.config.Height)); err != nil {
		return fmt.Errorf("update text: %w", err)
	}

	next, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("current texture: %w", err)
	}
	defer next.Release()

	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: f.Clear[0], G: f.Clear[1], B: f.Clear[2], A: f.Clear[3]},
		}},
	})
	r.lines.draw(pass)
	r.text.draw(pass)
	if err := pass.End(); err != nil {
		return fmt.Errorf("end pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	r.queue.Submit(cmd)
	r.surface.Present()
	return nil
}

func (r *Renderer) Release() {
	if r.text != nil {
		r.text.release()
	}
	if r.lines != nil {
		r.lines.release()
	}
	if r.queue != nil {
		r.queue.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
	if r.adapter != nil {
		r.adapter.Release()
	}
	if r.surface != nil {
		r.surface.Release()
	}
}
