package main

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/drawqueue/gpu"
	"github.com/gekko3d/drawqueue/gpu/wgpubackend"
)

// graphics is the window surface and the device rendering into it.
type graphics struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	depth     *wgpu.Texture
	depthView *wgpu.TextureView
}

func newGraphics(window *glfw.Window) (*graphics, error) {
	g := &graphics{instance: wgpu.CreateInstance(nil)}
	g.surface = g.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := g.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: g.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, err
	}
	g.adapter = adapter

	g.device, err = adapter.RequestDevice(nil)
	if err != nil {
		return nil, err
	}
	g.queue = g.device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := g.surface.GetCapabilities(adapter)
	g.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	g.surface.Configure(adapter, g.device, g.config)

	if err := g.createDepth(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *graphics) createDepth() error {
	if g.depthView != nil {
		g.depthView.Release()
		g.depth.Release()
	}
	tex, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth",
		Size:          wgpu.Extent3D{Width: g.config.Width, Height: g.config.Height, DepthOrArrayLayers: 1},
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	g.depth, g.depthView = tex, view
	return nil
}

func (g *graphics) Resize(width, height int) {
	g.config.Width = uint32(width)
	g.config.Height = uint32(height)
	g.surface.Configure(g.adapter, g.device, g.config)
	if err := g.createDepth(); err != nil {
		fmt.Printf("ERROR: depth resize failed: %v\n", err)
	}
}

// Frame opens a render pass on the next surface texture and runs the queued
// core thread commands into it.
func (g *graphics) Frame(dev *wgpubackend.Device, thread *gpu.CoreThread) {
	next, err := g.surface.GetCurrentTexture()
	if err != nil {
		fmt.Printf("ERROR: GetCurrentTexture failed: %v\n", err)
		return
	}
	defer next.Release()

	view, err := next.CreateView(nil)
	if err != nil {
		fmt.Printf("ERROR: CreateView failed: %v\n", err)
		return
	}
	defer view.Release()

	encoder, err := g.device.CreateCommandEncoder(nil)
	if err != nil {
		fmt.Printf("ERROR: CreateCommandEncoder failed: %v\n", err)
		return
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.05, G: 0.05, B: 0.08, A: 1},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            g.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	dev.BeginPass(pass)
	thread.RunPending()
	dev.EndPass()
	if err := pass.End(); err != nil {
		fmt.Printf("ERROR: render pass End failed: %v\n", err)
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		fmt.Printf("ERROR: Encoder Finish failed: %v\n", err)
		return
	}
	defer cmd.Release()
	g.queue.Submit(cmd)
	g.surface.Present()
}

func (g *graphics) Release() {
	if g.depthView != nil {
		g.depthView.Release()
		g.depth.Release()
	}
	g.queue.Release()
	g.device.Release()
	g.adapter.Release()
	g.surface.Release()
	g.instance.Release()
}
