package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/drawqueue"
	"github.com/gekko3d/drawqueue/core"
	"github.com/gekko3d/drawqueue/gpu"
	"github.com/gekko3d/drawqueue/gpu/wgpubackend"
	"github.com/gekko3d/drawqueue/queue"
)

func init() {
	// glfw and the core thread both live on the main OS thread
	runtime.LockOSThread()
}

func main() {
	mode := flag.String("mode", "material", "State reduction mode: none, material or distance")
	debug := flag.Bool("debug", false, "Log per-frame queue statistics")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")
	grid := flag.Int("grid", 8, "Cubes per side of the instance grid")
	dump := flag.Bool("dump", false, "Print the command stream of the first frame")
	flag.Parse()

	reduction, err := queue.ParseStateReductionMode(*mode)
	if err != nil {
		panic(err)
	}
	logger := drawqueue.NewDefaultLogger("demo", *debug)
	cfg := drawqueue.Config{Mode: reduction, Logger: logger}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(*width, *height, "drawqueue", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	g, err := newGraphics(window)
	if err != nil {
		panic(err)
	}
	defer g.Release()

	a, err := newAssets(g.device)
	if err != nil {
		panic(err)
	}
	defer a.Release()

	scene, err := buildScene(a, *grid)
	if err != nil {
		panic(err)
	}

	thread := drawqueue.NewCoreThread("main", cfg)
	dev := wgpubackend.New(g.device, wgpubackend.Config{
		Label:       "demo",
		Layout:      a.Layout(),
		ColorFormat: g.config.Format,
		DepthFormat: depthFormat,
	}, logger)
	defer dev.Release()
	view := drawqueue.NewFrameRenderer("main", dev, thread, cfg)
	if *dump {
		dumpFirstFrame(scene, thread, dev.Caps(), cfg)
	}

	var frames int
	gateway := drawqueue.NewGateway(thread, logger, func(name string, stats drawqueue.FrameStats, err error) {
		if err != nil {
			return
		}
		if frames++; frames%300 == 0 {
			view.Logger().Infof("%s: frame %d, %d items, %d draws, %d pass changes, %d pipelines",
				name, stats.Frame, stats.Items, stats.Draws, stats.PassChanges, dev.PipelineCount())
		}
	})

	var aspect atomic.Uint32
	aspect.Store(math.Float32bits(float32(*width) / float32(*height)))
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			return
		}
		g.Resize(width, height)
		aspect.Store(math.Float32bits(float32(width) / float32(height)))
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		simulate(ctx, simulation{
			scene:   scene,
			assets:  a,
			view:    view,
			gateway: gateway,
			thread:  thread,
			aspect:  &aspect,
			radius:  float32(*grid) * 3,
		})
	}()

	for !window.ShouldClose() {
		glfw.PollEvents()
		if gateway.Pending() == 0 {
			glfw.WaitEventsTimeout(0.002)
			continue
		}
		g.Frame(dev, thread)
	}

	gateway.Close()
	cancel()
	thread.Stop()
	wg.Wait()
}

// dumpFirstFrame renders the initial view into a recorder and prints the
// resulting device calls.
func dumpFirstFrame(scene *drawqueue.Scene, thread *gpu.CoreThread, caps gpu.Caps, cfg drawqueue.Config) {
	rec := gpu.NewRecorder(caps)
	r := drawqueue.NewFrameRenderer("dump", rec, thread, cfg)
	items := scene.Collect(core.NewCamera(), nil)
	if !thread.Post(func() {
		if _, err := r.Render(items); err != nil {
			fmt.Printf("ERROR: dump frame failed: %v\n", err)
		}
	}) {
		return
	}
	thread.RunPending()
	fmt.Print(rec.Dump())
}

type simulation struct {
	scene   *drawqueue.Scene
	assets  *assets
	view    *drawqueue.FrameRenderer
	gateway *drawqueue.Gateway
	thread  *gpu.CoreThread
	aspect  *atomic.Uint32
	radius  float32
}

// simulate orbits the camera around the grid and submits one frame per tick
// while the renderer keeps up.
func simulate(ctx context.Context, s simulation) {
	cam := core.NewCamera()
	cam.Pitch = -0.4
	cam.Far = s.radius * 4

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	start := time.Now()
	var items []drawqueue.FrameItem
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.gateway.Pending() > 0 {
				continue
			}
			cam.Yaw = float32(now.Sub(start).Seconds() * 0.3)
			cam.Aspect = math.Float32frombits(s.aspect.Load())
			cam.Position = cam.Forward().Mul(-s.radius)

			items = s.scene.Collect(cam, items[:0])
			snapshot := *cam
			if !s.thread.Post(func() { s.assets.WriteCamera(&snapshot) }) {
				return
			}
			if err := s.gateway.SubmitFrame(s.view, items); err != nil {
				return
			}
		}
	}
}

// buildScene lays out a grid of opaque cubes in two materials with a glass
// cube every few cells. Glass draws its back faces, then its front faces.
func buildScene(a *assets, grid int) (*drawqueue.Scene, error) {
	glass := core.NewShader("glass",
		core.WithPriority(core.PriorityTransparent),
		core.WithSortType(core.SortBackToFront),
		core.WithSeparablePasses(false),
	)

	// pass changes are tracked per shader, so each surface color is its own
	// shader
	red, err := a.Material(core.NewShader("red"), [4]float32{0.85, 0.25, 0.2, 1})
	if err != nil {
		return nil, err
	}
	blue, err := a.Material(core.NewShader("blue"), [4]float32{0.2, 0.4, 0.85, 1})
	if err != nil {
		return nil, err
	}
	noWrite := core.DefaultDepthStencilState()
	noWrite.DepthWrite = false
	glassMat, err := a.Material(glass, [4]float32{0.6, 0.9, 0.8, 0.35},
		&core.Pass{
			Blend:        core.AlphaBlendState(),
			DepthStencil: noWrite,
			Rasterizer:   &core.RasterizerState{Cull: core.CullFront},
		},
		&core.Pass{
			Blend:        core.AlphaBlendState(),
			DepthStencil: noWrite,
			Rasterizer:   &core.RasterizerState{Cull: core.CullBack},
		},
	)
	if err != nil {
		return nil, err
	}

	const spacing, half = 3, 0.8
	scene := drawqueue.NewScene()
	offset := float32(grid-1) * spacing / 2
	for i := 0; i < grid*grid; i++ {
		x, y := i%grid, i/grid
		pos := [3]float32{float32(x)*spacing - offset, float32(y)*spacing - offset, half}

		mat := red
		switch {
		case i%5 == 2:
			mat = glassMat
		case (x+y)%2 == 1:
			mat = blue
		}
		mesh, err := a.Cube(pos, half)
		if err != nil {
			return nil, err
		}
		scene.Add(&drawqueue.Instance{
			Renderable: core.NewRenderable(mat, mesh, 0),
			Position:   pos,
			Radius:     half * math.Sqrt3,
		})
	}
	return scene, nil
}

const depthFormat = wgpu.TextureFormatDepth24Plus
