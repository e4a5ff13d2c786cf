package main

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/drawqueue/cmd/drawqueue-demo/shaders"
	"github.com/gekko3d/drawqueue/core"
	"github.com/gekko3d/drawqueue/gpu/wgpubackend"
)

const (
	cameraUniformSize  = 64 // mat4x4<f32>
	surfaceUniformSize = 16 // vec4<f32>
)

type vertex struct {
	Pos    mgl32.Vec3
	Normal mgl32.Vec3
}

type releaser interface{ Release() }

// assets owns the GPU resources shared by every cube of the demo.
type assets struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	layout    *wgpu.PipelineLayout
	surfaceBG *wgpu.BindGroupLayout
	cameraBuf *wgpu.Buffer
	camera    *wgpubackend.ParamBlock
	programs  map[core.Stage]*wgpubackend.Program
	decl      *core.VertexDeclaration
	indices   *wgpubackend.Buffer

	owned []releaser
}

func uniformLayout(device *wgpu.Device, label string, stage wgpu.ShaderStage, size uint64) (*wgpu.BindGroupLayout, error) {
	return device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: stage,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	})
}

func newAssets(device *wgpu.Device) (*assets, error) {
	a := &assets{device: device, queue: device.GetQueue()}

	cameraBGL, err := uniformLayout(device, "CameraBGL", wgpu.ShaderStageVertex, cameraUniformSize)
	if err != nil {
		return nil, err
	}
	a.owned = append(a.owned, cameraBGL)
	a.surfaceBG, err = uniformLayout(device, "SurfaceBGL", wgpu.ShaderStageFragment, surfaceUniformSize)
	if err != nil {
		a.Release()
		return nil, err
	}
	a.owned = append(a.owned, a.surfaceBG)

	// group 0 is the camera, group 1 the material surface
	a.layout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "DrawQueueLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{cameraBGL, a.surfaceBG},
	})
	if err != nil {
		a.Release()
		return nil, err
	}
	a.owned = append(a.owned, a.layout)

	a.cameraBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "CameraUniform",
		Size:  cameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		a.Release()
		return nil, err
	}
	a.owned = append(a.owned, a.cameraBuf)
	cameraGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "CameraBG",
		Layout:  cameraBGL,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: a.cameraBuf, Size: cameraUniformSize}},
	})
	if err != nil {
		a.Release()
		return nil, err
	}
	a.owned = append(a.owned, cameraGroup)
	a.camera = &wgpubackend.ParamBlock{Group: 0, BindGroup: cameraGroup}

	a.programs, err = wgpubackend.NewProgram(device, "cube", shaders.CubeWGSL, map[core.Stage]string{
		core.StageVertex:   "vs_main",
		core.StageFragment: "fs_main",
	})
	if err != nil {
		a.Release()
		return nil, err
	}
	a.owned = append(a.owned, a.programs[core.StageVertex].Module)

	a.decl = core.NewVertexDeclaration(
		core.VertexElement{Slot: 0, Location: 0, Offset: 0, Format: core.VertexFloat3},
		core.VertexElement{Slot: 0, Location: 1, Offset: 12, Format: core.VertexFloat3},
	)
	a.indices, err = wgpubackend.NewIndexBuffer(device, "CubeIndices", cubeIndices())
	if err != nil {
		a.Release()
		return nil, err
	}
	a.owned = append(a.owned, a.indices.Buf)
	return a, nil
}

func (a *assets) Layout() *wgpu.PipelineLayout { return a.layout }

// Material creates a material of shader whose passes all draw the cube
// program with a constant surface color.
func (a *assets) Material(shader *core.Shader, color mgl32.Vec4, passes ...*core.Pass) (*core.Material, error) {
	buf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: shader.Name + "Surface",
		Size:  surfaceUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", shader.Name, err)
	}
	a.owned = append(a.owned, buf)
	a.queue.WriteBuffer(buf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&color[0])), surfaceUniformSize))

	group, err := a.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   shader.Name + "SurfaceBG",
		Layout:  a.surfaceBG,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: surfaceUniformSize}},
	})
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", shader.Name, err)
	}
	a.owned = append(a.owned, group)
	surface := &wgpubackend.ParamBlock{Group: 1, BindGroup: group}

	if len(passes) == 0 {
		passes = []*core.Pass{{}}
	}
	for _, p := range passes {
		p.SetStage(core.StageVertex, a.programs[core.StageVertex], a.camera).
			SetStage(core.StageFragment, a.programs[core.StageFragment], surface)
	}
	return core.NewMaterial(shader, passes...), nil
}

// Cube creates a cube mesh with its vertices baked at center.
func (a *assets) Cube(center mgl32.Vec3, half float32) (*core.Mesh, error) {
	verts := cubeVertices(center, half)
	data := unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), len(verts)*int(unsafe.Sizeof(vertex{})))
	vb, err := wgpubackend.NewVertexBuffer(a.device, "CubeVertices", data)
	if err != nil {
		return nil, err
	}
	a.owned = append(a.owned, vb.Buf)

	return core.NewMesh(&core.VertexData{
		Declaration: a.decl,
		Buffers:     map[uint32]core.VertexBuffer{0: vb},
		VertexCount: uint32(len(verts)),
	}, a.indices, core.SubMesh{IndexCount: 36, DrawOp: core.TriangleList}), nil
}

// WriteCamera uploads the view-projection of cam. Call it on the core thread
// before the frame that uses it.
func (a *assets) WriteCamera(cam *core.Camera) {
	vp := cam.ViewProjection()
	a.queue.WriteBuffer(a.cameraBuf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vp[0])), cameraUniformSize))
}

func (a *assets) Release() {
	for i := len(a.owned) - 1; i >= 0; i-- {
		a.owned[i].Release()
	}
	a.owned = nil
}

var cubeFaces = [6]struct{ normal, u, v mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
}

func cubeVertices(center mgl32.Vec3, half float32) []vertex {
	verts := make([]vertex, 0, 24)
	for _, f := range cubeFaces {
		c := center.Add(f.normal.Mul(half))
		u, v := f.u.Mul(half), f.v.Mul(half)
		verts = append(verts,
			vertex{c.Sub(u).Sub(v), f.normal},
			vertex{c.Add(u).Sub(v), f.normal},
			vertex{c.Add(u).Add(v), f.normal},
			vertex{c.Sub(u).Add(v), f.normal},
		)
	}
	return verts
}

func cubeIndices() []uint16 {
	idx := make([]uint16, 0, 36)
	for f := uint16(0); f < 6; f++ {
		b := f * 4
		idx = append(idx, b, b+1, b+2, b, b+2, b+3)
	}
	return idx
}
