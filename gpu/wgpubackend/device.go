// Package wgpubackend implements gpu.Device on WebGPU.
//
// WebGPU bakes programs and fixed-function state into immutable render
// pipelines, so the device collects the state set through the gpu.Device
// calls and resolves it into a cached pipeline when a draw is issued.
package wgpubackend

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"

	"github.com/gekko3d/drawqueue/core"
	"github.com/gekko3d/drawqueue/gpu"
)

var (
	ErrNoRenderPass     = errors.New("wgpubackend: no render pass begun")
	ErrNoVertexProgram  = errors.New("wgpubackend: no vertex program bound")
	ErrUnsupportedStage = errors.New("wgpubackend: stage not supported by WebGPU render pipelines")
	ErrForeignHandle    = errors.New("wgpubackend: handle not created by this backend")
)

// Config describes the render targets pipelines are built for.
type Config struct {
	Label string
	// Layout is shared by every pipeline so that bind groups created
	// against it can be bound with any pass.
	Layout      *wgpu.PipelineLayout
	ColorFormat wgpu.TextureFormat
	// DepthFormat is TextureFormatUndefined when passes have no depth
	// attachment.
	DepthFormat      wgpu.TextureFormat
	SampleCount      uint32
	MaxVertexBuffers uint32
}

// passEncoder is the subset of *wgpu.RenderPassEncoder the device drives.
type passEncoder interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset uint64, size uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset uint64, size uint64)
	SetStencilReference(reference uint32)
	DrawIndexed(indexCount uint32, instanceCount uint32, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

type pipelineFactory func(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)

type pipelineKey struct {
	vertex, fragment *Program
	blend            core.BlendState
	depth            core.DepthStencilState
	raster           core.RasterizerState
	decl             *core.VertexDeclaration
	op               core.DrawOp
	index            core.IndexType
}

// Device is a gpu.Device recording into one render pass at a time.
type Device struct {
	cfg    Config
	log    gpu.Logger
	create pipelineFactory

	pipelines map[pipelineKey]*wgpu.RenderPipeline

	pass  passEncoder
	bound *wgpu.RenderPipeline

	programs   [core.NumStages]*Program
	params     [core.NumStages]*ParamBlock
	blend      *core.BlendState
	depth      *core.DepthStencilState
	stencilRef uint32
	raster     *core.RasterizerState
	decl       *core.VertexDeclaration
	op         core.DrawOp
	vertexBufs []*Buffer
	index      *Buffer
	err        error
}

var _ gpu.Device = (*Device)(nil)

func New(dev *wgpu.Device, cfg Config, log gpu.Logger) *Device {
	return newDevice(cfg, log, dev.CreateRenderPipeline)
}

func newDevice(cfg Config, log gpu.Logger, create pipelineFactory) *Device {
	if log == nil {
		log = gpu.NopLogger()
	}
	if cfg.Label == "" {
		cfg.Label = "drawqueue"
	}
	if cfg.SampleCount == 0 {
		cfg.SampleCount = 1
	}
	if cfg.MaxVertexBuffers == 0 {
		// WebGPU guaranteed minimum
		cfg.MaxVertexBuffers = 8
	}
	return &Device{
		cfg:        cfg,
		log:        log,
		create:     create,
		pipelines:  make(map[pipelineKey]*wgpu.RenderPipeline),
		vertexBufs: make([]*Buffer, cfg.MaxVertexBuffers),
		blend:      core.DefaultBlendState(),
		depth:      core.DefaultDepthStencilState(),
		raster:     core.DefaultRasterizerState(),
		op:         core.TriangleList,
	}
}

// BeginPass directs subsequent draws into pass. Per-pass bindings are reset.
func (d *Device) BeginPass(pass *wgpu.RenderPassEncoder) {
	d.begin(pass)
}

func (d *Device) begin(pass passEncoder) {
	d.pass = pass
	d.bound = nil
	clear(d.vertexBufs)
	d.index = nil
	d.err = nil
}

// EndPass detaches the render pass. Ending the encoder is the caller's job.
func (d *Device) EndPass() {
	d.pass = nil
	d.bound = nil
}

// PipelineCount returns the number of cached pipelines.
func (d *Device) PipelineCount() int { return len(d.pipelines) }

func (d *Device) Release() {
	for k, p := range d.pipelines {
		p.Release()
		delete(d.pipelines, k)
	}
}

func (d *Device) Caps() gpu.Caps {
	return gpu.Caps{MaxBoundVertexBuffers: d.cfg.MaxVertexBuffers}
}

func (d *Device) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Device) BindProgram(stage core.Stage, prog core.Program) {
	p, ok := prog.(*Program)
	if !ok {
		d.fail(fmt.Errorf("%s program %T: %w", stage, prog, ErrForeignHandle))
		return
	}
	d.programs[stage] = p
}

func (d *Device) UnbindProgram(stage core.Stage) {
	d.programs[stage] = nil
	d.params[stage] = nil
}

func (d *Device) BindParams(stage core.Stage, params core.ParamBlock) {
	p, ok := params.(*ParamBlock)
	if !ok {
		d.fail(fmt.Errorf("%s params %T: %w", stage, params, ErrForeignHandle))
		return
	}
	d.params[stage] = p
}

func (d *Device) SetBlendState(s *core.BlendState) { d.blend = s }

func (d *Device) SetDepthStencilState(s *core.DepthStencilState, stencilRef uint32) {
	d.depth = s
	d.stencilRef = stencilRef
}

func (d *Device) SetRasterizerState(s *core.RasterizerState) { d.raster = s }

func (d *Device) SetVertexDeclaration(decl *core.VertexDeclaration) { d.decl = decl }

func (d *Device) SetVertexBuffers(startSlot uint32, bufs []core.VertexBuffer) {
	for i, vb := range bufs {
		if vb == nil {
			continue
		}
		b, ok := vb.(*Buffer)
		if !ok {
			d.fail(fmt.Errorf("vertex buffer %T: %w", vb, ErrForeignHandle))
			return
		}
		slot := startSlot + uint32(i)
		if slot >= uint32(len(d.vertexBufs)) {
			d.fail(fmt.Errorf("vertex buffer slot %d: %w", slot, gpu.ErrInvalidParams))
			return
		}
		d.vertexBufs[slot] = b
	}
}

func (d *Device) SetDrawOp(op core.DrawOp) { d.op = op }

func (d *Device) SetIndexBuffer(ib core.IndexBuffer) {
	b, ok := ib.(*Buffer)
	if !ok {
		d.fail(fmt.Errorf("index buffer %T: %w", ib, ErrForeignHandle))
		return
	}
	d.index = b
}

// DrawIndexed resolves the pipeline for the current state and issues the
// draw. vertexCount has no WebGPU equivalent and is ignored.
func (d *Device) DrawIndexed(startIndex, indexCount, vertexOffset, vertexCount uint32) error {
	if d.err != nil {
		err := d.err
		d.err = nil
		return err
	}
	if d.pass == nil {
		return ErrNoRenderPass
	}
	if d.index == nil {
		return fmt.Errorf("no index buffer: %w", gpu.ErrInvalidParams)
	}
	for _, s := range []core.Stage{core.StageGeometry, core.StageHull, core.StageDomain, core.StageCompute} {
		if d.programs[s] != nil {
			return fmt.Errorf("%s program %s: %w", s, d.programs[s], ErrUnsupportedStage)
		}
	}

	pipeline, err := d.pipeline()
	if err != nil {
		return err
	}
	if pipeline != d.bound {
		d.pass.SetPipeline(pipeline)
		d.bound = pipeline
	}

	var groups uint64
	for _, pb := range d.params {
		if pb == nil || groups&(1<<pb.Group) != 0 {
			continue
		}
		groups |= 1 << pb.Group
		d.pass.SetBindGroup(pb.Group, pb.BindGroup, nil)
	}
	for slot, b := range d.vertexBufs {
		if b != nil {
			d.pass.SetVertexBuffer(uint32(slot), b.Buf, 0, b.Size())
		}
	}
	d.pass.SetIndexBuffer(d.index.Buf, indexFormat(d.index.Type), 0, d.index.Size())
	d.pass.SetStencilReference(d.stencilRef)
	d.pass.DrawIndexed(indexCount, 1, startIndex, int32(vertexOffset), 0)
	return nil
}

func (d *Device) key() pipelineKey {
	k := pipelineKey{
		vertex:   d.programs[core.StageVertex],
		fragment: d.programs[core.StageFragment],
		blend:    *d.blend,
		depth:    *d.depth,
		raster:   *d.raster,
		decl:     d.decl,
		op:       d.op,
	}
	if d.op == core.LineStrip || d.op == core.TriangleStrip {
		k.index = d.index.Type
	}
	return k
}

func (d *Device) pipeline() (*wgpu.RenderPipeline, error) {
	k := d.key()
	if p, ok := d.pipelines[k]; ok {
		return p, nil
	}
	if k.vertex == nil {
		return nil, ErrNoVertexProgram
	}

	desc := d.describe(k)
	p, err := d.create(desc)
	if err != nil {
		return nil, fmt.Errorf("create pipeline %s: %w", desc.Label, err)
	}
	d.pipelines[k] = p
	d.log.Debugf("created pipeline %s (vs %s, fs %v, %s), %d cached",
		desc.Label, k.vertex, k.fragment, k.op, len(d.pipelines))
	return p, nil
}

func (d *Device) describe(k pipelineKey) *wgpu.RenderPipelineDescriptor {
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s pipeline %s", d.cfg.Label, uuid.NewString()),
		Layout: d.cfg.Layout,
		Vertex: wgpu.VertexState{
			Module:     k.vertex.Module,
			EntryPoint: k.vertex.EntryPoint,
			Buffers:    vertexLayouts(k.decl),
		},
		Primitive:    primitive(k.op, k.index, &k.raster),
		DepthStencil: depthStencil(d.cfg.DepthFormat, &k.depth, &k.raster),
		Multisample: wgpu.MultisampleState{
			Count: d.cfg.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	if k.fragment != nil {
		desc.Fragment = &wgpu.FragmentState{
			Module:     k.fragment.Module,
			EntryPoint: k.fragment.EntryPoint,
			Targets:    []wgpu.ColorTargetState{colorTarget(d.cfg.ColorFormat, &k.blend)},
		}
	}
	return desc
}
