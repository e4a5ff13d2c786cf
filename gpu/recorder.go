package gpu

import (
	"fmt"
	"strings"

	"github.com/gekko3d/drawqueue/core"
)

// Op names a recorded Device call.
type Op string

const (
	OpBindProgram      Op = "BindProgram"
	OpUnbindProgram    Op = "UnbindProgram"
	OpBindParams       Op = "BindParams"
	OpSetBlend         Op = "SetBlendState"
	OpSetDepthStencil  Op = "SetDepthStencilState"
	OpSetRasterizer    Op = "SetRasterizerState"
	OpSetVertexDecl    Op = "SetVertexDeclaration"
	OpSetVertexBuffers Op = "SetVertexBuffers"
	OpSetDrawOp        Op = "SetDrawOp"
	OpSetIndexBuffer   Op = "SetIndexBuffer"
	OpDrawIndexed      Op = "DrawIndexed"
)

// Command is one recorded call. Only the fields relevant to Op are set.
type Command struct {
	Op           Op
	Stage        core.Stage
	Program      core.Program
	Params       core.ParamBlock
	Blend        *core.BlendState
	DepthStencil *core.DepthStencilState
	StencilRef   uint32
	Rasterizer   *core.RasterizerState
	Declaration  *core.VertexDeclaration
	StartSlot    uint32
	Buffers      []core.VertexBuffer
	DrawOp       core.DrawOp
	IndexBuffer  core.IndexBuffer
	StartIndex   uint32
	IndexCount   uint32
	VertexOffset uint32
	VertexCount  uint32
}

func (c Command) String() string {
	switch c.Op {
	case OpBindProgram:
		return fmt.Sprintf("%s %s %v", c.Op, c.Stage, c.Program)
	case OpUnbindProgram:
		return fmt.Sprintf("%s %s", c.Op, c.Stage)
	case OpBindParams:
		return fmt.Sprintf("%s %s %v", c.Op, c.Stage, c.Params)
	case OpSetDepthStencil:
		return fmt.Sprintf("%s ref=%d", c.Op, c.StencilRef)
	case OpSetVertexBuffers:
		return fmt.Sprintf("%s start=%d count=%d %v", c.Op, c.StartSlot, len(c.Buffers), c.Buffers)
	case OpSetDrawOp:
		return fmt.Sprintf("%s %s", c.Op, c.DrawOp)
	case OpSetIndexBuffer:
		return fmt.Sprintf("%s %v", c.Op, c.IndexBuffer)
	case OpDrawIndexed:
		return fmt.Sprintf("%s start=%d count=%d voff=%d vcount=%d", c.Op, c.StartIndex, c.IndexCount, c.VertexOffset, c.VertexCount)
	default:
		return string(c.Op)
	}
}

// Recorder is a Device that records every call instead of issuing it. It is
// used for tests and for dumping the command stream of a frame.
type Recorder struct {
	caps     Caps
	Commands []Command
	// DrawErr, when set, is returned by DrawIndexed.
	DrawErr error
}

func NewRecorder(caps Caps) *Recorder {
	return &Recorder{caps: caps}
}

func (r *Recorder) Caps() Caps { return r.caps }

func (r *Recorder) Reset() { r.Commands = r.Commands[:0] }

// Ops returns the recorded operations in order.
func (r *Recorder) Ops() []Op {
	ops := make([]Op, len(r.Commands))
	for i, c := range r.Commands {
		ops[i] = c.Op
	}
	return ops
}

// Filter returns the recorded commands of kind op.
func (r *Recorder) Filter(op Op) []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Dump() string {
	var sb strings.Builder
	for _, c := range r.Commands {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *Recorder) BindProgram(stage core.Stage, prog core.Program) {
	r.Commands = append(r.Commands, Command{Op: OpBindProgram, Stage: stage, Program: prog})
}

func (r *Recorder) UnbindProgram(stage core.Stage) {
	r.Commands = append(r.Commands, Command{Op: OpUnbindProgram, Stage: stage})
}

func (r *Recorder) BindParams(stage core.Stage, params core.ParamBlock) {
	r.Commands = append(r.Commands, Command{Op: OpBindParams, Stage: stage, Params: params})
}

func (r *Recorder) SetBlendState(s *core.BlendState) {
	r.Commands = append(r.Commands, Command{Op: OpSetBlend, Blend: s})
}

func (r *Recorder) SetDepthStencilState(s *core.DepthStencilState, stencilRef uint32) {
	r.Commands = append(r.Commands, Command{Op: OpSetDepthStencil, DepthStencil: s, StencilRef: stencilRef})
}

func (r *Recorder) SetRasterizerState(s *core.RasterizerState) {
	r.Commands = append(r.Commands, Command{Op: OpSetRasterizer, Rasterizer: s})
}

func (r *Recorder) SetVertexDeclaration(d *core.VertexDeclaration) {
	r.Commands = append(r.Commands, Command{Op: OpSetVertexDecl, Declaration: d})
}

func (r *Recorder) SetVertexBuffers(startSlot uint32, bufs []core.VertexBuffer) {
	// the caller may reuse bufs
	cp := append([]core.VertexBuffer(nil), bufs...)
	r.Commands = append(r.Commands, Command{Op: OpSetVertexBuffers, StartSlot: startSlot, Buffers: cp})
}

func (r *Recorder) SetDrawOp(op core.DrawOp) {
	r.Commands = append(r.Commands, Command{Op: OpSetDrawOp, DrawOp: op})
}

func (r *Recorder) SetIndexBuffer(b core.IndexBuffer) {
	r.Commands = append(r.Commands, Command{Op: OpSetIndexBuffer, IndexBuffer: b})
}

func (r *Recorder) DrawIndexed(startIndex, indexCount, vertexOffset, vertexCount uint32) error {
	r.Commands = append(r.Commands, Command{
		Op:           OpDrawIndexed,
		StartIndex:   startIndex,
		IndexCount:   indexCount,
		VertexOffset: vertexOffset,
		VertexCount:  vertexCount,
	})
	return r.DrawErr
}

// NamedProgram is a Program handle identified by name, for recorders and
// tests.
type NamedProgram struct {
	Name string
	For  core.Stage
}

func (p *NamedProgram) Stage() core.Stage { return p.For }
func (p *NamedProgram) String() string    { return p.Name }

// NamedBuffer is a vertex or index buffer handle identified by name.
type NamedBuffer struct {
	Name  string
	Bytes uint64
	Type  core.IndexType
}

func (b *NamedBuffer) Size() uint64              { return b.Bytes }
func (b *NamedBuffer) IndexType() core.IndexType { return b.Type }
func (b *NamedBuffer) String() string            { return b.Name }
