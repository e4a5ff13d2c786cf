package gpu

import (
	"errors"

	"github.com/gekko3d/drawqueue/core"
)

var (
	// ErrInvalidParams reports malformed input to a bind or draw call, such as
	// a vertex buffer slot beyond the device limit.
	ErrInvalidParams = errors.New("gpu: invalid parameters")
	// ErrWrongThread is the panic value raised when GPU state is touched
	// outside the core thread.
	ErrWrongThread = errors.New("gpu: called outside the core thread")
)

// Caps are fixed device capabilities.
type Caps struct {
	MaxBoundVertexBuffers uint32
}

// Device is the GPU layer the binder and submitter drive. Implementations
// record or issue commands against one pipeline state; they are not safe for
// concurrent use.
type Device interface {
	Caps() Caps

	BindProgram(stage core.Stage, prog core.Program)
	UnbindProgram(stage core.Stage)
	BindParams(stage core.Stage, params core.ParamBlock)

	SetBlendState(s *core.BlendState)
	SetDepthStencilState(s *core.DepthStencilState, stencilRef uint32)
	SetRasterizerState(s *core.RasterizerState)

	SetVertexDeclaration(d *core.VertexDeclaration)
	// SetVertexBuffers binds bufs to slots startSlot..startSlot+len(bufs)-1.
	// nil entries leave the slot as it is.
	SetVertexBuffers(startSlot uint32, bufs []core.VertexBuffer)
	SetDrawOp(op core.DrawOp)
	SetIndexBuffer(b core.IndexBuffer)
	DrawIndexed(startIndex, indexCount, vertexOffset, vertexCount uint32) error
}

// Logger is the logging surface used by this package. drawqueue.Logger
// satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

// NopLogger discards everything.
func NopLogger() Logger { return nopLogger{} }

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
