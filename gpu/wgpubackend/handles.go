package wgpubackend

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/drawqueue/core"
)

// Program is a WGSL entry point used for one stage.
type Program struct {
	Module     *wgpu.ShaderModule
	EntryPoint string
	stage      core.Stage
	name       string
}

func (p *Program) Stage() core.Stage { return p.stage }
func (p *Program) String() string    { return p.name }

// ParamBlock is a bind group bound at Group.
type ParamBlock struct {
	Group     uint32
	BindGroup *wgpu.BindGroup
}

// Buffer wraps a wgpu buffer as a vertex or index buffer.
type Buffer struct {
	Buf  *wgpu.Buffer
	Type core.IndexType
	size uint64
}

func (b *Buffer) Size() uint64              { return b.size }
func (b *Buffer) IndexType() core.IndexType { return b.Type }

// NewProgram compiles WGSL source and returns one Program per entry point,
// keyed by stage. Stages without an entry point are left out.
func NewProgram(dev *wgpu.Device, name, wgsl string, entries map[core.Stage]string) (map[core.Stage]*Program, error) {
	module, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgsl},
	})
	if err != nil {
		return nil, fmt.Errorf("shader module %s: %w", name, err)
	}

	progs := make(map[core.Stage]*Program, len(entries))
	for stage, entry := range entries {
		if stage != core.StageVertex && stage != core.StageFragment {
			module.Release()
			return nil, fmt.Errorf("shader %s, %s stage: %w", name, stage, ErrUnsupportedStage)
		}
		progs[stage] = &Program{
			Module:     module,
			EntryPoint: entry,
			stage:      stage,
			name:       name + "." + entry,
		}
	}
	return progs, nil
}

// NewVertexBuffer uploads data into a vertex buffer.
func NewVertexBuffer(dev *wgpu.Device, label string, data []byte) (*Buffer, error) {
	buf, err := dev.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("vertex buffer %s: %w", label, err)
	}
	return &Buffer{Buf: buf, size: uint64(len(data))}, nil
}

// NewIndexBuffer uploads 16-bit indices.
func NewIndexBuffer(dev *wgpu.Device, label string, indices []uint16) (*Buffer, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("index buffer %s: no indices", label)
	}
	buf, err := dev.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*2),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("index buffer %s: %w", label, err)
	}
	return &Buffer{Buf: buf, Type: core.Index16, size: uint64(len(indices)) * 2}, nil
}
