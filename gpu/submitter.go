package gpu

import (
	"fmt"

	"github.com/gekko3d/drawqueue/core"
)

// DrawSubmitter issues indexed draws of sub-meshes.
type DrawSubmitter struct {
	slots []core.VertexBuffer
}

func NewDrawSubmitter() *DrawSubmitter { return &DrawSubmitter{} }

// Draw binds mesh's vertex layout, vertex buffers and index buffer and draws
// sub. Vertex buffers are bound with one call covering the lowest to highest
// used slot; slots in between without a buffer are left untouched.
//
// Must run on the core thread.
func (s *DrawSubmitter) Draw(ctx *Context, mesh *core.Mesh, sub core.SubMesh) error {
	ctx.mustOwn("Draw")

	dev := ctx.Device()
	vd := mesh.Vertices

	// slots are validated before anything reaches the device
	maxSlots := ctx.Caps().MaxBoundVertexBuffers
	lo, hi := ^uint32(0), uint32(0)
	for slot := range vd.Buffers {
		if slot >= maxSlots {
			return fmt.Errorf("vertex buffer slot %d of mesh %s, device supports %d: %w",
				slot, mesh.ID, maxSlots, ErrInvalidParams)
		}
		lo = min(lo, slot)
		hi = max(hi, slot)
	}

	dev.SetVertexDeclaration(vd.Declaration)
	if len(vd.Buffers) > 0 {
		s.slots = s.slots[:0]
		for slot := lo; slot <= hi; slot++ {
			s.slots = append(s.slots, vd.Buffers[slot])
		}
		dev.SetVertexBuffers(lo, s.slots)
		clear(s.slots)
	}

	dev.SetDrawOp(sub.DrawOp)
	dev.SetIndexBuffer(mesh.Indices)
	if err := dev.DrawIndexed(mesh.IndexOffset+sub.IndexOffset, sub.IndexCount, vd.VertexOffset, vd.VertexCount); err != nil {
		return fmt.Errorf("draw mesh %s: %w", mesh.ID, err)
	}

	mesh.MarkUsedOnGPU()
	return nil
}
