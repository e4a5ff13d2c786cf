package core

import "fmt"

type VertexFormat int

const (
	VertexFloat2 VertexFormat = iota
	VertexFloat3
	VertexFloat4
	VertexUByte4Norm
)

func ParseVertexFormat(name string) (VertexFormat, error) {
	switch name {
	case "float2":
		return VertexFloat2, nil
	case "float3":
		return VertexFloat3, nil
	case "float4":
		return VertexFloat4, nil
	case "ubyte4n":
		return VertexUByte4Norm, nil
	default:
		return 0, fmt.Errorf("unsupported vertex format: %s", name)
	}
}

// Size returns the byte size of one attribute of format f.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFloat2:
		return 8
	case VertexFloat3:
		return 12
	case VertexFloat4:
		return 16
	case VertexUByte4Norm:
		return 4
	default:
		return 0
	}
}

type VertexElement struct {
	Slot     uint32
	Location uint32
	Offset   uint64
	Format   VertexFormat
}

// VertexDeclaration is the vertex layout of a mesh. Strides are per slot.
type VertexDeclaration struct {
	Elements []VertexElement
	Strides  map[uint32]uint64
}

// NewVertexDeclaration builds a declaration with tightly packed strides
// computed from the elements of each slot.
func NewVertexDeclaration(elems ...VertexElement) *VertexDeclaration {
	d := &VertexDeclaration{
		Elements: elems,
		Strides:  make(map[uint32]uint64),
	}
	for _, e := range elems {
		if end := e.Offset + e.Format.Size(); end > d.Strides[e.Slot] {
			d.Strides[e.Slot] = end
		}
	}
	return d
}

// SlotElements returns the elements read from slot, in declaration order.
func (d *VertexDeclaration) SlotElements(slot uint32) []VertexElement {
	var out []VertexElement
	for _, e := range d.Elements {
		if e.Slot == slot {
			out = append(out, e)
		}
	}
	return out
}

// VertexBuffer is a GPU vertex buffer handle.
type VertexBuffer interface {
	Size() uint64
}

type IndexType int

const (
	Index16 IndexType = iota
	Index32
)

// IndexBuffer is a GPU index buffer handle.
type IndexBuffer interface {
	Size() uint64
	IndexType() IndexType
}

// VertexData holds the vertex buffers of a mesh keyed by bound slot.
type VertexData struct {
	Declaration  *VertexDeclaration
	Buffers      map[uint32]VertexBuffer
	VertexOffset uint32
	VertexCount  uint32
}

type DrawOp int

const (
	PointList DrawOp = iota
	LineList
	LineStrip
	TriangleList
	TriangleStrip
)

func (op DrawOp) String() string {
	switch op {
	case PointList:
		return "points"
	case LineList:
		return "lines"
	case LineStrip:
		return "line-strip"
	case TriangleList:
		return "triangles"
	case TriangleStrip:
		return "triangle-strip"
	default:
		return fmt.Sprintf("DrawOp(%d)", int(op))
	}
}

// SubMesh is a contiguous index range of a Mesh.
type SubMesh struct {
	IndexOffset uint32
	IndexCount  uint32
	DrawOp      DrawOp
}

type Mesh struct {
	ID          AssetId
	Vertices    *VertexData
	Indices     IndexBuffer
	IndexOffset uint32
	SubMeshes   []SubMesh

	// OnUsed is notified each time the mesh is drawn.
	OnUsed func()
}

func NewMesh(vertices *VertexData, indices IndexBuffer, subMeshes ...SubMesh) *Mesh {
	return &Mesh{
		ID:        makeAssetId(),
		Vertices:  vertices,
		Indices:   indices,
		SubMeshes: subMeshes,
	}
}

func (m *Mesh) MarkUsedOnGPU() {
	if m.OnUsed != nil {
		m.OnUsed()
	}
}

// Renderable is one drawable unit submitted for one frame. The render queue
// borrows it; the caller keeps it alive until the frame has been drawn.
type Renderable struct {
	Material *Material
	Mesh     *Mesh
	SubMesh  SubMesh
}

// NewRenderable draws sub-mesh idx of mesh with material.
func NewRenderable(material *Material, mesh *Mesh, idx int) *Renderable {
	return &Renderable{Material: material, Mesh: mesh, SubMesh: mesh.SubMeshes[idx]}
}
