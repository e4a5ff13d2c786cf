package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamera_DistanceAlongForward(t *testing.T) {
	cam := NewCamera()
	assert.InDelta(t, 0, cam.Forward().Sub(mgl32.Vec3{0, -1, 0}).Len(), 1e-6)

	assert.InDelta(t, 10, cam.Distance(mgl32.Vec3{0, -8, 20}), 1e-5)
	assert.InDelta(t, 10, cam.Distance(mgl32.Vec3{5, -8, 23}), 1e-5, "lateral offset does not change depth")
	assert.InDelta(t, -4, cam.Distance(mgl32.Vec3{0, 6, 20}), 1e-5)
}

func TestCamera_SphereVisible(t *testing.T) {
	cam := NewCamera()

	assert.True(t, cam.SphereVisible(mgl32.Vec3{0, -10, 20}, 1))
	assert.False(t, cam.SphereVisible(mgl32.Vec3{0, 10, 20}, 1), "behind")
	assert.False(t, cam.SphereVisible(mgl32.Vec3{0, -2000, 20}, 1), "beyond far plane")
	assert.False(t, cam.SphereVisible(mgl32.Vec3{100, -10, 20}, 1), "outside the side planes")
	assert.True(t, cam.SphereVisible(mgl32.Vec3{0, 3, 20}, 2), "straddles the near plane")
}

func TestShader_DefaultsAndOptions(t *testing.T) {
	a := NewShader("a")
	b := NewShader("b", WithPriority(PriorityTransparent), WithSortType(SortBackToFront), WithSeparablePasses(false))

	assert.Less(t, a.ID, b.ID)
	assert.Equal(t, PriorityOpaque, a.QueuePriority)
	assert.Equal(t, SortFrontToBack, a.QueueSortType)
	assert.True(t, a.AllowSeparablePasses)

	assert.Equal(t, PriorityTransparent, b.QueuePriority)
	assert.Equal(t, "back-to-front", b.QueueSortType.String())
	assert.False(t, b.AllowSeparablePasses)
}

func TestMaterial_Pass(t *testing.T) {
	p0 := (&Pass{}).SetStage(StageVertex, nil, nil)
	m := NewMaterial(NewShader("lit"), p0, &Pass{})

	assert.NotEmpty(t, m.ID)
	assert.NotEqual(t, m.ID, NewMaterial(m.Shader).ID)
	assert.Equal(t, 2, m.NumPasses())
	assert.Same(t, p0, m.Pass(0))
	assert.True(t, m.Pass(0).HasStage(StageVertex))
	assert.False(t, m.Pass(1).HasStage(StageVertex))
	assert.Nil(t, m.Pass(2))
	assert.Nil(t, m.Pass(-1))
}

func TestVertexDeclaration_Strides(t *testing.T) {
	d := NewVertexDeclaration(
		VertexElement{Slot: 0, Location: 0, Offset: 0, Format: VertexFloat3},
		VertexElement{Slot: 0, Location: 1, Offset: 12, Format: VertexFloat3},
		VertexElement{Slot: 3, Location: 2, Offset: 0, Format: VertexUByte4Norm},
	)
	assert.Equal(t, map[uint32]uint64{0: 24, 3: 4}, d.Strides)
	assert.Len(t, d.SlotElements(0), 2)
	assert.Empty(t, d.SlotElements(1))

	f, err := ParseVertexFormat("ubyte4n")
	require.NoError(t, err)
	assert.Equal(t, VertexUByte4Norm, f)
	_, err = ParseVertexFormat("half2")
	assert.Error(t, err)
}

func TestMesh_MarkUsedOnGPU(t *testing.T) {
	m := NewMesh(&VertexData{}, nil, SubMesh{IndexCount: 3}, SubMesh{IndexOffset: 3, IndexCount: 6, DrawOp: LineList})
	m.MarkUsedOnGPU()

	used := 0
	m.OnUsed = func() { used++ }
	m.MarkUsedOnGPU()
	m.MarkUsedOnGPU()
	assert.Equal(t, 2, used)

	r := NewRenderable(nil, m, 1)
	assert.Equal(t, uint32(3), r.SubMesh.IndexOffset)
	assert.Equal(t, LineList, r.SubMesh.DrawOp)
}
