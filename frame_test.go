package drawqueue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/drawqueue/core"
	"github.com/gekko3d/drawqueue/gpu"
	"github.com/gekko3d/drawqueue/queue"
)

func startThread(t *testing.T) *gpu.CoreThread {
	t.Helper()
	th := NewCoreThread("test", Config{Logger: NewNopLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	go th.Run(ctx)
	t.Cleanup(func() {
		cancel()
		th.Stop()
	})
	return th
}

func newTestRenderer(t *testing.T, mode queue.StateReductionMode) (*FrameRenderer, *gpu.Recorder) {
	t.Helper()
	rec := gpu.NewRecorder(gpu.Caps{MaxBoundVertexBuffers: 4})
	r := NewFrameRenderer("main", rec, startThread(t), Config{Mode: mode, Logger: NewNopLogger()})
	return r, rec
}

func renderOnCore(t *testing.T, r *FrameRenderer, items []FrameItem) (FrameStats, error) {
	t.Helper()
	var (
		stats FrameStats
		err   error
	)
	require.True(t, r.Context().Thread().Do(func() { stats, err = r.Render(items) }))
	return stats, err
}

func testMaterial(shader *core.Shader, passes int) *core.Material {
	ps := make([]*core.Pass, passes)
	for i := range ps {
		ps[i] = (&core.Pass{}).SetStage(core.StageVertex,
			&gpu.NamedProgram{Name: shader.Name, For: core.StageVertex}, nil)
	}
	return core.NewMaterial(shader, ps...)
}

func testRenderable(m *core.Material) *core.Renderable {
	mesh := core.NewMesh(&core.VertexData{
		Declaration: core.NewVertexDeclaration(core.VertexElement{Format: core.VertexFloat3}),
		Buffers:     map[uint32]core.VertexBuffer{0: &gpu.NamedBuffer{Name: "vb", Bytes: 36}},
		VertexCount: 3,
	}, &gpu.NamedBuffer{Name: "ib", Bytes: 6, Type: core.Index16},
		core.SubMesh{IndexCount: 3, DrawOp: core.TriangleList})
	return core.NewRenderable(m, mesh, 0)
}

func TestFrameRenderer_AppliesPassOnlyOnChange(t *testing.T) {
	r, rec := newTestRenderer(t, queue.ReductionMaterial)

	m1 := testMaterial(core.NewShader("first"), 1)
	m2 := testMaterial(core.NewShader("second"), 1)
	items := []FrameItem{
		{Renderable: testRenderable(m1), Distance: 1},
		{Renderable: testRenderable(m2), Distance: 2},
		{Renderable: testRenderable(m1), Distance: 3},
		{Renderable: testRenderable(m2), Distance: 4},
	}

	stats, err := renderOnCore(t, r, items)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Frame)
	assert.Equal(t, 4, stats.Items)
	assert.Equal(t, 4, stats.Draws)
	assert.Equal(t, 2, stats.PassChanges)

	assert.Len(t, rec.Filter(gpu.OpDrawIndexed), 4)
	binds := rec.Filter(gpu.OpBindProgram)
	require.Len(t, binds, 2)
	assert.Same(t, m1.Pass(0).Stages[core.StageVertex].Program, binds[0].Program)
	assert.Same(t, m2.Pass(0).Stages[core.StageVertex].Program, binds[1].Program)

	var owners []*core.Material
	for _, e := range r.Queue().Elements() {
		owners = append(owners, e.Renderable.Material)
	}
	assert.Equal(t, []*core.Material{m1, m1, m2, m2}, owners)
}

func TestFrameRenderer_NonSeparablePassesDrawTogether(t *testing.T) {
	r, rec := newTestRenderer(t, queue.ReductionMaterial)

	shader := core.NewShader("outline", core.WithSeparablePasses(false))
	m := testMaterial(shader, 2)

	stats, err := renderOnCore(t, r, []FrameItem{{Renderable: testRenderable(m)}})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Draws)
	assert.Equal(t, 2, stats.PassChanges)

	ops := rec.Ops()
	first := indexOf(ops, gpu.OpDrawIndexed)
	require.GreaterOrEqual(t, first, 0)
	assert.Contains(t, ops[first+1:], gpu.OpBindProgram, "second pass is bound after the first draw")
}

func indexOf(ops []gpu.Op, op gpu.Op) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestFrameRenderer_DrawErrorAbortsFrame(t *testing.T) {
	r, rec := newTestRenderer(t, queue.ReductionNone)
	lost := errors.New("device lost")
	rec.DrawErr = lost

	m := testMaterial(core.NewShader("lit"), 1)
	stats, err := renderOnCore(t, r, []FrameItem{
		{Renderable: testRenderable(m)},
		{Renderable: testRenderable(m)},
	})
	require.ErrorIs(t, err, lost)
	assert.Contains(t, err.Error(), "main frame 1, draw 0")
	assert.Zero(t, stats.Draws)
	assert.Len(t, rec.Filter(gpu.OpDrawIndexed), 1)
}

func TestFrameRenderer_PanicsOffCoreThread(t *testing.T) {
	r, _ := newTestRenderer(t, queue.ReductionNone)
	m := testMaterial(core.NewShader("lit"), 1)

	assert.Panics(t, func() {
		_, _ = r.Render([]FrameItem{{Renderable: testRenderable(m)}})
	})
}

func TestFrameRenderer_ClearsQueueBetweenFrames(t *testing.T) {
	r, _ := newTestRenderer(t, queue.ReductionDistance)
	m := testMaterial(core.NewShader("lit"), 1)

	_, err := renderOnCore(t, r, []FrameItem{
		{Renderable: testRenderable(m)},
		{Renderable: testRenderable(m)},
		{Renderable: testRenderable(m)},
	})
	require.NoError(t, err)

	stats, err := renderOnCore(t, r, []FrameItem{{Renderable: testRenderable(m)}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Frame)
	assert.Equal(t, 1, stats.Draws)
	assert.Len(t, r.Queue().Elements(), 1)
	assert.Equal(t, uint64(2), r.Time().Frame)
}

func TestFrameRenderer_EmptyFrame(t *testing.T) {
	r, rec := newTestRenderer(t, queue.ReductionMaterial)

	stats, err := renderOnCore(t, r, nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Draws)
	assert.Empty(t, rec.Commands)
}
