package gpu

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/drawqueue/core"
)

func newTestContext(t *testing.T, maxSlots uint32, opts ...ContextOption) (*Context, *Recorder) {
	t.Helper()
	rec := NewRecorder(Caps{MaxBoundVertexBuffers: maxSlots})
	th := NewCoreThread("test", 1, nil)
	runCtx, cancel := context.WithCancel(context.Background())
	go th.Run(runCtx)
	t.Cleanup(func() {
		cancel()
		th.Stop()
	})
	return NewContext(rec, th, opts...), rec
}

func onCore(t *testing.T, c *Context, fn func()) {
	t.Helper()
	require.True(t, c.Thread().Do(fn), "core thread stopped")
}

func testMesh(slots ...uint32) *core.Mesh {
	bufs := make(map[uint32]core.VertexBuffer)
	for _, s := range slots {
		bufs[s] = &NamedBuffer{Name: "vb", Bytes: 64}
	}
	decl := core.NewVertexDeclaration(core.VertexElement{Format: core.VertexFloat3})
	m := core.NewMesh(&core.VertexData{
		Declaration:  decl,
		Buffers:      bufs,
		VertexOffset: 7,
		VertexCount:  24,
	}, &NamedBuffer{Name: "ib", Bytes: 72, Type: core.Index16},
		core.SubMesh{IndexOffset: 6, IndexCount: 30, DrawOp: core.TriangleList})
	m.IndexOffset = 100
	return m
}

func TestStateBinder_SetPassBindsStageTable(t *testing.T) {
	c, rec := newTestContext(t, 8)

	vs := &NamedProgram{Name: "vs", For: core.StageVertex}
	fs := &NamedProgram{Name: "fs", For: core.StageFragment}
	pass := &core.Pass{StencilRef: 3, Blend: core.AlphaBlendState()}
	pass.SetStage(core.StageVertex, vs, "vs-params").SetStage(core.StageFragment, fs, nil)
	mat := core.NewMaterial(core.NewShader("lit"), pass)

	var err error
	onCore(t, c, func() { err = NewStateBinder().SetPass(c, mat, 0) })
	require.NoError(t, err)

	assert.Equal(t, []Op{
		OpBindProgram, OpBindParams,
		OpBindProgram,
		OpUnbindProgram, OpUnbindProgram, OpUnbindProgram, OpUnbindProgram,
		OpSetBlend, OpSetDepthStencil, OpSetRasterizer,
	}, rec.Ops())

	binds := rec.Filter(OpBindProgram)
	assert.Same(t, vs, binds[0].Program)
	assert.Same(t, fs, binds[1].Program)

	var unbound []core.Stage
	for _, cmd := range rec.Filter(OpUnbindProgram) {
		unbound = append(unbound, cmd.Stage)
	}
	assert.Equal(t, []core.Stage{core.StageGeometry, core.StageHull, core.StageDomain, core.StageCompute}, unbound)

	ds := rec.Filter(OpSetDepthStencil)[0]
	assert.Equal(t, uint32(3), ds.StencilRef)
	assert.Same(t, pass.Blend, rec.Filter(OpSetBlend)[0].Blend)
}

func TestStateBinder_NilStatesUseContextDefaults(t *testing.T) {
	raster := &core.RasterizerState{Cull: core.CullNone}
	c, rec := newTestContext(t, 8, WithDefaults(Defaults{Rasterizer: raster}))

	mat := core.NewMaterial(core.NewShader("plain"), &core.Pass{})
	var err error
	onCore(t, c, func() { err = NewStateBinder().SetPass(c, mat, 0) })
	require.NoError(t, err)

	assert.Same(t, c.Defaults().Blend, rec.Filter(OpSetBlend)[0].Blend)
	assert.Same(t, c.Defaults().DepthStencil, rec.Filter(OpSetDepthStencil)[0].DepthStencil)
	assert.Same(t, raster, rec.Filter(OpSetRasterizer)[0].Rasterizer)
}

func TestStateBinder_PassOutOfRange(t *testing.T) {
	c, rec := newTestContext(t, 8)
	mat := core.NewMaterial(core.NewShader("one-pass"), &core.Pass{})

	var err error
	onCore(t, c, func() { err = NewStateBinder().SetPass(c, mat, 1) })
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Empty(t, rec.Commands)
}

func TestStateBinder_PanicsOffCoreThread(t *testing.T) {
	c, _ := newTestContext(t, 8)
	mat := core.NewMaterial(core.NewShader("x"), &core.Pass{})

	assert.PanicsWithError(t, "SetPass: "+ErrWrongThread.Error(), func() {
		_ = NewStateBinder().SetPass(c, mat, 0)
	})
}

func TestDrawSubmitter_BindsContiguousSlotRange(t *testing.T) {
	c, rec := newTestContext(t, 8)
	mesh := testMesh(2, 5)

	var used atomic.Int32
	mesh.OnUsed = func() { used.Add(1) }

	var err error
	onCore(t, c, func() { err = NewDrawSubmitter().Draw(c, mesh, mesh.SubMeshes[0]) })
	require.NoError(t, err)

	assert.Equal(t, []Op{OpSetVertexDecl, OpSetVertexBuffers, OpSetDrawOp, OpSetIndexBuffer, OpDrawIndexed}, rec.Ops())

	vb := rec.Filter(OpSetVertexBuffers)
	require.Len(t, vb, 1, "one binding call for the whole range")
	assert.Equal(t, uint32(2), vb[0].StartSlot)
	require.Len(t, vb[0].Buffers, 4)
	assert.Same(t, mesh.Vertices.Buffers[2], vb[0].Buffers[0])
	assert.Nil(t, vb[0].Buffers[1])
	assert.Nil(t, vb[0].Buffers[2])
	assert.Same(t, mesh.Vertices.Buffers[5], vb[0].Buffers[3])

	draw := rec.Filter(OpDrawIndexed)[0]
	assert.Equal(t, uint32(106), draw.StartIndex)
	assert.Equal(t, uint32(30), draw.IndexCount)
	assert.Equal(t, uint32(7), draw.VertexOffset)
	assert.Equal(t, uint32(24), draw.VertexCount)
	assert.Equal(t, core.TriangleList, rec.Filter(OpSetDrawOp)[0].DrawOp)
	assert.Same(t, mesh.Indices, rec.Filter(OpSetIndexBuffer)[0].IndexBuffer)
	assert.Equal(t, int32(1), used.Load())
}

func TestDrawSubmitter_SlotBeyondDeviceLimit(t *testing.T) {
	c, rec := newTestContext(t, 4)
	mesh := testMesh(0, 4)

	var used bool
	mesh.OnUsed = func() { used = true }

	var err error
	onCore(t, c, func() { err = NewDrawSubmitter().Draw(c, mesh, mesh.SubMeshes[0]) })
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Empty(t, rec.Commands, "nothing is bound for a rejected mesh")
	assert.False(t, used)
}

func TestDrawSubmitter_DeviceErrorPropagates(t *testing.T) {
	c, rec := newTestContext(t, 8)
	boom := errors.New("device lost")
	rec.DrawErr = boom
	mesh := testMesh(0)

	var err error
	onCore(t, c, func() { err = NewDrawSubmitter().Draw(c, mesh, mesh.SubMeshes[0]) })
	assert.ErrorIs(t, err, boom)
}

func TestDrawSubmitter_PanicsOffCoreThread(t *testing.T) {
	c, _ := newTestContext(t, 8)
	mesh := testMesh(0)
	assert.Panics(t, func() {
		_ = NewDrawSubmitter().Draw(c, mesh, mesh.SubMeshes[0])
	})
}

func TestCoreThread_RunsCommandsInOrder(t *testing.T) {
	th := NewCoreThread("order", 16, nil)
	var got []int
	for i := 0; i < 5; i++ {
		require.True(t, th.Post(func() {
			assert.True(t, th.Owned())
			got = append(got, i)
		}))
	}
	assert.Equal(t, 5, th.RunPending())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.False(t, th.Owned())
}

func TestCoreThread_BusyThreadDoesNotOwnOtherGoroutines(t *testing.T) {
	th := NewCoreThread("busy", 1, nil)
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go th.Run(runCtx)
	defer th.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	var ownedInside atomic.Bool
	require.True(t, th.Post(func() {
		ownedInside.Store(th.Owned())
		close(started)
		<-release
	}))
	<-started

	assert.False(t, th.Owned())
	var err error
	func() {
		defer func() { err, _ = recover().(error) }()
		th.MustOwn("Draw")
	}()
	assert.ErrorIs(t, err, ErrWrongThread)

	done := make(chan bool)
	go func() { done <- th.Owned() }()
	assert.False(t, <-done)

	close(release)
	assert.True(t, th.Do(func() {}))
	assert.True(t, ownedInside.Load())
}

func TestCoreThread_StopRejectsWork(t *testing.T) {
	th := NewCoreThread("stopped", 1, nil)
	th.Stop()
	assert.False(t, th.Post(func() {}))
	assert.False(t, th.Do(func() {}))
}

func TestRecorder_DumpListsCommandsInOrder(t *testing.T) {
	c, rec := newTestContext(t, 8)
	vs := &NamedProgram{Name: "vs", For: core.StageVertex}
	pass := (&core.Pass{StencilRef: 1}).SetStage(core.StageVertex, vs, nil)
	mat := core.NewMaterial(core.NewShader("lit"), pass)
	mesh := testMesh(1)

	var err error
	onCore(t, c, func() {
		if err = NewStateBinder().SetPass(c, mat, 0); err == nil {
			err = NewDrawSubmitter().Draw(c, mesh, mesh.SubMeshes[0])
		}
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(rec.Dump()), "\n")
	require.Len(t, lines, len(rec.Commands))
	assert.Equal(t, "BindProgram vertex vs", lines[0])
	assert.Equal(t, "UnbindProgram fragment", lines[1])
	assert.Contains(t, lines, "SetDepthStencilState ref=1")
	assert.Equal(t, "DrawIndexed start=106 count=30 voff=7 vcount=24", lines[len(lines)-1])

	rec.Reset()
	assert.Empty(t, rec.Dump())
}
