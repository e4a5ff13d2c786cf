package drawqueue

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/drawqueue/core"
	"github.com/gekko3d/drawqueue/queue"
)

// NewCamera sits at (0, 2, 20) looking down -Y.
func TestScene_CollectCullsAndMeasures(t *testing.T) {
	cam := core.NewCamera()
	m := testMaterial(core.NewShader("lit"), 1)

	ahead := &Instance{Renderable: testRenderable(m), Position: mgl32.Vec3{0, -8, 20}, Radius: 1}
	behind := &Instance{Renderable: testRenderable(m), Position: mgl32.Vec3{0, 12, 20}, Radius: 1}
	unbounded := &Instance{Renderable: testRenderable(m), Position: mgl32.Vec3{0, 12, 20}}
	hidden := &Instance{Renderable: testRenderable(m), Position: mgl32.Vec3{0, -8, 20}, Hidden: true}
	empty := &Instance{Position: mgl32.Vec3{0, -8, 20}}

	s := NewScene()
	for _, inst := range []*Instance{ahead, behind, unbounded, hidden, empty} {
		s.Add(inst)
	}
	require.Equal(t, 5, s.Len())

	items := s.Collect(cam, nil)
	require.Len(t, items, 2)
	assert.Same(t, ahead.Renderable, items[0].Renderable)
	assert.InDelta(t, 10, items[0].Distance, 1e-4)
	assert.Same(t, unbounded.Renderable, items[1].Renderable)
	assert.InDelta(t, -10, items[1].Distance, 1e-4)
}

func TestScene_MoveAndRemove(t *testing.T) {
	cam := core.NewCamera()
	m := testMaterial(core.NewShader("lit"), 1)
	a := &Instance{Renderable: testRenderable(m), Position: mgl32.Vec3{0, -8, 20}}
	b := &Instance{Renderable: testRenderable(m), Position: mgl32.Vec3{0, -28, 20}}

	s := NewScene()
	s.Add(a)
	s.Add(b)
	s.Move(a, mgl32.Vec3{0, -48, 20})

	items := s.Collect(cam, make([]FrameItem, 0, 2))
	require.Len(t, items, 2)
	assert.InDelta(t, 50, items[0].Distance, 1e-4)
	assert.InDelta(t, 30, items[1].Distance, 1e-4)

	assert.True(t, s.Remove(a))
	assert.False(t, s.Remove(a))
	items = s.Collect(cam, items[:0])
	require.Len(t, items, 1)
	assert.Same(t, b.Renderable, items[0].Renderable)
}

// Distances from Collect feed the queue directly: transparent instances come
// out back to front.
func TestScene_CollectFeedsDistanceSort(t *testing.T) {
	r, _ := newTestRenderer(t, queue.ReductionNone)
	glass := testMaterial(core.NewShader("glass",
		core.WithPriority(core.PriorityTransparent),
		core.WithSortType(core.SortBackToFront)), 1)

	near := &Instance{Renderable: testRenderable(glass), Position: mgl32.Vec3{0, -3, 20}}
	far := &Instance{Renderable: testRenderable(glass), Position: mgl32.Vec3{0, -30, 20}}
	s := NewScene()
	s.Add(near)
	s.Add(far)

	_, err := renderOnCore(t, r, s.Collect(core.NewCamera(), nil))
	require.NoError(t, err)
	elems := r.Queue().Elements()
	require.Len(t, elems, 2)
	assert.Same(t, far.Renderable, elems[0].Renderable)
	assert.Same(t, near.Renderable, elems[1].Renderable)
}

func TestScene_SetHiddenAndRadiusWhileCollecting(t *testing.T) {
	cam := core.NewCamera()
	m := testMaterial(core.NewShader("lit"), 1)
	inst := &Instance{Renderable: testRenderable(m), Position: mgl32.Vec3{0, 12, 20}}
	s := NewScene()
	s.Add(inst)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.SetHidden(inst, i%2 == 0)
			s.SetRadius(inst, float32(i%3))
		}
	}()
	for i := 0; i < 200; i++ {
		_ = s.Collect(cam, nil)
	}
	wg.Wait()

	s.SetHidden(inst, false)
	s.SetRadius(inst, 0)
	require.Len(t, s.Collect(cam, nil), 1, "unbounded instances skip culling")

	s.SetRadius(inst, 1)
	assert.Empty(t, s.Collect(cam, nil), "behind the camera once bounded")

	s.SetRadius(inst, 0)
	s.SetHidden(inst, true)
	assert.Empty(t, s.Collect(cam, nil))
}
