package drawqueue

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/drawqueue/core"
)

// Instance places a renderable in the world. Once added to a Scene its fields
// are shared with Collect; change them through Move, SetHidden and SetRadius.
type Instance struct {
	Renderable *core.Renderable
	Position   mgl32.Vec3
	// Radius of the bounding sphere used for frustum culling. Zero disables
	// culling for the instance.
	Radius float32
	Hidden bool
}

// Scene is the simulation-side set of instances. It is safe for concurrent
// use; Collect runs on the simulation goroutine while other goroutines may
// add or move instances.
type Scene struct {
	mu        sync.RWMutex
	instances []*Instance
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) Add(inst *Instance) {
	s.mu.Lock()
	s.instances = append(s.instances, inst)
	s.mu.Unlock()
}

func (s *Scene) Remove(inst *Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.instances {
		if it == inst {
			s.instances = append(s.instances[:i], s.instances[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

// Move sets the position of inst.
func (s *Scene) Move(inst *Instance, pos mgl32.Vec3) {
	s.mu.Lock()
	inst.Position = pos
	s.mu.Unlock()
}

func (s *Scene) SetHidden(inst *Instance, hidden bool) {
	s.mu.Lock()
	inst.Hidden = hidden
	s.mu.Unlock()
}

// SetRadius sets the culling radius of inst; zero disables culling.
func (s *Scene) SetRadius(inst *Instance, radius float32) {
	s.mu.Lock()
	inst.Radius = radius
	s.mu.Unlock()
}

// Collect appends the visible instances of the scene to dst, in insertion
// order, with their view depth from cam.
func (s *Scene) Collect(cam *core.Camera, dst []FrameItem) []FrameItem {
	planes := cam.Frustum()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inst := range s.instances {
		if inst.Hidden || inst.Renderable == nil {
			continue
		}
		if inst.Radius > 0 && !core.SphereInFrustum(planes, inst.Position, inst.Radius) {
			continue
		}
		dst = append(dst, FrameItem{
			Renderable: inst.Renderable,
			Distance:   cam.Distance(inst.Position),
		})
	}
	return dst
}
