package queue

import (
	"github.com/gekko3d/drawqueue/core"
)

// Element is one finalized draw instruction: apply pass PassIdx of the
// renderable's material when ApplyPass is set, then draw the renderable.
type Element struct {
	Renderable *core.Renderable
	PassIdx    int
	ApplyPass  bool
}

// sortableElement is one row of the sort table. Rows are never moved during
// a sort; only the index permutation is.
type sortableElement struct {
	seqIdx         uint32
	priority       uint32
	shaderID       uint32
	passIdx        uint32
	distFromCamera float32
	owner          int32 // index into RenderQueue.elements
}

// Stats describes the last Sort.
type Stats struct {
	Renderables  int
	Sortables    int
	Draws        int
	PassChanges  int
	NonSeparable int
}

// RenderQueue turns the renderables of one frame into an ordered draw list
// that minimizes pass changes according to its StateReductionMode.
//
// A queue is used from a single goroutine in the cycle
// Clear, Add..., Sort, Elements. Renderables are borrowed and must outlive
// the cycle.
type RenderQueue struct {
	mode StateReductionMode

	elements  []*core.Renderable
	sortables []sortableElement
	order     []int32
	sorted    []Element

	nextSeq uint32
	stats   Stats
}

func New(mode StateReductionMode) *RenderQueue {
	return &RenderQueue{mode: mode}
}

func (q *RenderQueue) Mode() StateReductionMode { return q.mode }

// Len returns the number of renderables added since the last Clear.
func (q *RenderQueue) Len() int { return len(q.elements) }

// Clear empties the queue and restarts the sequence counter. Backing storage
// is kept for the next frame.
func (q *RenderQueue) Clear() {
	clear(q.elements)
	q.elements = q.elements[:0]
	q.sortables = q.sortables[:0]
	q.order = q.order[:0]
	clear(q.sorted)
	q.sorted = q.sorted[:0]
	q.nextSeq = 0
	q.stats = Stats{}
}

// Add registers r at the given camera distance (larger is farther).
// r, its material and the material's shader must be non-nil.
func (q *RenderQueue) Add(r *core.Renderable, distFromCamera float32) {
	shader := r.Material.Shader

	switch shader.QueueSortType {
	case core.SortNone:
		distFromCamera = 0
	case core.SortBackToFront:
		distFromCamera = -distFromCamera
	}

	numPasses := r.Material.NumPasses()
	if !shader.AllowSeparablePasses {
		numPasses = min(numPasses, 1)
	}

	owner := int32(len(q.elements))
	q.elements = append(q.elements, r)
	for i := 0; i < numPasses; i++ {
		q.order = append(q.order, int32(len(q.sortables)))
		q.sortables = append(q.sortables, sortableElement{
			seqIdx:         q.nextSeq,
			priority:       shader.QueuePriority,
			shaderID:       shader.ID,
			passIdx:        uint32(i),
			distFromCamera: distFromCamera,
			owner:          owner,
		})
		q.nextSeq++
	}
}

// Sort orders the registered rows and builds the element list returned by
// Elements. It replaces the result of any previous Sort.
func (q *RenderQueue) Sort() {
	q.sortOrder()

	clear(q.sorted)
	q.sorted = q.sorted[:0]
	q.expand()

	q.stats.Renderables = len(q.elements)
	q.stats.Sortables = len(q.sortables)
	q.stats.Draws = len(q.sorted)
	q.stats.PassChanges = 0
	for _, e := range q.sorted {
		if e.ApplyPass {
			q.stats.PassChanges++
		}
	}
}

// Elements returns the ordered draw list built by the last Sort. The slice is
// owned by the queue and valid until the next Clear or Sort.
func (q *RenderQueue) Elements() []Element { return q.sorted }

func (q *RenderQueue) Stats() Stats { return q.stats }
