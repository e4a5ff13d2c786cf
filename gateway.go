package drawqueue

import (
	"errors"
	"sync/atomic"

	"github.com/gekko3d/drawqueue/gpu"
)

var ErrGatewayClosed = errors.New("drawqueue: gateway closed")

// FrameDone receives the outcome of each frame on the core thread.
type FrameDone func(view string, stats FrameStats, err error)

// Gateway hands frames from the simulation goroutine to the core thread.
// SubmitFrame may be called from any goroutine; rendering happens in the
// order frames were submitted.
type Gateway struct {
	thread  *gpu.CoreThread
	onDone  FrameDone
	log     Logger
	closed  atomic.Bool
	pending atomic.Int64
}

func NewGateway(thread *gpu.CoreThread, log Logger, onDone FrameDone) *Gateway {
	if log == nil {
		log = NewNopLogger()
	}
	return &Gateway{thread: thread, onDone: onDone, log: log}
}

// SubmitFrame copies items and schedules view to render them. The
// renderables referenced by items must stay alive until the frame is drawn.
func (g *Gateway) SubmitFrame(view *FrameRenderer, items []FrameItem) error {
	if g.closed.Load() {
		return ErrGatewayClosed
	}
	frame := make([]FrameItem, len(items))
	copy(frame, items)

	g.pending.Add(1)
	ok := g.thread.Post(func() {
		defer g.pending.Add(-1)
		stats, err := view.Render(frame)
		if g.onDone != nil {
			g.onDone(view.Name(), stats, err)
		}
	})
	if !ok {
		g.pending.Add(-1)
		return ErrGatewayClosed
	}
	return nil
}

// Pending returns the number of frames submitted but not yet rendered.
func (g *Gateway) Pending() int { return int(g.pending.Load()) }

// Flush blocks until every frame submitted before the call has rendered.
func (g *Gateway) Flush() error {
	if !g.thread.Do(func() {}) {
		return ErrGatewayClosed
	}
	return nil
}

// Close rejects further frames. Frames already queued still render.
func (g *Gateway) Close() {
	if g.closed.CompareAndSwap(false, true) {
		g.log.Debugf("gateway closed with %d pending frames", g.Pending())
	}
}
