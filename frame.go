package drawqueue

import (
	"fmt"
	"time"

	"github.com/gekko3d/drawqueue/core"
	"github.com/gekko3d/drawqueue/gpu"
	"github.com/gekko3d/drawqueue/queue"
)

// FrameItem is one visible renderable and its camera distance, as produced
// by the simulation side for one frame.
type FrameItem struct {
	Renderable *core.Renderable
	Distance   float32
}

type FrameStats struct {
	Frame       uint64
	Items       int
	Draws       int
	PassChanges int
	SortTime    time.Duration
	SubmitTime  time.Duration
}

// FrameTime tracks when the renderer last drew a frame.
type FrameTime struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64
}

func (t *FrameTime) tick(now time.Time) {
	if !t.Time.IsZero() {
		t.Dt = now.Sub(t.Time)
	}
	t.Time = now
	t.Frame++
}

// FrameRenderer draws the renderables of one view (camera or viewport) each
// frame. It owns the view's RenderQueue. Render must run on the core thread
// of its context.
type FrameRenderer struct {
	name      string
	ctx       *gpu.Context
	queue     *queue.RenderQueue
	binder    *gpu.StateBinder
	submitter *gpu.DrawSubmitter
	log       Logger
	time      FrameTime
}

func NewFrameRenderer(name string, dev gpu.Device, thread *gpu.CoreThread, cfg Config) *FrameRenderer {
	cfg = cfg.withDefaults()
	ctx := gpu.NewContext(dev, thread,
		gpu.WithDefaults(cfg.Defaults),
		gpu.WithLogger(cfg.Logger),
	)
	cfg.Logger.Debugf("frame renderer %q: state reduction %s, max vertex buffers %d",
		name, cfg.Mode, dev.Caps().MaxBoundVertexBuffers)
	return &FrameRenderer{
		name:      name,
		ctx:       ctx,
		queue:     queue.New(cfg.Mode),
		binder:    gpu.NewStateBinder(),
		submitter: gpu.NewDrawSubmitter(),
		log:       cfg.Logger,
	}
}

func (r *FrameRenderer) Name() string { return r.name }

func (r *FrameRenderer) Context() *gpu.Context { return r.ctx }

// Queue exposes the view's queue. Its Elements are those of the last frame.
func (r *FrameRenderer) Queue() *queue.RenderQueue { return r.queue }

func (r *FrameRenderer) Time() FrameTime { return r.time }

// Render sorts items and issues their draws: the pass is applied only where
// the queue flags a pass change, the draw always. The first failing draw
// aborts the frame.
func (r *FrameRenderer) Render(items []FrameItem) (FrameStats, error) {
	start := time.Now()
	r.time.tick(start)
	stats := FrameStats{Frame: r.time.Frame, Items: len(items)}

	q := r.queue
	q.Clear()
	for _, it := range items {
		q.Add(it.Renderable, it.Distance)
	}
	q.Sort()
	sorted := time.Now()
	stats.SortTime = sorted.Sub(start)

	for i, e := range q.Elements() {
		if e.ApplyPass {
			if err := r.binder.SetPass(r.ctx, e.Renderable.Material, e.PassIdx); err != nil {
				return stats, r.fail(stats, i, err)
			}
			stats.PassChanges++
		}
		if err := r.submitter.Draw(r.ctx, e.Renderable.Mesh, e.Renderable.SubMesh); err != nil {
			return stats, r.fail(stats, i, err)
		}
		stats.Draws++
	}
	stats.SubmitTime = time.Since(sorted)

	if r.log.DebugEnabled() {
		qs := q.Stats()
		r.log.Debugf("%s frame %d: %d items, %d rows, %d draws, %d pass changes, sort %v, submit %v",
			r.name, stats.Frame, stats.Items, qs.Sortables, stats.Draws, stats.PassChanges, stats.SortTime, stats.SubmitTime)
	}
	return stats, nil
}

func (r *FrameRenderer) fail(stats FrameStats, idx int, err error) error {
	err = fmt.Errorf("%s frame %d, draw %d: %w", r.name, stats.Frame, idx, err)
	r.log.Errorf("%v", err)
	return err
}
