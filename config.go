package drawqueue

import (
	"github.com/gekko3d/drawqueue/gpu"
	"github.com/gekko3d/drawqueue/queue"
)

// Config configures a FrameRenderer. The zero value is usable.
type Config struct {
	// Mode is the state reduction policy of the renderer's queue. It cannot
	// be changed after NewFrameRenderer.
	Mode queue.StateReductionMode

	// Defaults replace the engine default fixed-function states for passes
	// that leave them nil. Unset fields keep the engine defaults.
	Defaults gpu.Defaults

	// Logger is used when set; otherwise a DefaultLogger is created from
	// LogPrefix and Debug.
	Logger    Logger
	LogPrefix string
	Debug     bool

	// Backlog bounds the number of frames waiting for the core thread.
	Backlog int
}

func (c Config) withDefaults() Config {
	if c.LogPrefix == "" {
		c.LogPrefix = "drawqueue"
	}
	if c.Logger == nil {
		c.Logger = NewDefaultLogger(c.LogPrefix, c.Debug)
	}
	if c.Backlog <= 0 {
		c.Backlog = 2
	}
	return c
}

// NewCoreThread creates the core thread for renderers sharing cfg. The
// caller either runs it (CoreThread.Run) or pumps it from its own loop.
func NewCoreThread(name string, cfg Config) *gpu.CoreThread {
	cfg = cfg.withDefaults()
	return gpu.NewCoreThread(name, cfg.Backlog, cfg.Logger)
}
