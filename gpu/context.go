package gpu

import "github.com/gekko3d/drawqueue/core"

// Defaults are the fixed-function states applied when a pass leaves one unset.
type Defaults struct {
	Blend        *core.BlendState
	DepthStencil *core.DepthStencilState
	Rasterizer   *core.RasterizerState
}

func EngineDefaults() Defaults {
	return Defaults{
		Blend:        core.DefaultBlendState(),
		DepthStencil: core.DefaultDepthStencilState(),
		Rasterizer:   core.DefaultRasterizerState(),
	}
}

// Context is one render context: a device, the thread that owns it and the
// defaults used with it. Several contexts can exist side by side, each with
// its own device state.
type Context struct {
	dev      Device
	thread   *CoreThread
	defaults Defaults
	log      Logger
}

type ContextOption func(*Context)

func WithDefaults(d Defaults) ContextOption {
	return func(c *Context) {
		if d.Blend != nil {
			c.defaults.Blend = d.Blend
		}
		if d.DepthStencil != nil {
			c.defaults.DepthStencil = d.DepthStencil
		}
		if d.Rasterizer != nil {
			c.defaults.Rasterizer = d.Rasterizer
		}
	}
}

func WithLogger(l Logger) ContextOption {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

func NewContext(dev Device, thread *CoreThread, opts ...ContextOption) *Context {
	if dev == nil {
		panic("gpu.NewContext: nil device")
	}
	if thread == nil {
		panic("gpu.NewContext: nil core thread")
	}
	c := &Context{
		dev:      dev,
		thread:   thread,
		defaults: EngineDefaults(),
		log:      nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) Device() Device { return c.dev }

func (c *Context) Thread() *CoreThread { return c.thread }

func (c *Context) Defaults() Defaults { return c.defaults }

func (c *Context) Caps() Caps { return c.dev.Caps() }

func (c *Context) Logger() Logger { return c.log }

func (c *Context) mustOwn(op string) { c.thread.MustOwn(op) }
