package gpu

import (
	"fmt"

	"github.com/gekko3d/drawqueue/core"
)

// StateBinder applies the GPU state of one material pass.
type StateBinder struct{}

func NewStateBinder() *StateBinder { return &StateBinder{} }

// SetPass binds pass passIdx of m on ctx's device: every stage of the stage
// table is either bound (program and params) or explicitly unbound, then the
// blend, depth-stencil and rasterizer states are set, falling back to the
// context defaults for states the pass leaves nil.
//
// Must run on the core thread.
func (b *StateBinder) SetPass(ctx *Context, m *core.Material, passIdx int) error {
	ctx.mustOwn("SetPass")

	pass := m.Pass(passIdx)
	if pass == nil {
		return fmt.Errorf("pass %d of material %s (%d passes): %w", passIdx, m.ID, m.NumPasses(), ErrInvalidParams)
	}

	dev := ctx.Device()
	for i := range pass.Stages {
		stage := core.Stage(i)
		sp := &pass.Stages[i]
		if !sp.Enabled {
			dev.UnbindProgram(stage)
			continue
		}
		dev.BindProgram(stage, sp.Program)
		if sp.Params != nil {
			dev.BindParams(stage, sp.Params)
		}
	}

	defaults := ctx.Defaults()
	blend := pass.Blend
	if blend == nil {
		blend = defaults.Blend
	}
	depth := pass.DepthStencil
	if depth == nil {
		depth = defaults.DepthStencil
	}
	raster := pass.Rasterizer
	if raster == nil {
		raster = defaults.Rasterizer
	}
	dev.SetBlendState(blend)
	dev.SetDepthStencilState(depth, pass.StencilRef)
	dev.SetRasterizerState(raster)
	return nil
}
