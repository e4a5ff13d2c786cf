package core

import "github.com/google/uuid"

// AssetId identifies materials and meshes across frames.
type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// StageProgram is one entry of a pass's stage table.
type StageProgram struct {
	Enabled bool
	Program Program
	Params  ParamBlock
}

// Pass is one program + fixed-function configuration of a Material.
// nil state pointers select the engine default.
type Pass struct {
	Stages       [NumStages]StageProgram
	Blend        *BlendState
	DepthStencil *DepthStencilState
	StencilRef   uint32
	Rasterizer   *RasterizerState
}

// SetStage enables stage s with the given program and parameters.
func (p *Pass) SetStage(s Stage, prog Program, params ParamBlock) *Pass {
	p.Stages[s] = StageProgram{Enabled: true, Program: prog, Params: params}
	return p
}

func (p *Pass) HasStage(s Stage) bool {
	return p.Stages[s].Enabled
}

// Material is an ordered list of passes drawn with one shader.
type Material struct {
	ID     AssetId
	Shader *Shader
	Passes []*Pass
}

func NewMaterial(shader *Shader, passes ...*Pass) *Material {
	return &Material{
		ID:     makeAssetId(),
		Shader: shader,
		Passes: passes,
	}
}

func (m *Material) NumPasses() int { return len(m.Passes) }

// Pass returns pass i, or nil when i is out of range.
func (m *Material) Pass(i int) *Pass {
	if i < 0 || i >= len(m.Passes) {
		return nil
	}
	return m.Passes[i]
}
