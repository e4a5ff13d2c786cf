package core

import "fmt"

// Stage is a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageGeometry
	StageHull
	StageDomain
	StageCompute

	NumStages = 6
)

var stageNames = [NumStages]string{"vertex", "fragment", "geometry", "hull", "domain", "compute"}

func (s Stage) String() string {
	if s >= 0 && int(s) < NumStages {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Program is a compiled GPU program for one stage. Owned by the GPU layer.
type Program interface {
	Stage() Stage
}

// ParamBlock is the set of parameters (uniforms, textures, samplers) a stage
// reads, ready to be bound. Owned by the GPU layer.
type ParamBlock interface{}

type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

type BlendOp int

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

type BlendComponent struct {
	Src BlendFactor
	Dst BlendFactor
	Op  BlendOp
}

// BlendState describes color blending for the single render target.
type BlendState struct {
	Enabled   bool
	Color     BlendComponent
	Alpha     BlendComponent
	WriteMask uint8 // R=1, G=2, B=4, A=8
}

type CompareFunc int

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

type StencilOp int

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilInvert
	StencilIncrementClamp
	StencilDecrementClamp
	StencilIncrementWrap
	StencilDecrementWrap
)

type StencilFace struct {
	Compare     CompareFunc
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
}

type DepthStencilState struct {
	DepthTest     bool
	DepthWrite    bool
	DepthCompare  CompareFunc
	StencilEnable bool
	StencilFront  StencilFace
	StencilBack   StencilFace
	StencilRead   uint32
	StencilWrite  uint32
}

type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

type FrontFace int

const (
	FrontCCW FrontFace = iota
	FrontCW
)

type RasterizerState struct {
	Cull           CullMode
	Front          FrontFace
	DepthBias      int32
	SlopeScaleBias float32
}

// DefaultBlendState is opaque writes to all channels.
func DefaultBlendState() *BlendState {
	return &BlendState{
		Color:     BlendComponent{Src: BlendOne, Dst: BlendZero, Op: BlendOpAdd},
		Alpha:     BlendComponent{Src: BlendOne, Dst: BlendZero, Op: BlendOpAdd},
		WriteMask: 0xF,
	}
}

// AlphaBlendState is non-premultiplied "over" blending.
func AlphaBlendState() *BlendState {
	return &BlendState{
		Enabled:   true,
		Color:     BlendComponent{Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha, Op: BlendOpAdd},
		Alpha:     BlendComponent{Src: BlendOne, Dst: BlendOneMinusSrcAlpha, Op: BlendOpAdd},
		WriteMask: 0xF,
	}
}

func DefaultDepthStencilState() *DepthStencilState {
	always := StencilFace{Compare: CompareAlways}
	return &DepthStencilState{
		DepthTest:    true,
		DepthWrite:   true,
		DepthCompare: CompareLess,
		StencilFront: always,
		StencilBack:  always,
		StencilRead:  0xFF,
		StencilWrite: 0xFF,
	}
}

func DefaultRasterizerState() *RasterizerState {
	return &RasterizerState{Cull: CullBack, Front: FrontCCW}
}
