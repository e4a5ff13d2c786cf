package wgpubackend

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/drawqueue/core"
)

func vertexFormat(f core.VertexFormat) wgpu.VertexFormat {
	switch f {
	case core.VertexFloat2:
		return wgpu.VertexFormatFloat32x2
	case core.VertexFloat3:
		return wgpu.VertexFormatFloat32x3
	case core.VertexFloat4:
		return wgpu.VertexFormatFloat32x4
	case core.VertexUByte4Norm:
		return wgpu.VertexFormatUnorm8x4
	default:
		panic("unsupported vertex format")
	}
}

// vertexLayouts converts d into one layout per slot 0..maxSlot. Slots the
// declaration does not read get an empty layout.
func vertexLayouts(d *core.VertexDeclaration) []wgpu.VertexBufferLayout {
	if d == nil || len(d.Elements) == 0 {
		return nil
	}
	var maxSlot uint32
	for _, e := range d.Elements {
		maxSlot = max(maxSlot, e.Slot)
	}

	layouts := make([]wgpu.VertexBufferLayout, maxSlot+1)
	for slot := range layouts {
		elems := d.SlotElements(uint32(slot))
		if len(elems) == 0 {
			continue
		}
		attrs := make([]wgpu.VertexAttribute, len(elems))
		for i, e := range elems {
			attrs[i] = wgpu.VertexAttribute{
				ShaderLocation: e.Location,
				Offset:         e.Offset,
				Format:         vertexFormat(e.Format),
			}
		}
		layouts[slot] = wgpu.VertexBufferLayout{
			ArrayStride: d.Strides[uint32(slot)],
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		}
	}
	return layouts
}

var blendFactors = [...]wgpu.BlendFactor{
	core.BlendZero:             wgpu.BlendFactorZero,
	core.BlendOne:              wgpu.BlendFactorOne,
	core.BlendSrcColor:         wgpu.BlendFactorSrc,
	core.BlendOneMinusSrcColor: wgpu.BlendFactorOneMinusSrc,
	core.BlendSrcAlpha:         wgpu.BlendFactorSrcAlpha,
	core.BlendOneMinusSrcAlpha: wgpu.BlendFactorOneMinusSrcAlpha,
	core.BlendDstColor:         wgpu.BlendFactorDst,
	core.BlendOneMinusDstColor: wgpu.BlendFactorOneMinusDst,
	core.BlendDstAlpha:         wgpu.BlendFactorDstAlpha,
	core.BlendOneMinusDstAlpha: wgpu.BlendFactorOneMinusDstAlpha,
}

var blendOps = [...]wgpu.BlendOperation{
	core.BlendOpAdd:             wgpu.BlendOperationAdd,
	core.BlendOpSubtract:        wgpu.BlendOperationSubtract,
	core.BlendOpReverseSubtract: wgpu.BlendOperationReverseSubtract,
	core.BlendOpMin:             wgpu.BlendOperationMin,
	core.BlendOpMax:             wgpu.BlendOperationMax,
}

func blendComponent(c core.BlendComponent) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		SrcFactor: blendFactors[c.Src],
		DstFactor: blendFactors[c.Dst],
		Operation: blendOps[c.Op],
	}
}

func colorTarget(format wgpu.TextureFormat, b *core.BlendState) wgpu.ColorTargetState {
	t := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: wgpu.ColorWriteMask(b.WriteMask),
	}
	if b.Enabled {
		t.Blend = &wgpu.BlendState{
			Color: blendComponent(b.Color),
			Alpha: blendComponent(b.Alpha),
		}
	}
	return t
}

var compareFuncs = [...]wgpu.CompareFunction{
	core.CompareNever:        wgpu.CompareFunctionNever,
	core.CompareLess:         wgpu.CompareFunctionLess,
	core.CompareEqual:        wgpu.CompareFunctionEqual,
	core.CompareLessEqual:    wgpu.CompareFunctionLessEqual,
	core.CompareGreater:      wgpu.CompareFunctionGreater,
	core.CompareNotEqual:     wgpu.CompareFunctionNotEqual,
	core.CompareGreaterEqual: wgpu.CompareFunctionGreaterEqual,
	core.CompareAlways:       wgpu.CompareFunctionAlways,
}

var stencilOps = [...]wgpu.StencilOperation{
	core.StencilKeep:           wgpu.StencilOperationKeep,
	core.StencilZero:           wgpu.StencilOperationZero,
	core.StencilReplace:        wgpu.StencilOperationReplace,
	core.StencilInvert:         wgpu.StencilOperationInvert,
	core.StencilIncrementClamp: wgpu.StencilOperationIncrementClamp,
	core.StencilDecrementClamp: wgpu.StencilOperationDecrementClamp,
	core.StencilIncrementWrap:  wgpu.StencilOperationIncrementWrap,
	core.StencilDecrementWrap:  wgpu.StencilOperationDecrementWrap,
}

func stencilFace(f core.StencilFace, enabled bool) wgpu.StencilFaceState {
	if !enabled {
		return wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		}
	}
	return wgpu.StencilFaceState{
		Compare:     compareFuncs[f.Compare],
		FailOp:      stencilOps[f.FailOp],
		DepthFailOp: stencilOps[f.DepthFailOp],
		PassOp:      stencilOps[f.PassOp],
	}
}

// depthStencil returns nil when the render pass has no depth attachment.
func depthStencil(format wgpu.TextureFormat, ds *core.DepthStencilState, rs *core.RasterizerState) *wgpu.DepthStencilState {
	if format == wgpu.TextureFormatUndefined {
		return nil
	}
	compare := compareFuncs[ds.DepthCompare]
	if !ds.DepthTest {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:              format,
		DepthWriteEnabled:   ds.DepthWrite,
		DepthCompare:        compare,
		StencilFront:        stencilFace(ds.StencilFront, ds.StencilEnable),
		StencilBack:         stencilFace(ds.StencilBack, ds.StencilEnable),
		StencilReadMask:     ds.StencilRead,
		StencilWriteMask:    ds.StencilWrite,
		DepthBias:           rs.DepthBias,
		DepthBiasSlopeScale: rs.SlopeScaleBias,
	}
}

var topologies = [...]wgpu.PrimitiveTopology{
	core.PointList:     wgpu.PrimitiveTopologyPointList,
	core.LineList:      wgpu.PrimitiveTopologyLineList,
	core.LineStrip:     wgpu.PrimitiveTopologyLineStrip,
	core.TriangleList:  wgpu.PrimitiveTopologyTriangleList,
	core.TriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
}

func indexFormat(t core.IndexType) wgpu.IndexFormat {
	if t == core.Index32 {
		return wgpu.IndexFormatUint32
	}
	return wgpu.IndexFormatUint16
}

func primitive(op core.DrawOp, idx core.IndexType, rs *core.RasterizerState) wgpu.PrimitiveState {
	p := wgpu.PrimitiveState{
		Topology:  topologies[op],
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeNone,
	}
	if op == core.LineStrip || op == core.TriangleStrip {
		p.StripIndexFormat = indexFormat(idx)
	}
	if rs.Front == core.FrontCW {
		p.FrontFace = wgpu.FrontFaceCW
	}
	switch rs.Cull {
	case core.CullFront:
		p.CullMode = wgpu.CullModeFront
	case core.CullBack:
		p.CullMode = wgpu.CullModeBack
	}
	return p
}
