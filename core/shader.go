package core

import (
	"fmt"
	"sync/atomic"
)

// QueueSortType selects how the camera distance of a renderable is used when
// the render queue orders draws of a shader.
type QueueSortType int

const (
	SortNone QueueSortType = iota
	SortBackToFront
	SortFrontToBack
)

func (t QueueSortType) String() string {
	switch t {
	case SortNone:
		return "none"
	case SortBackToFront:
		return "back-to-front"
	case SortFrontToBack:
		return "front-to-back"
	default:
		return fmt.Sprintf("QueueSortType(%d)", int(t))
	}
}

// Priorities commonly used for QueuePriority. Higher draws first.
const (
	PriorityOpaque      uint32 = 2000
	PriorityTransparent uint32 = 1000
	PriorityOverlay     uint32 = 500
)

var nextShaderID atomic.Uint32

// Shader carries the queue-facing properties of a GPU program set. Its passes
// live on the Material.
type Shader struct {
	ID                   uint32
	Name                 string
	QueuePriority        uint32
	QueueSortType        QueueSortType
	AllowSeparablePasses bool
}

type ShaderOption func(*Shader)

func WithPriority(p uint32) ShaderOption {
	return func(s *Shader) { s.QueuePriority = p }
}

func WithSortType(t QueueSortType) ShaderOption {
	return func(s *Shader) { s.QueueSortType = t }
}

func WithSeparablePasses(allow bool) ShaderOption {
	return func(s *Shader) { s.AllowSeparablePasses = allow }
}

// NewShader creates a shader with a process-unique ID. Defaults match an
// opaque, front-to-back sorted, separable shader.
func NewShader(name string, opts ...ShaderOption) *Shader {
	s := &Shader{
		ID:                   nextShaderID.Add(1),
		Name:                 name,
		QueuePriority:        PriorityOpaque,
		QueueSortType:        SortFrontToBack,
		AllowSeparablePasses: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
