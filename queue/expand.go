package queue

type expandState int

const (
	stateAdvance expandState = iota
	stateEmitSeparable
	stateEmitNonSeparable
)

// expand walks the sorted permutation and appends the draw list.
//
// Separable rows become one element whose ApplyPass is set only when the
// (shader, pass) pair changes. A non-separable row stands for its whole
// material and becomes one element per pass, each applying its pass.
func (q *RenderQueue) expand() {
	var (
		state     = stateAdvance
		cursor    int
		row       *sortableElement
		passLeft  int
		passNext  int
		havePrev  bool
		prevShade uint32
		prevPass  uint32
		nonSep    int
	)

	for {
		switch state {
		case stateAdvance:
			if cursor == len(q.order) {
				q.stats.NonSeparable = nonSep
				return
			}
			row = &q.sortables[q.order[cursor]]
			cursor++

			mat := q.elements[row.owner].Material
			if mat.Shader.AllowSeparablePasses {
				state = stateEmitSeparable
			} else {
				passLeft = mat.NumPasses()
				passNext = 0
				nonSep++
				state = stateEmitNonSeparable
			}

		case stateEmitSeparable:
			apply := !havePrev || prevShade != row.shaderID || prevPass != row.passIdx
			q.sorted = append(q.sorted, Element{
				Renderable: q.elements[row.owner],
				PassIdx:    int(row.passIdx),
				ApplyPass:  apply,
			})
			havePrev, prevShade, prevPass = true, row.shaderID, row.passIdx
			state = stateAdvance

		case stateEmitNonSeparable:
			if passLeft == 0 {
				state = stateAdvance
				continue
			}
			q.sorted = append(q.sorted, Element{
				Renderable: q.elements[row.owner],
				PassIdx:    passNext,
				ApplyPass:  true,
			})
			havePrev, prevShade, prevPass = true, row.shaderID, uint32(passNext)
			passNext++
			passLeft--
		}
	}
}
