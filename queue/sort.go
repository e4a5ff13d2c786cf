package queue

import (
	"cmp"
	"slices"
)

type sortableCompare func(a, b *sortableElement) int

// compareNoGroup: priority desc, distance asc, submission order.
func compareNoGroup(a, b *sortableElement) int {
	if c := cmp.Compare(b.priority, a.priority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.distFromCamera, b.distFromCamera); c != 0 {
		return c
	}
	return cmp.Compare(a.seqIdx, b.seqIdx)
}

// comparePreferGroup: priority desc, shader, pass, distance asc, submission order.
func comparePreferGroup(a, b *sortableElement) int {
	if c := cmp.Compare(b.priority, a.priority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.shaderID, b.shaderID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.passIdx, b.passIdx); c != 0 {
		return c
	}
	if c := cmp.Compare(a.distFromCamera, b.distFromCamera); c != 0 {
		return c
	}
	return cmp.Compare(a.seqIdx, b.seqIdx)
}

// comparePreferSort: priority desc, distance asc, shader, pass, submission order.
func comparePreferSort(a, b *sortableElement) int {
	if c := cmp.Compare(b.priority, a.priority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.distFromCamera, b.distFromCamera); c != 0 {
		return c
	}
	if c := cmp.Compare(a.shaderID, b.shaderID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.passIdx, b.passIdx); c != 0 {
		return c
	}
	return cmp.Compare(a.seqIdx, b.seqIdx)
}

func comparatorFor(mode StateReductionMode) sortableCompare {
	switch mode {
	case ReductionMaterial:
		return comparePreferGroup
	case ReductionDistance:
		return comparePreferSort
	default:
		return compareNoGroup
	}
}

// sortOrder permutes q.order; the rows in q.sortables stay in place.
func (q *RenderQueue) sortOrder() {
	compare := comparatorFor(q.mode)
	rows := q.sortables
	slices.SortFunc(q.order, func(i, j int32) int {
		return compare(&rows[i], &rows[j])
	})
}
