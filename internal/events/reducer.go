package events

import (
	"sort"

	"github.com/10xdev4u-alt/plan/internal/store"
)

// Apply folds a change event into a local idea list and reports whether
// the caller must re-fetch the canonical list instead. Inserts are merged
// directly: the new idea is prepended and the list re-sorted by priority
// descending, treating a missing priority as 0 and preserving the existing
// relative order on ties. Updates and deletes are not merged incrementally;
// they return refetch=true and the list unchanged.
//
// The function never mutates its input.
func Apply(list []store.Idea, ev Event) (next []store.Idea, refetch bool) {
	switch ev.Type {
	case TypeInsert:
		next = make([]store.Idea, 0, len(list)+1)
		next = append(next, ev.Idea)
		next = append(next, list...)
		sort.SliceStable(next, func(i, j int) bool {
			return priorityOrZero(next[i]) > priorityOrZero(next[j])
		})
		return next, false
	default:
		return list, true
	}
}

func priorityOrZero(idea store.Idea) float64 {
	if idea.PriorityScore == nil {
		return 0
	}
	return *idea.PriorityScore
}
