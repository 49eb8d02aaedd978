// Package board holds the kanban semantics for milestones: column
// grouping, the transition predicate, and the optimistic two-phase move
// used by the drag-and-drop flow.
package board

import (
	"fmt"

	"github.com/10xdev4u-alt/plan/internal/store"
)

// Statuses returns the kanban columns in display order.
func Statuses() []string {
	return []string{
		store.MilestonePending,
		store.MilestoneInProgress,
		store.MilestoneCompleted,
		store.MilestoneBlocked,
	}
}

var columnLabels = map[string]string{
	store.MilestonePending:    "Pending",
	store.MilestoneInProgress: "In Progress",
	store.MilestoneCompleted:  "Completed",
	store.MilestoneBlocked:    "Blocked",
}

// Label returns the display title for a column, falling back to the raw
// status.
func Label(status string) string {
	if l, ok := columnLabels[status]; ok {
		return l
	}
	return status
}

// CanMove reports whether a drag from one column to another is allowed.
// Every transition between valid columns is permitted; the predicate
// exists so a stricter workflow is a one-function change.
func CanMove(from, to string) bool {
	return store.ValidMilestoneStatus(from) && store.ValidMilestoneStatus(to)
}

// Columns is an in-memory snapshot of a board, one ordered slice per
// status. Build it with Group; milestones keep the order they arrive in.
type Columns map[string][]store.Milestone

// Group splits milestones into columns by status. Input order (the
// store's order_index ordering) is preserved within each column.
func Group(milestones []store.Milestone) Columns {
	cols := make(Columns, len(Statuses()))
	for _, status := range Statuses() {
		cols[status] = nil
	}
	for _, m := range milestones {
		cols[m.Status] = append(cols[m.Status], m)
	}
	return cols
}

// Move describes a drag: milestone, destination column, and position
// within it. ToIndex -1 appends at the end of the column.
type Move struct {
	MilestoneID string
	ToStatus    string
	ToIndex     int
}

// Apply performs the move on the in-memory board and returns a revert
// function restoring the pre-move snapshot. This is the optimistic half of
// the two-phase update: apply, then persist; if persistence fails, call
// revert (or rebuild from a canonical re-read) and surface the failure.
func (c Columns) Apply(m Move) (revert func(), err error) {
	if !store.ValidMilestoneStatus(m.ToStatus) {
		return nil, fmt.Errorf("unknown status %q", m.ToStatus)
	}

	fromStatus, fromIdx := c.find(m.MilestoneID)
	if fromStatus == "" {
		return nil, fmt.Errorf("milestone %s not on board", m.MilestoneID)
	}
	if !CanMove(fromStatus, m.ToStatus) {
		return nil, fmt.Errorf("move from %q to %q not allowed", fromStatus, m.ToStatus)
	}

	snapshot := c.clone()

	moved := c[fromStatus][fromIdx]
	c[fromStatus] = append(c[fromStatus][:fromIdx], c[fromStatus][fromIdx+1:]...)

	moved.Status = m.ToStatus
	dest := c[m.ToStatus]
	idx := m.ToIndex
	if idx < 0 || idx > len(dest) {
		idx = len(dest)
	}
	dest = append(dest, store.Milestone{})
	copy(dest[idx+1:], dest[idx:])
	dest[idx] = moved
	c[m.ToStatus] = dest

	return func() {
		for status := range c {
			delete(c, status)
		}
		for status, col := range snapshot {
			c[status] = col
		}
	}, nil
}

func (c Columns) find(id string) (status string, idx int) {
	for status, col := range c {
		for i, m := range col {
			if m.ID == id {
				return status, i
			}
		}
	}
	return "", -1
}

func (c Columns) clone() Columns {
	out := make(Columns, len(c))
	for status, col := range c {
		copied := make([]store.Milestone, len(col))
		copy(copied, col)
		out[status] = copied
	}
	return out
}
