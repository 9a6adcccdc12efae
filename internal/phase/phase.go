// Package phase maps scheduled sub-tasks onto their human-facing phase groups.
package phase

import (
	"sort"
	"time"

	"github.com/fakeyudi/labclock/internal/catalog"
	"github.com/fakeyudi/labclock/internal/schedule"
)

// Table is the validated two-way mapping between phase groups and task
// indexes of a schedule.
type Table struct {
	Groups      []catalog.PhaseGroup
	TasksOf     [][]int // phase index → sorted task indexes
	PhaseOfTask []int   // task index → phase index
}

// Map matches every group's sub-task names against the schedule's task
// names. Unlike a best-effort lookup, any name that does not resolve to
// exactly one task, and any task left without a phase, is an error.
func Map(s schedule.Schedule, groups []catalog.PhaseGroup) (*Table, error) {
	byName := make(map[string]int, len(s))
	for i, t := range s {
		if _, dup := byName[t.Name]; dup {
			return nil, &catalog.DuplicateTaskNameError{Name: t.Name}
		}
		byName[t.Name] = i
	}

	tbl := &Table{
		Groups:      groups,
		TasksOf:     make([][]int, len(groups)),
		PhaseOfTask: make([]int, len(s)),
	}
	for i := range tbl.PhaseOfTask {
		tbl.PhaseOfTask[i] = -1
	}

	for g, group := range groups {
		idxs := make([]int, 0, len(group.Subtasks))
		for _, name := range group.Subtasks {
			i, ok := byName[name]
			if !ok {
				return nil, &catalog.UnknownSubtaskError{Group: group.Title, Name: name}
			}
			if tbl.PhaseOfTask[i] != -1 {
				return nil, &catalog.DuplicateTaskNameError{Name: name, Group: group.Title}
			}
			tbl.PhaseOfTask[i] = g
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		tbl.TasksOf[g] = idxs
	}

	for i, p := range tbl.PhaseOfTask {
		if p == -1 {
			return nil, &catalog.UngroupedSubtaskError{Name: s[i].Name}
		}
	}
	return tbl, nil
}

// Len is the number of phases.
func (t *Table) Len() int { return len(t.Groups) }

// PhaseOf returns the phase of task index i, or -1 when i is out of range.
func (t *Table) PhaseOf(i int) int {
	if i < 0 || i >= len(t.PhaseOfTask) {
		return -1
	}
	return t.PhaseOfTask[i]
}

// CurrentPhase returns the phase holding the task active at now, or -1 before
// the first task starts and after the last one ends.
func (t *Table) CurrentPhase(s schedule.Schedule, now time.Time) int {
	return t.PhaseOf(schedule.LocateTaskIndex(s, now))
}

// ShouldExpand reports whether phase p is displayed expanded while current is
// active: the active phase and the one right after it, if any.
func ShouldExpand(p, current, count int) bool {
	if current < 0 {
		return false
	}
	if p == current {
		return true
	}
	return current < count-1 && p == current+1
}

// ShouldExpand is ShouldExpand bound to this table's phase count.
func (t *Table) ShouldExpand(p, current int) bool {
	return ShouldExpand(p, current, t.Len())
}
