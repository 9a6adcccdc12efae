// Package schedule holds the live, time-indexed plan of sub-tasks and the
// operations that keep it contiguous across pauses and early terminations.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/fakeyudi/labclock/internal/catalog"
)

// ScheduledTask is one sub-task placed on the wall clock.
//
// PlannedEnd equals PlannedStart+Duration only when the schedule is built:
// a pause extends PlannedEnd and an early end shrinks it, while Duration
// always keeps the nominal value.
type ScheduledTask struct {
	Name         string
	Duration     time.Duration
	PlannedStart time.Time
	PlannedEnd   time.Time
}

// Schedule is an ordered, contiguous sequence of tasks:
// s[i].PlannedEnd == s[i+1].PlannedStart for every adjacent pair.
type Schedule []ScheduledTask

// Build places every catalog task back to back starting at start.
func Build(tasks []catalog.SubtaskDefinition, start time.Time) Schedule {
	s := make(Schedule, 0, len(tasks))
	cursor := start
	for _, t := range tasks {
		end := cursor.Add(t.Duration())
		s = append(s, ScheduledTask{
			Name:         t.Name,
			Duration:     t.Duration(),
			PlannedStart: cursor,
			PlannedEnd:   end,
		})
		cursor = end
	}
	return s
}

// LocateTaskIndex returns the index of the task active at t: -1 if t precedes
// the first task (or the schedule is empty), len(s) if t is at or after the
// last task's end, otherwise the unique i with start[i] <= t < end[i].
func LocateTaskIndex(s Schedule, t time.Time) int {
	if len(s) == 0 || t.Before(s[0].PlannedStart) {
		return -1
	}
	if !t.Before(s[len(s)-1].PlannedEnd) {
		return len(s)
	}
	// Contiguity makes the end instants non-decreasing, so the first task
	// ending after t is the active one.
	return sort.Search(len(s), func(i int) bool {
		return t.Before(s[i].PlannedEnd)
	})
}

// ShiftFrom moves every task at index >= from by d (which may be negative).
// Earlier tasks are left untouched.
func ShiftFrom(s Schedule, from int, d time.Duration) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(s); i++ {
		s[i].PlannedStart = s[i].PlannedStart.Add(d)
		s[i].PlannedEnd = s[i].PlannedEnd.Add(d)
	}
}

// AbsorbPause corrects the schedule for a pause of length d that ended at at.
// Before the first task the whole plan moves; during a task that task absorbs
// the dead time and everything after it moves; after completion nothing changes.
func AbsorbPause(s Schedule, at time.Time, d time.Duration) {
	if d <= 0 {
		return
	}
	idx := LocateTaskIndex(s, at)
	switch {
	case idx == -1:
		ShiftFrom(s, 0, d)
	case idx < len(s):
		s[idx].PlannedEnd = s[idx].PlannedEnd.Add(d)
		ShiftFrom(s, idx+1, d)
	}
}

// EndTaskEarly ends the task active at now and pulls every later task earlier
// by the time skipped. It reports the skipped duration and whether anything
// changed.
func EndTaskEarly(s Schedule, now time.Time) (time.Duration, bool) {
	idx := LocateTaskIndex(s, now)
	if idx < 0 || idx >= len(s) {
		return 0, false
	}
	remaining := s[idx].PlannedEnd.Sub(now)
	if remaining <= 0 {
		return 0, false
	}
	s[idx].PlannedEnd = now
	ShiftFrom(s, idx+1, -remaining)
	return remaining, true
}

// IsComplete reports whether every task has ended by t.
func IsComplete(s Schedule, t time.Time) bool {
	return LocateTaskIndex(s, t) >= len(s)
}

// Remaining returns the active task index at t and the time left in it.
// The duration is zero when no task is active.
func Remaining(s Schedule, t time.Time) (int, time.Duration) {
	idx := LocateTaskIndex(s, t)
	if idx < 0 || idx >= len(s) {
		return idx, 0
	}
	left := s[idx].PlannedEnd.Sub(t)
	if left < 0 {
		left = 0
	}
	return idx, left
}

// Start is the planned start of the first task.
func (s Schedule) Start() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].PlannedStart
}

// End is the planned end of the last task.
func (s Schedule) End() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].PlannedEnd
}

// Total is the wall-clock span of the whole schedule.
func (s Schedule) Total() time.Duration {
	return s.End().Sub(s.Start())
}

// Clone returns an independent copy.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	copy(out, s)
	return out
}

// Contiguous returns an error naming the first adjacent pair that does not
// line up, or a task that ends before it starts.
func (s Schedule) Contiguous() error {
	for i, t := range s {
		if t.PlannedEnd.Before(t.PlannedStart) {
			return fmt.Errorf("task %d (%s) ends before it starts", i, t.Name)
		}
		if i+1 < len(s) && !t.PlannedEnd.Equal(s[i+1].PlannedStart) {
			return fmt.Errorf("gap between task %d (%s) ending %s and task %d (%s) starting %s",
				i, t.Name, t.PlannedEnd.Format(time.RFC3339Nano),
				i+1, s[i+1].Name, s[i+1].PlannedStart.Format(time.RFC3339Nano))
		}
	}
	return nil
}
