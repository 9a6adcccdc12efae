package session

import (
	"time"

	"github.com/fakeyudi/labclock/internal/schedule"
)

// TaskStatus is the display state of one scheduled task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusInProgress
	StatusCompleted
)

// View is a read-only snapshot for the presentation layer.
type View struct {
	State     State
	Now       time.Time // effective now: frozen while paused
	Tasks     schedule.Schedule
	Current   int // LocateTaskIndex at Now; -1 before start, len(Tasks) once complete
	Phase     int // -1 when no task is active
	Remaining time.Duration
	Complete  bool
}

// Snapshot captures the session as seen at now. Before the session starts,
// Tasks is a preview of the plan as if it started at now.
func (s *Session) Snapshot(now time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.PauseStart != nil {
		at := *st.PauseStart
		st.PauseStart = &at
	}
	v := View{State: st, Now: st.EffectiveNow(now), Current: -1, Phase: -1}
	if !st.Started {
		v.Tasks = schedule.Build(s.cat.Tasks, now)
		return v
	}

	v.Tasks = s.sched.Clone()
	v.Current, v.Remaining = schedule.Remaining(v.Tasks, v.Now)
	v.Phase = s.phases.PhaseOf(v.Current)
	v.Complete = v.Current >= len(v.Tasks)
	return v
}

// Status reports whether task i is pending, in progress or completed at the
// snapshot's effective now.
func (v View) Status(i int) TaskStatus {
	if !v.State.Started {
		return StatusPending
	}
	t := v.Tasks[i]
	switch {
	case v.Now.Before(t.PlannedStart):
		return StatusPending
	case v.Now.Before(t.PlannedEnd):
		return StatusInProgress
	default:
		return StatusCompleted
	}
}
