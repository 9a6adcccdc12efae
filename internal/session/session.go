// Package session drives one operator session over the schedule engine.
package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/labclock/internal/catalog"
	"github.com/fakeyudi/labclock/internal/phase"
	"github.com/fakeyudi/labclock/internal/schedule"
)

// Session owns the live schedule and state. Every mutation and snapshot holds
// the same lock so a reader never observes a half-applied shift.
type Session struct {
	mu     sync.Mutex
	cat    catalog.Catalog
	phases *phase.Table
	sched  schedule.Schedule
	state  State
	log    zerolog.Logger
}

// New validates the catalog and its phase mapping and returns an unstarted
// session.
func New(c catalog.Catalog, log zerolog.Logger) (*Session, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	tbl, err := phase.Map(schedule.Build(c.Tasks, time.Time{}), c.Phases)
	if err != nil {
		return nil, err
	}
	return &Session{cat: c, phases: tbl, log: log}, nil
}

// Phases returns the phase table.
func (s *Session) Phases() *phase.Table { return s.phases }

// Start begins the session at now.
func (s *Session) Start(device, note string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, err := Start(&s.state, s.cat.Tasks, device, note, now)
	if err != nil {
		s.log.Warn().Err(err).Msg("session start rejected")
		return err
	}
	if sched == nil {
		return nil
	}
	s.sched = sched
	s.log.Info().
		Str("session", s.state.ID).
		Str("device", s.state.Device).
		Str("note", s.state.Note).
		Time("planned_end", sched.End()).
		Msg("session started")
	return nil
}

// TogglePause pauses a running session or resumes a paused one.
func (s *Session) TogglePause(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Paused {
		s.resume(now)
	} else {
		s.pause(now)
	}
}

// Pause freezes the countdown at now.
func (s *Session) Pause(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pause(now)
}

// Resume restarts the countdown, shifting the schedule by the pause length.
func (s *Session) Resume(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resume(now)
}

func (s *Session) pause(now time.Time) {
	if Pause(&s.state, now) {
		s.log.Info().Str("session", s.state.ID).
			Int("task", schedule.LocateTaskIndex(s.sched, now)).
			Msg("paused")
	}
}

func (s *Session) resume(now time.Time) {
	d, ok := Resume(s.sched, &s.state, now)
	if !ok {
		return
	}
	s.log.Info().Str("session", s.state.ID).
		Dur("paused_for", d).
		Time("planned_end", s.sched.End()).
		Msg("resumed")
	s.checkContiguous()
}

// RequestEndEarly asks for confirmation before ending the active task. It is
// ignored unless the session is running with a task in progress.
func (s *Session) RequestEndEarly(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Running() {
		return false
	}
	idx := schedule.LocateTaskIndex(s.sched, now)
	if idx < 0 || idx >= len(s.sched) {
		return false
	}
	s.state.ConfirmPending = true
	return true
}

// ConfirmEndEarly ends the active task at now if a confirmation is pending.
func (s *Session) ConfirmEndEarly(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.ConfirmPending {
		return
	}
	s.state.ConfirmPending = false
	idx := schedule.LocateTaskIndex(s.sched, now)
	skipped, ok := EndEarly(s.sched, &s.state, now)
	if !ok {
		return
	}
	s.log.Info().Str("session", s.state.ID).
		Int("task", idx).
		Str("name", s.sched[idx].Name).
		Dur("skipped", skipped).
		Msg("task ended early")
	s.checkContiguous()
}

// CancelEndEarly drops a pending end-early confirmation.
func (s *Session) CancelEndEarly() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ConfirmPending = false
}

// MarkDownloaded records that the final schedule was exported. It returns
// true only the first time, after completion.
func (s *Session) MarkDownloaded(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Started || s.state.Downloaded || !schedule.IsComplete(s.sched, s.state.EffectiveNow(now)) {
		return false
	}
	s.state.Downloaded = true
	return true
}

// State returns a copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.PauseStart != nil {
		at := *st.PauseStart
		st.PauseStart = &at
	}
	return st
}

// Schedule returns a copy of the live schedule (nil before start).
func (s *Session) Schedule() schedule.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Clone()
}

func (s *Session) checkContiguous() {
	if err := s.sched.Contiguous(); err != nil {
		s.log.Error().Err(err).Str("session", s.state.ID).Msg("schedule lost contiguity")
	}
}
