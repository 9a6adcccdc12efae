package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/labclock/internal/catalog"
	"github.com/fakeyudi/labclock/internal/schedule"
)

// State is the operator's single session. Transitions are driven only by the
// functions in this file.
type State struct {
	ID             string     `json:"id"`
	Started        bool       `json:"started"`
	Paused         bool       `json:"paused"`
	PauseStart     *time.Time `json:"pause_start,omitempty"`
	Device         string     `json:"device"`
	Note           string     `json:"note"`
	ConfirmPending bool       `json:"confirm_pending"` // end-early awaiting confirmation
	Downloaded     bool       `json:"downloaded"`      // final schedule exported
}

// ValidationError is returned when a session cannot start because required
// metadata is missing.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}

// Running reports whether the session is started and not paused.
func (st *State) Running() bool { return st.Started && !st.Paused }

// EffectiveNow is the frozen pause instant while paused, otherwise now.
func (st *State) EffectiveNow(now time.Time) time.Time {
	if st.Paused && st.PauseStart != nil {
		return *st.PauseStart
	}
	return now
}

// Start validates the metadata, builds a fresh schedule from now and marks
// the session started. Starting an already started session does nothing and
// returns a nil schedule.
func Start(st *State, tasks []catalog.SubtaskDefinition, device, note string, now time.Time) (schedule.Schedule, error) {
	if st.Started {
		return nil, nil
	}
	device, note = strings.TrimSpace(device), strings.TrimSpace(note)
	if device == "" {
		return nil, &ValidationError{Field: "device"}
	}
	if note == "" {
		return nil, &ValidationError{Field: "session note"}
	}
	*st = State{
		ID:      uuid.New().String(),
		Started: true,
		Device:  device,
		Note:    note,
	}
	return schedule.Build(tasks, now), nil
}

// Pause freezes the session at now. The schedule is left alone until Resume,
// when the real pause length is known. Any pending end-early confirmation is
// dropped.
func Pause(st *State, now time.Time) bool {
	if !st.Running() {
		return false
	}
	st.Paused = true
	at := now
	st.PauseStart = &at
	st.ConfirmPending = false
	return true
}

// Resume unfreezes the session and shifts the schedule by the pause length.
// It returns the pause length and whether the session was paused at all.
func Resume(s schedule.Schedule, st *State, now time.Time) (time.Duration, bool) {
	if !st.Paused {
		return 0, false
	}
	var d time.Duration
	if st.PauseStart != nil {
		d = now.Sub(*st.PauseStart)
	}
	st.Paused = false
	st.PauseStart = nil
	schedule.AbsorbPause(s, now, d)
	return d, true
}

// EndEarly ends the active task at now. It only acts while running; during a
// pause "now" has no meaning for the schedule.
func EndEarly(s schedule.Schedule, st *State, now time.Time) (time.Duration, bool) {
	if !st.Running() {
		return 0, false
	}
	return schedule.EndTaskEarly(s, now)
}
