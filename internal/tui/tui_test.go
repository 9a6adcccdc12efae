package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/fakeyudi/labclock/internal/catalog"
	"github.com/fakeyudi/labclock/internal/schedule"
	"github.com/fakeyudi/labclock/internal/session"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	c := catalog.Catalog{
		Tasks: []catalog.SubtaskDefinition{{Name: "A", Seconds: 60}, {Name: "B", Seconds: 60}},
		Phases: []catalog.PhaseGroup{
			{Title: "First", Subtasks: []string{"A"}},
			{Title: "Second", Subtasks: []string{"B"}},
		},
	}
	s, err := session.New(c, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestFormRequiresBothFields(t *testing.T) {
	clk := &clock{now: t0}
	sess := newTestSession(t)
	m := New(sess, Options{Now: clk.Now, Device: "dev"})

	m = send(t, m, key("enter"), key("enter"))
	if sess.State().Started {
		t.Fatal("session started without a note")
	}
	if !strings.Contains(m.formErr, "Please enter both Device and Session Note") {
		t.Errorf("formErr = %q", m.formErr)
	}
}

func TestFormStartsSession(t *testing.T) {
	clk := &clock{now: t0}
	sess := newTestSession(t)
	m := New(sess, Options{Now: clk.Now})

	m = send(t, m, key("dev"), key("tab"), key("subject 7"), key("enter"))
	st := sess.State()
	if !st.Started || st.Device != "dev" || st.Note != "subject 7" {
		t.Fatalf("unexpected state %+v", st)
	}
	if !m.view.State.Started || m.formErr != "" {
		t.Errorf("model not refreshed after start: %+v", m.view.State)
	}
	if !sess.Schedule().Start().Equal(t0) {
		t.Errorf("schedule not anchored at the clock")
	}
}

func started(t *testing.T, clk *clock) (Model, *session.Session) {
	t.Helper()
	sess := newTestSession(t)
	m := New(sess, Options{Now: clk.Now, Device: "dev", Note: "note"})
	m = send(t, m, key("enter"), key("enter"))
	if !sess.State().Started {
		t.Fatal("session did not start")
	}
	return m, sess
}

func TestPauseKeyTogglesAndShifts(t *testing.T) {
	clk := &clock{now: t0}
	m, sess := started(t, clk)

	clk.advance(30 * time.Second)
	m = send(t, m, key("p"))
	if !m.view.State.Paused {
		t.Fatal("p did not pause")
	}
	clk.advance(10 * time.Second)
	m = send(t, m, key(" "))
	if m.view.State.Paused {
		t.Fatal("space did not resume")
	}
	if got := sess.Schedule().End(); !got.Equal(t0.Add(130 * time.Second)) {
		t.Errorf("End = %v, want T0+130s", got)
	}
}

func TestEndEarlyConfirmFlow(t *testing.T) {
	clk := &clock{now: t0.Add(10 * time.Second)}
	m, sess := started(t, &clock{now: t0})
	m.now = clk.Now

	m = send(t, m, key("e"))
	if !m.view.State.ConfirmPending {
		t.Fatal("e did not ask for confirmation")
	}
	m = send(t, m, key("n"))
	if m.view.State.ConfirmPending || !sess.Schedule().End().Equal(t0.Add(2*time.Minute)) {
		t.Fatal("n did not cancel")
	}

	m = send(t, m, key("e"), key("y"))
	if got := sess.Schedule().End(); !got.Equal(t0.Add(70 * time.Second)) {
		t.Errorf("End = %v, want T0+70s", got)
	}
	if m.view.Current != 1 {
		t.Errorf("Current = %d, want 1", m.view.Current)
	}
}

func TestPauseKeyIgnoredOnceComplete(t *testing.T) {
	clk := &clock{now: t0}
	m, sess := started(t, clk)
	clk.advance(5 * time.Minute)
	m = send(t, m, tickMsg(clk.now), key("p"))
	if sess.State().Paused {
		t.Error("completed session paused")
	}
}

func TestCompletionExportsOnce(t *testing.T) {
	clk := &clock{now: t0}
	calls := 0
	var got schedule.Schedule
	sess := newTestSession(t)
	m := New(sess, Options{
		Now: clk.Now, Device: "dev", Note: "note",
		OnComplete: func(s schedule.Schedule, st session.State) (string, error) {
			calls++
			got = s
			return "/out/dev_note.csv", nil
		},
	})
	m = send(t, m, key("enter"), key("enter"))

	clk.advance(2 * time.Minute)
	m.refresh()
	cmd := m.maybeExport()
	if cmd == nil {
		t.Fatal("no export command at completion")
	}
	if m.maybeExport() != nil {
		t.Fatal("second export command issued")
	}
	msg := cmd()
	m = send(t, m, msg)
	if calls != 1 || len(got) != 2 {
		t.Fatalf("OnComplete called %d times with %d tasks", calls, len(got))
	}
	if m.exportPath != "/out/dev_note.csv" || m.exporting {
		t.Errorf("exportPath = %q exporting = %v", m.exportPath, m.exporting)
	}
	if !sess.State().Downloaded {
		t.Error("session not marked downloaded")
	}
}

func TestExportErrorShown(t *testing.T) {
	clk := &clock{now: t0}
	m, _ := started(t, clk)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	clk.advance(3 * time.Minute)
	m.refresh()
	m = send(t, m, exportedMsg{err: errors.New("disk full")})
	if out := m.View(); !strings.Contains(out, "Export failed: disk full") {
		t.Errorf("view missing export error:\n%s", out)
	}
}

func TestViewShowsCurrentPhaseExpanded(t *testing.T) {
	clk := &clock{now: t0}
	m, _ := started(t, clk)
	m = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})

	clk.advance(75 * time.Second)
	m = send(t, m, tickMsg(clk.now))
	out := m.View()
	for _, want := range []string{"Detailed Task Timeline", "● Second", "B", "(In Progress)", "Remaining:", "0m 45s"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(Pending)") {
		t.Errorf("no task should be pending at T0+75s:\n%s", out)
	}
}

func TestViewBeforeReady(t *testing.T) {
	m := New(newTestSession(t), Options{})
	if m.View() != "Loading…" {
		t.Errorf("View = %q", m.View())
	}
}

func TestFormatMMSS(t *testing.T) {
	cases := map[time.Duration]string{
		0:                      "0m 0s",
		59*time.Second + 999e6: "0m 59s",
		135 * time.Second:      "2m 15s",
		70 * time.Minute:       "70m 0s",
		-5 * time.Second:       "0m 0s",
	}
	for d, want := range cases {
		if got := FormatMMSS(d); got != want {
			t.Errorf("FormatMMSS(%v) = %q, want %q", d, got, want)
		}
	}
}

// ── Plain mode ────────────────────────────────────────────────────────────────

func TestRunPlainPromptsForMetadata(t *testing.T) {
	clk := &clock{now: t0}
	sess := newTestSession(t)
	var out strings.Builder
	in := strings.NewReader("dev\n\nsubject 7\nq\n")

	err := RunPlain(context.Background(), sess, in, &out, Options{Now: clk.Now, Tick: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	st := sess.State()
	if st.Device != "dev" || st.Note != "subject 7" {
		t.Errorf("state = %+v", st)
	}
	for _, want := range []string{"Device: ", "Session Note: ", "Session started: dev / subject 7", "[09:00:00] A | 1m 0s remaining"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunPlainCommands(t *testing.T) {
	clk := &clock{now: t0.Add(10 * time.Second)}
	sess := newTestSession(t)
	if err := sess.Start("dev", "note", t0); err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	in := strings.NewReader("p\ne\np\ne\ny\ns\nbogus\nq\n")

	err := RunPlain(context.Background(), sess, in, &out, Options{Now: clk.Now, Tick: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	text := out.String()
	for _, want := range []string{
		"Paused.",
		"Cannot end task early while paused.",
		"Resumed.",
		"Are you sure you want to end the current task early? (y/n)",
		"Task ended early.",
		"[09:00:10] B | 1m 0s remaining, ends at 09:01:10",
		`unknown command "bogus"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if got := sess.Schedule().End(); !got.Equal(t0.Add(70 * time.Second)) {
		t.Errorf("End = %v, want T0+70s", got)
	}
}

func TestRunPlainExportsOnCompletion(t *testing.T) {
	calls := 0
	now := func() time.Time {
		calls++
		if calls == 1 {
			return t0
		}
		return t0.Add(time.Hour)
	}
	exports := 0
	sess := newTestSession(t)
	var out strings.Builder
	err := RunPlain(context.Background(), sess, strings.NewReader(""), &out, Options{
		Now: now, Tick: time.Hour, Device: "dev", Note: "note",
		OnComplete: func(s schedule.Schedule, st session.State) (string, error) {
			exports++
			return "/out/x.csv", nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if exports != 1 {
		t.Errorf("exports = %d, want 1", exports)
	}
	if !strings.Contains(out.String(), "Session complete.") || !strings.Contains(out.String(), "Schedule saved to /out/x.csv") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunPlainCancelled(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Start("dev", "note", time.Now()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunPlain(ctx, sess, strings.NewReader(""), &strings.Builder{}, Options{Tick: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
