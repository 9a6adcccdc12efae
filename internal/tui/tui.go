// Package tui provides the Bubble Tea countdown for a protocol session.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/labclock/internal/schedule"
	"github.com/fakeyudi/labclock/internal/session"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	bigStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().Padding(0, 1)
)

// CompleteFunc is called once when the session completes, with the final
// schedule. It returns the path of the written export.
type CompleteFunc func(sched schedule.Schedule, st session.State) (string, error)

type tickMsg time.Time

type exportedMsg struct {
	path string
	err  error
}

const (
	fieldDevice = iota
	fieldNote
	fieldCount
)

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	sess       *session.Session
	now        func() time.Time
	tick       time.Duration
	onComplete CompleteFunc

	inputs  [fieldCount]textinput.Model
	focus   int
	formErr string

	timeline viewport.Model
	width    int
	height   int
	ready    bool

	view       session.View
	exporting  bool
	exportPath string
	exportErr  error
}

// Options configures a Model.
type Options struct {
	Tick       time.Duration    // refresh cadence; default one second
	Now        func() time.Time // clock; default time.Now
	OnComplete CompleteFunc
	Device     string // pre-filled metadata
	Note       string
}

// New creates a TUI model driving sess.
func New(sess *session.Session, opts Options) Model {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := Model{
		sess:       sess,
		now:        opts.Now,
		tick:       opts.Tick,
		onComplete: opts.OnComplete,
	}

	device := textinput.New()
	device.Placeholder = "device label"
	device.Prompt = "Device:       "
	device.CharLimit = 64
	device.SetValue(opts.Device)
	device.Focus()

	note := textinput.New()
	note.Placeholder = "session note"
	note.Prompt = "Session Note: "
	note.CharLimit = 128
	note.SetValue(opts.Note)

	m.inputs = [fieldCount]textinput.Model{device, note}
	m.view = sess.Snapshot(m.now())
	return m
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		cmd := m.maybeExport()
		return m, tea.Batch(m.tickCmd(), cmd)

	case exportedMsg:
		m.exporting = false
		m.exportPath, m.exportErr = msg.path, msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewport()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.view.State.Started {
			return m.updateForm(msg)
		}
		return m.updateRunning(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.setFocus((m.focus - 1 + fieldCount) % fieldCount)
	case "enter":
		if m.focus == fieldDevice {
			return m, m.setFocus(fieldNote)
		}
		err := m.sess.Start(m.inputs[fieldDevice].Value(), m.inputs[fieldNote].Value(), m.now())
		if err != nil {
			m.formErr = "Please enter both Device and Session Note before starting (" + err.Error() + ")."
			return m, nil
		}
		m.formErr = ""
		m.inputs[m.focus].Blur()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m Model) updateRunning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	if m.view.State.ConfirmPending {
		switch msg.String() {
		case "y", "Y":
			m.sess.ConfirmEndEarly(now)
		case "n", "N", "esc":
			m.sess.CancelEndEarly()
		case "q":
			return m, tea.Quit
		}
		m.refresh()
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "p", " ":
		if !m.view.Complete {
			m.sess.TogglePause(now)
		}
	case "e":
		m.sess.RequestEndEarly(now)
	default:
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		return m, cmd
	}
	m.refresh()
	cmd := m.maybeExport()
	return m, cmd
}

// refresh re-reads the session and re-renders the timeline.
func (m *Model) refresh() {
	m.view = m.sess.Snapshot(m.now())
	if m.ready {
		m.timeline.SetContent(m.renderTimeline())
	}
}

// maybeExport fires the completion callback the first time the session is
// seen complete.
func (m *Model) maybeExport() tea.Cmd {
	if !m.view.Complete || m.onComplete == nil || m.exporting {
		return nil
	}
	if !m.sess.MarkDownloaded(m.now()) {
		return nil
	}
	m.exporting = true
	sched, st := m.sess.Schedule(), m.sess.State()
	fn := m.onComplete
	return func() tea.Msg {
		path, err := fn(sched, st)
		return exportedMsg{path: path, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  labclock  data collection")

	left := paneStyle.Width(m.leftWidth()).Render(m.renderStatus())
	right := paneStyle.Render(m.timeline.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, statusBarStyle.Width(m.width).Render(m.hint()))
}

func (m Model) hint() string {
	switch {
	case !m.view.State.Started:
		return "  tab switch field  enter start  esc quit"
	case m.view.State.ConfirmPending:
		return "  y end task now  n cancel"
	case m.view.Complete:
		return "  ↑/↓ scroll  q quit"
	case m.view.State.Paused:
		return "  p resume  ↑/↓ scroll  q quit"
	default:
		return "  p pause  e end task early  ↑/↓ scroll  q quit"
	}
}

// ── Layout ────────────────────────────────────────────────────────────────────

func (m Model) leftWidth() int {
	w := m.width * 2 / 5
	if w < 36 {
		w = 36
	}
	return w
}

func (m *Model) initViewport() {
	// title(1) + statusBar(1) = 2 fixed rows
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	w := m.width - m.leftWidth() - 2
	if w < 20 {
		w = 20
	}
	m.timeline = viewport.New(w, h)
	m.timeline.SetContent(m.renderTimeline())
}

// ── Renderers ─────────────────────────────────────────────────────────────────

func heading(s string) string {
	return sectionHeader.Render(s) + "\n\n"
}

func (m Model) renderStatus() string {
	var sb strings.Builder
	v := m.view
	wall := m.now()

	sb.WriteString(heading("Current Timeline"))

	if !v.State.Started {
		for i := range m.inputs {
			sb.WriteString(m.inputs[i].View() + "\n")
		}
		sb.WriteString("\n")
		if m.formErr != "" {
			sb.WriteString(errorStyle.Render(m.formErr) + "\n\n")
		}
	} else {
		row(&sb, "Device:", v.State.Device)
		row(&sb, "Session Note:", v.State.Note)
		sb.WriteString("\n")
	}

	row(&sb, "Local Time:", bigStyle.Render(wall.Format("15:04:05")))
	row(&sb, "UTC Time:", wall.UTC().Format("15:04:05"))
	sb.WriteString("\n")

	if !v.State.Started {
		row(&sb, "Protocol:", FormatMMSS(v.Tasks.Total()))
		return sb.String()
	}

	if v.Current >= 0 && v.Current < len(v.Tasks) {
		t := v.Tasks[v.Current]
		row(&sb, "Task:", t.Name)
		row(&sb, "Remaining:", bigStyle.Render(FormatMMSS(v.Remaining)))
		row(&sb, "Ends at:", timeStyle.Render(t.PlannedEnd.Format("15:04:05")))
		sb.WriteString("\n")
	}

	switch {
	case v.Complete:
		sb.WriteString(doneStyle.Render("Session complete.") + "\n")
		switch {
		case m.exportErr != nil:
			sb.WriteString(errorStyle.Render("Export failed: "+m.exportErr.Error()) + "\n")
		case m.exportPath != "":
			sb.WriteString("Schedule saved to " + m.exportPath + "\n")
		case m.exporting:
			sb.WriteString(dimStyle.Render("Saving schedule…") + "\n")
		}
	case v.State.Paused:
		sb.WriteString(warnStyle.Render("PAUSED") + "\n")
		sb.WriteString(dimStyle.Render("Cannot end task early while paused.") + "\n")
	case v.State.ConfirmPending:
		sb.WriteString(warnStyle.Render("Are you sure you want to end the current task early? (y/n)") + "\n")
	}
	return sb.String()
}

func row(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", label)) + " " + value + "\n")
}

func (m Model) renderTimeline() string {
	var sb strings.Builder
	v := m.view
	tbl := m.sess.Phases()

	sb.WriteString(heading("Detailed Task Timeline"))
	for g, group := range tbl.Groups {
		expanded := tbl.ShouldExpand(g, v.Phase)
		marker := "▶ "
		if expanded {
			marker = "▼ "
		}
		title := group.Title
		if g == v.Phase {
			title = activeStyle.Render("● " + title)
		}
		sb.WriteString(dimStyle.Render(marker) + title + "\n")
		if !expanded {
			continue
		}
		for _, i := range tbl.TasksOf[g] {
			sb.WriteString("    " + renderTask(v, i) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderTask(v session.View, i int) string {
	t := v.Tasks[i]
	start := t.PlannedStart.Format("15:04:05")
	switch v.Status(i) {
	case session.StatusInProgress:
		return activeStyle.Render("⏩ "+t.Name) + " | Start: " + start + " (In Progress)"
	case session.StatusCompleted:
		return doneStyle.Render("✅ "+t.Name) + " | Start: " + start + ", End: " + t.PlannedEnd.Format("15:04:05") + " (Completed)"
	default:
		return "⏳ " + t.Name + dimStyle.Render(" | Start: "+start+" (Pending)")
	}
}

// FormatMMSS renders a duration as "Mm Ss", truncating sub-second parts.
func FormatMMSS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%dm %ds", s/60, s%60)
}

// Run starts the TUI for sess.
func Run(sess *session.Session, opts Options) error {
	p := tea.NewProgram(New(sess, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
