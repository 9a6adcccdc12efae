package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fakeyudi/labclock/internal/session"
)

// RunPlain drives sess with line commands read from in, for terminals that
// cannot host the full-screen TUI (pipes, CI, serial consoles). Commands:
// p pause/resume, e end task early (then y/n), s status, q quit.
func RunPlain(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer, opts Options) error {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	if !sess.State().Started {
		if err := startPlain(ctx, sess, lines, out, opts); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(opts.Tick)
	defer ticker.Stop()

	last := -2
	report := func() bool {
		v := sess.Snapshot(opts.Now())
		if v.Current != last {
			last = v.Current
			printStatus(out, v)
		}
		if v.Complete && opts.OnComplete != nil && sess.MarkDownloaded(opts.Now()) {
			path, err := opts.OnComplete(sess.Schedule(), sess.State())
			if err != nil {
				fmt.Fprintf(out, "export failed: %v\n", err)
				return true
			}
			fmt.Fprintf(out, "Schedule saved to %s\n", path)
		}
		return v.Complete
	}
	if report() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if report() {
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				// Input closed: keep counting down until completion.
				lines = nil
				continue
			}
			if handleLine(sess, line, out, opts.Now()) {
				return nil
			}
			if report() {
				return nil
			}
		}
	}
}

func startPlain(ctx context.Context, sess *session.Session, lines <-chan string, out io.Writer, opts Options) error {
	device, note := opts.Device, opts.Note
	for {
		err := sess.Start(device, note, opts.Now())
		if err == nil {
			st := sess.State()
			fmt.Fprintf(out, "Session started: %s / %s\n", st.Device, st.Note)
			return nil
		}
		var verr *session.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		var ok bool
		if strings.TrimSpace(device) == "" {
			fmt.Fprint(out, "Device: ")
			if device, ok = readLine(ctx, lines); !ok {
				return errors.New("session not started: no device entered")
			}
			continue
		}
		fmt.Fprint(out, "Session Note: ")
		if note, ok = readLine(ctx, lines); !ok {
			return errors.New("session not started: no session note entered")
		}
	}
}

func readLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case l, ok := <-lines:
		return l, ok
	}
}

// handleLine applies one operator command. It reports whether to quit.
func handleLine(sess *session.Session, line string, out io.Writer, now time.Time) bool {
	st := sess.State()
	if st.ConfirmPending {
		switch strings.ToLower(line) {
		case "y", "yes":
			sess.ConfirmEndEarly(now)
			fmt.Fprintln(out, "Task ended early.")
		default:
			sess.CancelEndEarly()
			fmt.Fprintln(out, "Cancelled.")
		}
		return false
	}

	switch strings.ToLower(line) {
	case "q", "quit":
		return true
	case "p", "pause", "resume":
		sess.TogglePause(now)
		if sess.State().Paused {
			fmt.Fprintln(out, "Paused.")
		} else {
			fmt.Fprintln(out, "Resumed.")
		}
	case "e", "end":
		if st.Paused {
			fmt.Fprintln(out, "Cannot end task early while paused.")
		} else if sess.RequestEndEarly(now) {
			fmt.Fprintln(out, "Are you sure you want to end the current task early? (y/n)")
		}
	case "s", "status":
		printStatus(out, sess.Snapshot(now))
	case "":
	default:
		fmt.Fprintf(out, "unknown command %q (p pause/resume, e end early, s status, q quit)\n", line)
	}
	return false
}

func printStatus(out io.Writer, v session.View) {
	switch {
	case !v.State.Started:
		fmt.Fprintln(out, "Session not started.")
	case v.Complete:
		fmt.Fprintln(out, "Session complete.")
	case v.Current < 0:
		fmt.Fprintf(out, "[%s] waiting for first task at %s\n",
			v.Now.Format("15:04:05"), v.Tasks.Start().Format("15:04:05"))
	default:
		t := v.Tasks[v.Current]
		paused := ""
		if v.State.Paused {
			paused = " (paused)"
		}
		fmt.Fprintf(out, "[%s] %s | %s remaining, ends at %s%s\n",
			v.Now.Format("15:04:05"), t.Name, FormatMMSS(v.Remaining), t.PlannedEnd.Format("15:04:05"), paused)
	}
}
