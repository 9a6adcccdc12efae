package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fakeyudi/labclock/internal/catalog"
	"github.com/fakeyudi/labclock/internal/history"
	"github.com/fakeyudi/labclock/internal/schedule"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	st, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func entry(id string, archived time.Time, s schedule.Schedule) history.Entry {
	return history.Entry{
		ID:         id,
		Device:     "Watch-01",
		Note:       "subject " + id,
		StartedAt:  s.Start(),
		EndedAt:    s.End(),
		ExportPath: "/tmp/" + id + ".csv",
		ArchivedAt: archived,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := history.Open(context.Background(), " "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestArchiveAndGet(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	s := schedule.Build([]catalog.SubtaskDefinition{{Name: "A", Seconds: 60}, {Name: "B", Seconds: 60}}, t0)
	schedule.AbsorbPause(s, t0.Add(40*time.Second), 10*time.Second)

	if err := st.Archive(ctx, entry("s1", t0.Add(time.Hour), s), s); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	got, err := st.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Device != "Watch-01" || got.Note != "subject s1" || got.ExportPath != "/tmp/s1.csv" {
		t.Errorf("unexpected entry %+v", got)
	}
	if !got.StartedAt.Equal(t0) || !got.EndedAt.Equal(t0.Add(130*time.Second)) {
		t.Errorf("span %v..%v", got.StartedAt, got.EndedAt)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(got.Tasks))
	}
	for i := range s {
		if got.Tasks[i].Name != s[i].Name || got.Tasks[i].Duration != s[i].Duration ||
			!got.Tasks[i].PlannedStart.Equal(s[i].PlannedStart) || !got.Tasks[i].PlannedEnd.Equal(s[i].PlannedEnd) {
			t.Errorf("task %d: got %+v, want %+v", i, got.Tasks[i], s[i])
		}
	}
	if err := got.Tasks.Contiguous(); err != nil {
		t.Error(err)
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := openStore(t).Get(context.Background(), "missing")
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestArchiveReplacesSameID(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	long := schedule.Build(catalog.Default().Tasks, t0)
	short := schedule.Build([]catalog.SubtaskDefinition{{Name: "only", Seconds: 5}}, t0)

	if err := st.Archive(ctx, entry("s1", t0, long), long); err != nil {
		t.Fatal(err)
	}
	e := entry("s1", t0.Add(time.Minute), short)
	e.ExportPath = ""
	if err := st.Archive(ctx, e, short); err != nil {
		t.Fatal(err)
	}

	got, err := st.Get(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Name != "only" {
		t.Errorf("tasks not replaced: %+v", got.Tasks)
	}
	if got.ExportPath != "" {
		t.Errorf("ExportPath = %q, want empty", got.ExportPath)
	}
	all, err := st.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("List returned %d entries, want 1", len(all))
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	s := schedule.Build([]catalog.SubtaskDefinition{{Name: "A", Seconds: 60}}, t0)

	for i, id := range []string{"old", "newest", "middle"} {
		archived := []time.Time{t0, t0.Add(2 * time.Hour), t0.Add(time.Hour)}[i]
		if err := st.Archive(ctx, entry(id, archived, s), s); err != nil {
			t.Fatal(err)
		}
	}

	all, err := st.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, e := range all {
		ids = append(ids, e.ID)
		if e.Tasks != nil {
			t.Errorf("List populated tasks for %s", e.ID)
		}
	}
	if len(ids) != 3 || ids[0] != "newest" || ids[1] != "middle" || ids[2] != "old" {
		t.Errorf("order = %v, want [newest middle old]", ids)
	}

	two, err := st.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 || two[0].ID != "newest" {
		t.Errorf("limited list = %+v", two)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	s := schedule.Build([]catalog.SubtaskDefinition{{Name: "A", Seconds: 60}}, t0)

	st, err := history.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Archive(ctx, entry("s1", t0, s), s); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = history.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if _, err := st.Get(ctx, "s1"); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := history.DefaultPath("/data"); got != filepath.Join("/data", "history.db") {
		t.Errorf("DefaultPath = %q", got)
	}
}
