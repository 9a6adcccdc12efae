package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileName(t *testing.T) {
	s := twoTasks()
	cases := []struct {
		device, note, want string
	}{
		{"Watch 01", "subject seven", "Watch_01_subject_seven_20240301_090000_20240301_090200_schedule.csv"},
		{"  dev  ", "n", "dev_n_20240301_090000_20240301_090200_schedule.csv"},
		{"", " ", "device_note_20240301_090000_20240301_090200_schedule.csv"},
	}
	for _, tc := range cases {
		if got := FileName(tc.device, tc.note, s, ".csv"); got != tc.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tc.device, tc.note, got, tc.want)
		}
	}
}

func TestFileNameUsesAdjustedTimes(t *testing.T) {
	s := twoTasks()
	s[0].PlannedEnd = s[0].PlannedEnd.Add(30 * time.Second)
	s[1].PlannedStart = s[1].PlannedStart.Add(30 * time.Second)
	s[1].PlannedEnd = s[1].PlannedEnd.Add(30 * time.Second)
	if got, want := FileName("d", "n", s, ".json"), "d_n_20240301_090000_20240301_090230_schedule.json"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteCreatesFileAtomically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := twoTasks()

	path, err := Write(dir, "dev", "note", s, &CSVRenderer{})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Dir(path) != dir || filepath.Base(path) != FileName("dev", "note", s, ".csv") {
		t.Errorf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := (&CSVRenderer{}).Render(s)
	if string(data) != string(want) {
		t.Errorf("file content differs from rendered CSV")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the export in %s, found %d entries", dir, len(entries))
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	s := twoTasks()
	if _, err := Write(dir, "dev", "note", s, &JSONRenderer{}); err != nil {
		t.Fatal(err)
	}
	path, err := Write(dir, "dev", "note", s, &JSONRenderer{})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := ForFile(".json").Parse(mustRead(t, path))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
