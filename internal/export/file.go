package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fakeyudi/labclock/internal/schedule"
)

const fileTimestampLayout = "20060102_150405"

// FileName builds {device}_{note}_{start}_{end}_schedule{ext}. Device and
// note are trimmed with spaces replaced by underscores, and fall back to
// "device" / "note" when blank.
func FileName(device, note string, s schedule.Schedule, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%s_schedule%s",
		label(device, "device"),
		label(note, "note"),
		s.Start().Format(fileTimestampLayout),
		s.End().Format(fileTimestampLayout),
		ext,
	)
}

func label(v, fallback string) string {
	v = strings.ReplaceAll(strings.TrimSpace(v), " ", "_")
	if v == "" {
		return fallback
	}
	return v
}

// Write renders s and writes it into dir under FileName, atomically via a
// temp file + os.Rename. It returns the written path.
func Write(dir, device, note string, s schedule.Schedule, r Renderer) (path string, err error) {
	data, err := r.Render(s)
	if err != nil {
		return "", fmt.Errorf("render schedule: %w", err)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path = filepath.Join(dir, FileName(device, note, s, r.Ext()))

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(dir, "schedule-*.tmp")
	if err != nil {
		return "", fmt.Errorf("write schedule: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write schedule: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("write schedule: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("write schedule: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("write schedule: %w", err)
	}
	return path, nil
}
