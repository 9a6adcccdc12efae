package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCatalog is returned by Validate when the catalog has no tasks.
var ErrEmptyCatalog = errors.New("catalog has no tasks")

// DuplicateTaskNameError is returned when a sub-task name appears more than
// once in the catalog, or when a sub-task is claimed by more than one phase.
type DuplicateTaskNameError struct {
	Name  string
	Group string // set when the duplicate is a phase membership
}

func (e *DuplicateTaskNameError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("sub-task %q listed in more than one phase (again in %q)", e.Name, e.Group)
	}
	return fmt.Sprintf("duplicate sub-task name %q", e.Name)
}

// InvalidDurationError is returned for a sub-task with a non-positive duration.
type InvalidDurationError struct {
	Name    string
	Seconds int
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("sub-task %q has non-positive duration %ds", e.Name, e.Seconds)
}

// UnknownSubtaskError is returned when a phase group references a name that
// is not in the catalog.
type UnknownSubtaskError struct {
	Group string
	Name  string
}

func (e *UnknownSubtaskError) Error() string {
	return fmt.Sprintf("phase %q references unknown sub-task %q", e.Group, e.Name)
}

// UngroupedSubtaskError is returned when a catalog sub-task belongs to no phase.
type UngroupedSubtaskError struct {
	Name string
}

func (e *UngroupedSubtaskError) Error() string {
	return fmt.Sprintf("sub-task %q does not belong to any phase", e.Name)
}

// Validate checks the integrity of the catalog: names are unique and
// non-blank, durations are positive, and every phase member resolves to
// exactly one sub-task with every sub-task in exactly one phase.
func (c Catalog) Validate() error {
	if len(c.Tasks) == 0 {
		return ErrEmptyCatalog
	}

	known := make(map[string]bool, len(c.Tasks))
	for _, t := range c.Tasks {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("sub-task at position %d has an empty name", len(known))
		}
		if known[t.Name] {
			return &DuplicateTaskNameError{Name: t.Name}
		}
		if t.Seconds <= 0 {
			return &InvalidDurationError{Name: t.Name, Seconds: t.Seconds}
		}
		known[t.Name] = true
	}

	grouped := make(map[string]bool, len(c.Tasks))
	for _, g := range c.Phases {
		for _, name := range g.Subtasks {
			if !known[name] {
				return &UnknownSubtaskError{Group: g.Title, Name: name}
			}
			if grouped[name] {
				return &DuplicateTaskNameError{Name: name, Group: g.Title}
			}
			grouped[name] = true
		}
	}
	for _, t := range c.Tasks {
		if !grouped[t.Name] {
			return &UngroupedSubtaskError{Name: t.Name}
		}
	}
	return nil
}
