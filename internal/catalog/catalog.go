// Package catalog defines the ordered protocol of timed sub-tasks and the
// phase groups they are displayed under.
package catalog

import "time"

// SubtaskDefinition is one atomic timed step of the protocol.
type SubtaskDefinition struct {
	Name    string `json:"name"`
	Seconds int    `json:"duration"` // nominal duration in seconds
}

// Duration returns the nominal duration as a time.Duration.
func (d SubtaskDefinition) Duration() time.Duration {
	return time.Duration(d.Seconds) * time.Second
}

// PhaseGroup is a named cluster of consecutive sub-tasks shown together.
type PhaseGroup struct {
	Title    string   `json:"title"`
	Subtasks []string `json:"subtasks"`
}

// Catalog is the full protocol definition. It is validated once at load and
// never mutated afterwards.
type Catalog struct {
	Tasks  []SubtaskDefinition `json:"tasks"`
	Phases []PhaseGroup        `json:"phases"`
}

// TotalDuration is the nominal length of the whole protocol.
func (c Catalog) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range c.Tasks {
		total += t.Duration()
	}
	return total
}

// Names returns the sub-task names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		names[i] = t.Name
	}
	return names
}

const minute = 60

// Default returns the built-in data-collection protocol.
func Default() Catalog {
	return Catalog{
		Tasks: []SubtaskDefinition{
			{"Preparation Phase", 5 * minute},
			{"Seated Rest", 5 * minute},
			{"Wearable Device Setup", 5 * minute},

			{"Sitting Baseline - BP Measurement at Beginning", 30},
			{"Sitting Baseline - Baseline Collection 1", 135},
			{"Sitting Baseline - BP Measurement at Middle", 30},
			{"Sitting Baseline - Baseline Collection 2", 135},
			{"Sitting Baseline - BP Measurement at End", 30},

			{"Standing Baseline - Adaptation", 180},
			{"Standing Baseline - BP Measurement 1", 30},
			{"Standing Baseline - Baseline Collection 1", 135},
			{"Standing Baseline - BP Measurement 2", 30},
			{"Standing Baseline - Baseline Collection 2", 135},
			{"Standing Baseline - BP Measurement 3", 30},

			{"Breath-Holding Cycle #1", 200},
			{"Breath-Holding Cycle #2", 200},
			{"Breath-Holding Cycle #3", 200},

			{"Treadmill Exercise - Initial HR & BP Measurement", 30},
			{"Treadmill Exercise - Jogging Phase", 630},
			{"Treadmill Exercise - Post-Jogging BP Measurement", 30},
			{"Treadmill Exercise - Cool Down Phase", 180},
			{"Treadmill Exercise - Final Measurement", 30},

			{"Recovery - Baseline Collection Part 1", 270},
			{"Recovery - BP Measurement at 5 Minutes", 30},
			{"Recovery - Baseline Collection Part 2", 270},
			{"Recovery - BP Measurement at 10 Minutes", 30},

			{"Conclusion", 5 * minute},
		},
		Phases: []PhaseGroup{
			{"Preparation Phase (5 min)", []string{"Preparation Phase"}},
			{"Seated Rest (5 min)", []string{"Seated Rest"}},
			{"Wearable Device Setup (5 min)", []string{"Wearable Device Setup"}},
			{"Sitting Baseline (6 min)", []string{
				"Sitting Baseline - BP Measurement at Beginning",
				"Sitting Baseline - Baseline Collection 1",
				"Sitting Baseline - BP Measurement at Middle",
				"Sitting Baseline - Baseline Collection 2",
				"Sitting Baseline - BP Measurement at End",
			}},
			{"Standing Baseline (9 min)", []string{
				"Standing Baseline - Adaptation",
				"Standing Baseline - BP Measurement 1",
				"Standing Baseline - Baseline Collection 1",
				"Standing Baseline - BP Measurement 2",
				"Standing Baseline - Baseline Collection 2",
				"Standing Baseline - BP Measurement 3",
			}},
			{"Breath-Holding Task (10 min)", []string{
				"Breath-Holding Cycle #1",
				"Breath-Holding Cycle #2",
				"Breath-Holding Cycle #3",
			}},
			{"Treadmill Exercise (15 min)", []string{
				"Treadmill Exercise - Initial HR & BP Measurement",
				"Treadmill Exercise - Jogging Phase",
				"Treadmill Exercise - Post-Jogging BP Measurement",
				"Treadmill Exercise - Cool Down Phase",
				"Treadmill Exercise - Final Measurement",
			}},
			{"Recovery Phase (10 min)", []string{
				"Recovery - Baseline Collection Part 1",
				"Recovery - BP Measurement at 5 Minutes",
				"Recovery - Baseline Collection Part 2",
				"Recovery - BP Measurement at 10 Minutes",
			}},
			{"Conclusion (5 min)", []string{"Conclusion"}},
		},
	}
}
