package model

import (
	"fmt"
	"strings"
)

// TaskType distinguishes rate-driven activities from fixed-duration tasks.
type TaskType int

const (
	TaskFixed TaskType = iota
	TaskActivity
)

// String returns the wire name of the task type.
func (t TaskType) String() string {
	switch t {
	case TaskFixed:
		return "fixed"
	case TaskActivity:
		return "activity"
	default:
		return "unknown"
	}
}

// ParseTaskType converts a wire name into a TaskType. "task" is accepted as an
// alias of "fixed".
func ParseTaskType(s string) (TaskType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed", "task":
		return TaskFixed, nil
	case "activity":
		return TaskActivity, nil
	default:
		return TaskFixed, fmt.Errorf("unknown task type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t TaskType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TaskType) UnmarshalText(b []byte) error {
	v, err := ParseTaskType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Task is one step of the mining cycle (drill, charge, fire, bog...).
type Task struct {
	ID   string   `json:"taskId" yaml:"task_id"`
	Name string   `json:"taskName" yaml:"task_name"`
	Type TaskType `json:"taskType" yaml:"task_type"`
	UOM  string   `json:"uom" yaml:"uom"`
	// Rate is expressed in UOM units per hour.
	Rate float64 `json:"rate" yaml:"rate"`
	// DurationMinutes is the base duration used by fixed formulas.
	DurationMinutes float64 `json:"taskDuration" yaml:"duration_minutes"`
	Color           string  `json:"color" yaml:"color"`
	Order           int     `json:"order" yaml:"order"`
	// Limit is the maximum number of sites running the task in the same hour.
	Limit int `json:"limits" yaml:"limit"`
}

// UnitOfMeasure names a unit; its name selects a duration formula.
type UnitOfMeasure struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
