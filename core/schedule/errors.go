package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRate is returned when a ratio formula needs a positive rate.
	ErrInvalidRate = errors.New("invalid rate")
	// ErrMissingConstant is returned when a required constant is inactive or absent.
	ErrMissingConstant = errors.New("missing constant")
	// ErrInvalidHorizon rejects unsupported grid sizes.
	ErrInvalidHorizon = errors.New("invalid horizon")
	// ErrUnknownCurrentTask flags a site pointing at a task that does not exist.
	ErrUnknownCurrentTask = errors.New("unknown current task")
	// ErrAutomaticDelayRemoval is returned when removing a shift changeover delay.
	ErrAutomaticDelayRemoval = errors.New("automatic delay cannot be removed")
	// ErrDelayNotFound is returned when no explicit delay covers a cell.
	ErrDelayNotFound = errors.New("delay not found")
)

// SupportedHorizons lists the accepted grid sizes in hours.
var SupportedHorizons = []int{6, 12, 24, 48}

// HorizonError reports an unsupported grid size.
type HorizonError struct {
	Hours int
}

func (e *HorizonError) Error() string {
	return fmt.Sprintf("grid hours %d not in %v", e.Hours, SupportedHorizons)
}

func (e *HorizonError) Unwrap() error { return ErrInvalidHorizon }

// ValidateHorizon returns a *HorizonError when hours is not supported.
func ValidateHorizon(hours int) error {
	for _, h := range SupportedHorizons {
		if h == hours {
			return nil
		}
	}
	return &HorizonError{Hours: hours}
}

// DurationError describes why a duration could not be computed.
type DurationError struct {
	Err      error
	Task     string
	UOM      string
	Rate     float64
	Constant string
}

func (e *DurationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingConstant):
		return fmt.Sprintf("task %s: %v %s", e.Task, e.Err, e.Constant)
	case errors.Is(e.Err, ErrInvalidRate):
		return fmt.Sprintf("task %s: %v %g for uom %q", e.Task, e.Err, e.Rate, e.UOM)
	default:
		return fmt.Sprintf("task %s: %v", e.Task, e.Err)
	}
}

func (e *DurationError) Unwrap() error { return e.Err }

// WarningKind classifies non-fatal generation conditions.
type WarningKind string

const (
	WarnInvalidRate        WarningKind = "InvalidRate"
	WarnMissingConstant    WarningKind = "MissingConstant"
	WarnUnknownCurrentTask WarningKind = "UnknownCurrentTask"
	WarnUnscheduled        WarningKind = "Unscheduled"
)

// Warning is a non-fatal condition reported alongside a grid.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Site    string      `json:"site"`
	Task    string      `json:"task,omitempty"`
	Message string      `json:"message"`
}

func warningFromDuration(site string, err error) Warning {
	kind := WarnInvalidRate
	if errors.Is(err, ErrMissingConstant) {
		kind = WarnMissingConstant
	}
	w := Warning{Kind: kind, Site: site, Message: err.Error()}
	var de *DurationError
	if errors.As(err, &de) {
		w.Task = de.Task
	}
	return w
}
