package schedule

import (
	"math"

	"github.com/kilianp07/minesched/core/model"
)

// roundingTolerance absorbs float noise so 2.0000000001 hours stays 2.
const roundingTolerance = 1e-9

// Constants maps active constant keywords to their values.
type Constants map[string]float64

// Get returns the value of an active constant.
func (c Constants) Get(keyword string) (float64, bool) {
	v, ok := c[keyword]
	return v, ok
}

// Duration is the placement length of a task for one site.
type Duration struct {
	Hours   int     `json:"hours"`
	Minutes float64 `json:"minutes"`
	// Skip means the task does not apply to the site and consumes no hours.
	Skip bool `json:"skip,omitempty"`
}

var skipDuration = Duration{Skip: true}

func fromMinutes(minutes float64) Duration {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return skipDuration
	}
	return Duration{Hours: ceilHours(minutes / 60), Minutes: minutes}
}

// OverrideDuration converts a site time-to-complete override into a Duration.
func OverrideDuration(hours float64) Duration {
	if hours <= 0 {
		return skipDuration
	}
	return Duration{Hours: ceilHours(hours), Minutes: hours * 60}
}

func ceilHours(h float64) int {
	n := int(math.Ceil(h - roundingTolerance))
	if n < 1 {
		return 1
	}
	return n
}

// CalculateDuration computes the whole-hour duration of task at site using
// the given formula. A Duration with Skip set means the task is not needed
// at the site. Ratio formulas fail with ErrInvalidRate when the task rate is
// not positive, and mass derivation fails with ErrMissingConstant when a
// dimension or DENSITY is unavailable.
func CalculateDuration(task model.Task, formula Formula, site model.Site, consts Constants) (Duration, error) {
	switch formula {
	case FormulaArea:
		if err := requireRate(task); err != nil {
			return Duration{}, err
		}
		if site.TotalPlanMeters <= 0 {
			return skipDuration, nil
		}
		return fromMinutes(site.TotalPlanMeters / task.Rate * 60), nil

	case FormulaTonnage:
		if err := requireRate(task); err != nil {
			return Duration{}, err
		}
		tonnes := site.TotalBackfillTonnes
		if tonnes <= 0 {
			if site.TotalPlanMeters <= 0 {
				return skipDuration, nil
			}
			mass, err := derivedMass(task, site, consts)
			if err != nil {
				return Duration{}, err
			}
			tonnes = mass
		}
		return fromMinutes(tonnes / task.Rate * 60), nil

	case FormulaBogger:
		if err := requireRate(task); err != nil {
			return Duration{}, err
		}
		return fromMinutes(site.RemoteTonnes / task.Rate * 60), nil

	case FormulaBackfillPrep:
		if site.TotalBackfillTonnes <= 0 {
			return skipDuration, nil
		}
		return fromMinutes(task.DurationMinutes), nil

	default:
		return fromMinutes(task.DurationMinutes), nil
	}
}

func requireRate(task model.Task) error {
	if task.Rate > 0 && !math.IsInf(task.Rate, 0) {
		return nil
	}
	return &DurationError{Err: ErrInvalidRate, Task: task.ID, UOM: task.UOM, Rate: task.Rate}
}

// derivedMass returns width x height x length x DENSITY. Site dimensions take
// precedence over the WIDTH and HEIGHT constants, which fall back to
// model.DefaultWidth and model.DefaultHeight.
func derivedMass(task model.Task, site model.Site, consts Constants) (float64, error) {
	width := dimension(site.Width, consts, model.ConstWidth, model.DefaultWidth)
	height := dimension(site.Height, consts, model.ConstHeight, model.DefaultHeight)
	density, ok := consts.Get(model.ConstDensity)
	if !ok || density <= 0 {
		return 0, &DurationError{Err: ErrMissingConstant, Task: task.ID, Constant: model.ConstDensity}
	}
	return width * height * site.TotalPlanMeters * density, nil
}

func dimension(siteValue float64, consts Constants, keyword string, def float64) float64 {
	if siteValue > 0 {
		return siteValue
	}
	if v, ok := consts.Get(keyword); ok && v > 0 {
		return v
	}
	return def
}
