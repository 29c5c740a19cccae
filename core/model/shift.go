package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Shift describes a crew shift. Times use "HH:MM" and may wrap midnight.
type Shift struct {
	Code              string `json:"shiftCode" yaml:"code"`
	Name              string `json:"shiftName" yaml:"name"`
	Start             string `json:"startTime" yaml:"start"`
	End               string `json:"endTime" yaml:"end"`
	ChangeoverMinutes int    `json:"shiftChangeDuration" yaml:"changeover_minutes"`
	Color             string `json:"color" yaml:"color"`
	Active            bool   `json:"isActive" yaml:"active"`
}

// StartHour returns the hour of day the shift starts.
func (s Shift) StartHour() (int, error) { return parseHour(s.Start) }

// EndHour returns the hour of day the shift ends.
func (s Shift) EndHour() (int, error) { return parseHour(s.End) }

// Overnight reports whether the shift crosses midnight.
func (s Shift) Overnight() bool {
	start, err1 := s.StartHour()
	end, err2 := s.EndHour()
	return err1 == nil && err2 == nil && start > end
}

// DurationHours returns the shift length in whole hours.
func (s Shift) DurationHours() int {
	start, err1 := s.StartHour()
	end, err2 := s.EndHour()
	if err1 != nil || err2 != nil {
		return 0
	}
	if end <= start {
		end += 24
	}
	return end - start
}

// ShiftInfo is the presentation subset of a shift returned with a grid.
type ShiftInfo struct {
	Code      string `json:"shiftCode"`
	Name      string `json:"shiftName"`
	Start     string `json:"startTime"`
	End       string `json:"endTime"`
	Color     string `json:"color"`
	Hours     int    `json:"durationHours"`
	Overnight bool   `json:"overnight"`
}

// Info returns the presentation subset of s.
func (s Shift) Info() ShiftInfo {
	return ShiftInfo{
		Code:      s.Code,
		Name:      s.Name,
		Start:     s.Start,
		End:       s.End,
		Color:     s.Color,
		Hours:     s.DurationHours(),
		Overnight: s.Overnight(),
	}
}

func parseHour(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("empty time")
	}
	hh, _, _ := strings.Cut(v, ":")
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", v, err)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour out of range in %q", v)
	}
	return h, nil
}
