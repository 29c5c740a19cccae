package model

// Site is a mining location that runs the task cycle.
type Site struct {
	ID       string `json:"siteId" yaml:"site_id"`
	Name     string `json:"siteName" yaml:"site_name"`
	Priority int    `json:"priority" yaml:"priority"` // lower is scheduled earlier
	Active   bool   `json:"isActive" yaml:"active"`

	// Planning quantities.
	TotalPlanMeters     float64 `json:"totalPlanMeters" yaml:"total_plan_meters"`
	TotalBackfillTonnes float64 `json:"totalBackfillTonnes" yaml:"total_backfill_tonnes"`
	RemoteTonnes        float64 `json:"remoteTonnes" yaml:"remote_tonnes"`
	Width               float64 `json:"width" yaml:"width"`
	Height              float64 `json:"height" yaml:"height"`

	CurrentTask string `json:"currentTask" yaml:"current_task"`
	Firings     int    `json:"firings" yaml:"firings"`
	// TimeToComplete overrides the duration of the current task's first
	// occurrence when positive. Expressed in hours.
	TimeToComplete float64 `json:"timeToComplete" yaml:"time_to_complete"`
	// TaskLimit is validated by the roster but not read by the engine.
	TaskLimit int `json:"taskLimit" yaml:"task_limit"`
}
