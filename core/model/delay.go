package model

// AllSites is the row value that targets every active site.
const AllSites = "__ALL__"

// ShiftChangeCode is the delay code of automatic changeover delays.
const ShiftChangeCode = "SHIFT_CHANGE"

// DelayCode is a catalog entry describing a kind of delay.
type DelayCode struct {
	Category        string `json:"delayCategory" yaml:"category"`
	Code            string `json:"delayCode" yaml:"code"`
	Description     string `json:"description" yaml:"description"`
	DefaultDuration int    `json:"delayDuration" yaml:"default_duration"`
	Color           string `json:"color" yaml:"color"`
	Active          bool   `json:"isActive" yaml:"active"`
}

// DelaySlot is a user-entered delay as sent with a generation request.
type DelaySlot struct {
	Row       string `json:"row" yaml:"row"`
	HourIndex int    `json:"hourIndex" yaml:"hour_index"`
	Category  string `json:"category" yaml:"category"`
	Code      string `json:"code" yaml:"code"`
	Comments  string `json:"comments,omitempty" yaml:"comments,omitempty"`
	Duration  int    `json:"duration" yaml:"duration"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Delay blocks a single (site, hour) cell.
type Delay struct {
	Site        string `json:"site"`
	Hour        int    `json:"hour"`
	Category    string `json:"category"`
	Code        string `json:"code"`
	Comments    string `json:"comments,omitempty"`
	Color       string `json:"color"`
	IsAutomatic bool   `json:"isAutomatic"`
	ShiftCode   string `json:"shiftCode,omitempty"`
}
