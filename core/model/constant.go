package model

// Well-known constant keywords.
const (
	ConstWidth   = "WIDTH"
	ConstHeight  = "HEIGHT"
	ConstDensity = "DENSITY"
)

// Site dimensions in meters used when neither the site nor the WIDTH and
// HEIGHT constants provide one.
const (
	DefaultWidth  = 5.0
	DefaultHeight = 4.0
)

// Constant is a named mining parameter.
type Constant struct {
	Keyword string  `json:"keyword" yaml:"keyword"`
	Value   float64 `json:"value" yaml:"value"`
	Unit    string  `json:"unit" yaml:"unit"`
	Active  bool    `json:"isActive" yaml:"active"`
}
