package model

// Route is a named course owned by a user. Distance and Height are meters.
type Route struct {
	Username string  `json:"-"        yaml:"-"`
	Name     string  `json:"name"     yaml:"name"`
	Distance float64 `json:"distance" yaml:"distance"`
	Height   float64 `json:"height"   yaml:"height"`
}
