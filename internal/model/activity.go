package model

import "time"

// Activity is one dated traversal of a route. Pace (min/km) and Speed (km/h)
// are derived from the route when the activity is recorded.
type Activity struct {
	Username  string    `json:"-"                   yaml:"-"`
	RouteName string    `json:"routeName"           yaml:"route_name"`
	Date      time.Time `json:"date"                yaml:"date"`
	Seconds   int       `json:"seconds"             yaml:"seconds"`
	Pace      float64   `json:"pace"                yaml:"pace"`
	Speed     float64   `json:"speed"               yaml:"speed"`
	HeartRate int       `json:"heartRate,omitempty" yaml:"heart_rate,omitempty"` // 0 when not recorded
}
