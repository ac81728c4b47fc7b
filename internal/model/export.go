package model

import "time"

// Export is the full data set of one user, as written by the export
// endpoint and the CLI.
type Export struct {
	Version    string      `json:"version"    yaml:"version"`
	ExportedAt time.Time   `json:"exportedAt" yaml:"exported_at"`
	Username   string      `json:"username"   yaml:"username"`
	Stats      []StatEntry `json:"stats"      yaml:"stats"`
	Routes     []Route     `json:"routes"     yaml:"routes"`
	Activities []Activity  `json:"activities" yaml:"activities"`
}
