package fitness

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sakif/fittrack/internal/model"
)

// DateLayout renders dates as dd-mm-yyyy.
const DateLayout = "02-01-2006"

var (
	StatsHeaders      = []string{"Date", "Weight", "% Fat", "% H2O", "% Msl"}
	RoutesHeaders     = []string{"Name", "Distance [km]", "Height [m]"}
	ActivitiesHeaders = []string{"Name", "Date", "Time", "Pace", "Speed", "Heart rate"}
)

// DefaultAxisStart and DefaultAxisEnd bound a chart with no data.
const (
	DefaultAxisStart = 0
	DefaultAxisEnd   = 100
)

// AxisBounds computes the y-axis range of a chart:
//
//	start = round(min/margin)*margin - margin
//	end   = round(max/margin)*margin + margin
//
// round is half-to-even. An empty series gets the default 0..100 range.
func AxisBounds(points []float64, margin float64) (start, end float64) {
	if len(points) == 0 || margin <= 0 {
		return DefaultAxisStart, DefaultAxisEnd
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	start = math.RoundToEven(lo/margin)*margin - margin
	end = math.RoundToEven(hi/margin)*margin + margin
	return start, end
}

// Round1 rounds to one decimal place for display and chart data.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func Date(t time.Time) string { return t.Format(DateLayout) }

func Kilograms(v float64) string { return fmt.Sprintf("%.1f kg", Round1(v)) }

func Percent(v float64) string { return fmt.Sprintf("%.1f %%", Round1(v)) }

// Kilometers formats a distance given in meters.
func Kilometers(meters float64) string { return fmt.Sprintf("%.1f km", Round1(meters/1000)) }

func Meters(v float64) string { return fmt.Sprintf("%.0f m", v) }

func Pace(v float64) string { return fmt.Sprintf("%.1f min/km", Round1(v)) }

func Speed(v float64) string { return fmt.Sprintf("%.1f km/h", Round1(v)) }

// Clock formats a duration in seconds as mm:ss, zero padded.
func Clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func HeartRate(bpm int) string {
	if bpm <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d bpm", bpm)
}

// StatValue formats a value with the unit suffix of its category.
func StatValue(c model.StatCategory, v float64) string {
	if c == model.CategoryWeight {
		return Kilograms(v)
	}
	return Percent(v)
}

// Ago renders t relative to now ("3 days ago").
func Ago(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// StatRow is a StatEntry ready for a table. Epoch keys the edit/delete links.
type StatRow struct {
	Epoch   int64
	Date    string
	Weight  string
	BodyFat string
	Water   string
	Muscles string
}

func StatRows(stats []model.StatEntry) []StatRow {
	rows := make([]StatRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, StatRow{
			Epoch:   s.Date.Unix(),
			Date:    Date(s.Date),
			Weight:  Kilograms(s.Weight),
			BodyFat: Percent(s.BodyFat),
			Water:   Percent(s.Water),
			Muscles: Percent(s.Muscles),
		})
	}
	return rows
}

type RouteRow struct {
	Name     string
	Distance string
	Height   string
}

func RouteRows(routes []model.Route) []RouteRow {
	rows := make([]RouteRow, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, RouteRow{
			Name:     r.Name,
			Distance: Kilometers(r.Distance),
			Height:   Meters(r.Height),
		})
	}
	return rows
}

type ActivityRow struct {
	Route     string
	Date      string
	Time      string
	Pace      string
	Speed     string
	HeartRate string
}

func ActivityRows(activities []model.Activity) []ActivityRow {
	rows := make([]ActivityRow, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, ActivityRow{
			Route:     a.RouteName,
			Date:      Date(a.Date),
			Time:      Clock(a.Seconds),
			Pace:      Pace(a.Pace),
			Speed:     Speed(a.Speed),
			HeartRate: HeartRate(a.HeartRate),
		})
	}
	return rows
}

// Chart is the data a line chart needs: x labels, y values and axis range.
type Chart struct {
	Title  string    `json:"title"`
	Unit   string    `json:"unit"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
}

// NewChart builds a chart from a dated series. Values are rounded to one
// decimal before the axis range is computed.
func NewChart(title, unit string, points []model.Datapoint, margin float64) Chart {
	c := Chart{
		Title:  title,
		Unit:   unit,
		Labels: make([]string, 0, len(points)),
		Values: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		c.Labels = append(c.Labels, Date(p.Date))
		c.Values = append(c.Values, Round1(p.Value))
	}
	c.Min, c.Max = AxisBounds(c.Values, margin)
	return c
}
