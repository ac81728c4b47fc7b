package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/service"
)

const (
	msgEmptyValues = "Values cannot be empty"
	msgNotNumbers  = "Values must be numbers"
	msgMinutes     = "Time [min] cannot be empty"
	msgWholeNumber = "Time and heart rate must be whole numbers"
)

// formValue returns the trimmed value of a form field.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

// parseFloats parses every named field as a float. All must be present.
func parseFloats(r *http.Request, keys ...string) ([]float64, error) {
	out := make([]float64, 0, len(keys))
	for _, k := range keys {
		raw := formValue(r, k)
		if raw == "" {
			return nil, apperror.ValidationFailed(k, msgEmptyValues)
		}
		v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, apperror.ValidationFailed(k, msgNotNumbers)
		}
		out = append(out, v)
	}
	return out, nil
}

// statForm is the raw input of the stat form, echoed back on error.
type statForm struct {
	Action  string
	Weight  string
	BodyFat string
	Water   string
	Muscles string
}

func readStatForm(r *http.Request, action string) statForm {
	return statForm{
		Action:  action,
		Weight:  formValue(r, "weight"),
		BodyFat: formValue(r, "body_fat"),
		Water:   formValue(r, "water"),
		Muscles: formValue(r, "muscles"),
	}
}

func parseStatValues(r *http.Request) (service.StatValues, error) {
	v, err := parseFloats(r, "weight", "body_fat", "water", "muscles")
	if err != nil {
		return service.StatValues{}, err
	}
	return service.StatValues{Weight: v[0], BodyFat: v[1], Water: v[2], Muscles: v[3]}, nil
}

type routeForm struct {
	Name     string
	Distance string
	Height   string
}

func readRouteForm(r *http.Request) routeForm {
	return routeForm{
		Name:     formValue(r, "name"),
		Distance: formValue(r, "distance"),
		Height:   formValue(r, "height"),
	}
}

// activityForm is the raw activity form plus the route choices.
type activityForm struct {
	Routes    []string
	Route     string
	Minutes   string
	Seconds   string
	HeartRate string
}

func readActivityForm(r *http.Request) activityForm {
	return activityForm{
		Route:     formValue(r, "route"),
		Minutes:   formValue(r, "time_min"),
		Seconds:   formValue(r, "time_s"),
		HeartRate: formValue(r, "heart_rate"),
	}
}

// parseActivityInput requires minutes; seconds and heart rate are optional
// and default to 0.
func parseActivityInput(f activityForm) (service.ActivityInput, error) {
	in := service.ActivityInput{RouteName: f.Route}
	if f.Minutes == "" {
		return in, apperror.ValidationFailed("time_min", msgMinutes)
	}

	var err error
	if in.Minutes, err = strconv.Atoi(f.Minutes); err != nil {
		return in, apperror.ValidationFailed("time_min", msgWholeNumber)
	}
	if f.Seconds != "" {
		if in.Seconds, err = strconv.Atoi(f.Seconds); err != nil {
			return in, apperror.ValidationFailed("time_s", msgWholeNumber)
		}
	}
	if f.HeartRate != "" {
		if in.HeartRate, err = strconv.Atoi(f.HeartRate); err != nil {
			return in, apperror.ValidationFailed("heart_rate", msgWholeNumber)
		}
		if in.HeartRate == 0 {
			return in, apperror.ValidationFailed("heart_rate", service.MsgHeartRate)
		}
	}
	return in, nil
}

// epochParam parses a URL segment holding epoch seconds.
func epochParam(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec < 0 {
		return time.Time{}, apperror.NotFound("stat", s)
	}
	return time.Unix(sec, 0), nil
}
