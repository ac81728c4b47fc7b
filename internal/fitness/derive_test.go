package fitness

import (
	"errors"
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name             string
		distance, height float64
		min, sec         int
		want             Effort
	}{
		{
			name:     "flat 6k with 1000m credited climb",
			distance: 5000, height: 100, min: 30, sec: 0,
			want: Effort{Seconds: 1800, DistanceKm: 6, Pace: 5, Speed: 12},
		},
		{
			name:     "flat 10k in 50 minutes",
			distance: 10000, height: 0, min: 50, sec: 0,
			want: Effort{Seconds: 3000, DistanceKm: 10, Pace: 5, Speed: 12},
		},
		{
			name:     "seconds only",
			distance: 400, height: 0, min: 0, sec: 90,
			want: Effort{Seconds: 90, DistanceKm: 0.4, Pace: 3.75, Speed: 16},
		},
		{
			name:     "rounds to three decimals",
			distance: 3000, height: 0, min: 17, sec: 20,
			// 17.333.../3 = 5.7777... ; 3/(0.28888...) = 10.3846...
			want: Effort{Seconds: 1040, DistanceKm: 3, Pace: 5.778, Speed: 10.385},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(tt.distance, tt.height, tt.min, tt.sec)
			if err != nil {
				t.Fatalf("Derive() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Derive() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDerive_Errors(t *testing.T) {
	if _, err := Derive(0, 0, 10, 0); !errors.Is(err, ErrZeroDistance) {
		t.Errorf("zero distance: err = %v, want ErrZeroDistance", err)
	}
	if _, err := Derive(5000, 0, 0, 0); !errors.Is(err, ErrZeroTime) {
		t.Errorf("zero time: err = %v, want ErrZeroTime", err)
	}
}

func TestEffectiveDistanceKm(t *testing.T) {
	if got := EffectiveDistanceKm(5000, 100); got != 6 {
		t.Errorf("EffectiveDistanceKm(5000, 100) = %v, want 6", got)
	}
}
