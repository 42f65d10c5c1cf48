package geo

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"
)

func genCoordinate(t *rapid.T, label string) Coordinate {
	return Coordinate{
		Latitude:  rapid.Float64Range(-90, 90).Draw(t, label+"_lat"),
		Longitude: rapid.Float64Range(-180, 180).Draw(t, label+"_lon"),
	}
}

// Feature: stride, Property 1: distance is symmetric
func TestDistanceSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genCoordinate(t, "a")
		b := genCoordinate(t, "b")
		if DistanceKm(a, b) != DistanceKm(b, a) {
			t.Fatalf("distance not symmetric: %v vs %v", DistanceKm(a, b), DistanceKm(b, a))
		}
	})
}

// Feature: stride, Property 2: distance to self is zero
func TestDistanceToSelfIsZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genCoordinate(t, "a")
		if d := DistanceKm(a, a); d != 0 {
			t.Fatalf("expected 0, got %v", d)
		}
	})
}

func TestDistanceKnownValues(t *testing.T) {
	// 0.01 degrees of longitude on the equator.
	d := DistanceKm(Coordinate{Latitude: 0, Longitude: 0}, Coordinate{Latitude: 0, Longitude: 0.01})
	if math.Abs(d-1.112) > 0.01 {
		t.Fatalf("unexpected distance: %v", d)
	}

	// Jakarta to Bandung is roughly 115-120 km.
	d = HaversineKm(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100 || d > 140 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinate
		ok   bool
	}{
		{"origin", Coordinate{}, true},
		{"poles", Coordinate{Latitude: 90, Longitude: -180}, true},
		{"lat too big", Coordinate{Latitude: 90.5}, false},
		{"lon too small", Coordinate{Longitude: -181}, false},
		{"nan", Coordinate{Latitude: math.NaN()}, false},
		{"inf", Coordinate{Longitude: math.Inf(1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidCoordinate) {
				t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}
