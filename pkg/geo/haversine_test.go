package geo

import (
	"math"
	"testing"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/types"
)

func TestDistanceKmSamePoint(t *testing.T) {
	p := types.Coordinates{Lat: 47.4979, Lng: 19.0402}
	if d := DistanceKm(p, p); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistanceKmBudapestVienna(t *testing.T) {
	budapest := types.Coordinates{Lat: 47.4979, Lng: 19.0402}
	vienna := types.Coordinates{Lat: 48.2082, Lng: 16.3738}
	d := DistanceKm(budapest, vienna)
	if math.Abs(d-214) > 3 {
		t.Fatalf("expected roughly 214km, got %f", d)
	}
	if back := DistanceKm(vienna, budapest); math.Abs(back-d) > 1e-9 {
		t.Fatalf("distance should be symmetric: %f vs %f", d, back)
	}
}

func TestDistanceKmOneDegreeLatitude(t *testing.T) {
	d := DistanceKm(types.Coordinates{Lat: 0, Lng: 0}, types.Coordinates{Lat: 1, Lng: 0})
	if math.Abs(d-111.19) > 0.1 {
		t.Fatalf("expected ~111.19km, got %f", d)
	}
}
