package geo

import (
	"math"
	"testing"
)

func TestHaversineKM(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		wantKM    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Point{Latitude: 9.02, Longitude: 38.75},
			b:         Point{Latitude: 9.02, Longitude: 38.75},
			wantKM:    0,
			tolerance: 0.001,
		},
		{
			name:      "addis ababa to adama",
			a:         Point{Latitude: 9.02, Longitude: 38.75},
			b:         Point{Latitude: 8.54, Longitude: 39.27},
			wantKM:    78,
			tolerance: 3,
		},
		{
			name:      "addis ababa to bahir dar",
			a:         Point{Latitude: 9.02, Longitude: 38.75},
			b:         Point{Latitude: 11.59, Longitude: 37.39},
			wantKM:    320,
			tolerance: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKM(tt.a, tt.b)
			if math.Abs(got-tt.wantKM) > tt.tolerance {
				t.Errorf("HaversineKM = %.2f, want %.2f +/- %.2f", got, tt.wantKM, tt.tolerance)
			}
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Point{Latitude: 9.02, Longitude: 38.75}
	b := Point{Latitude: 7.06, Longitude: 38.48}
	if d1, d2 := HaversineKM(a, b), HaversineKM(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestStaticGazetteer(t *testing.T) {
	g := NewStaticGazetteer(DefaultCities())

	p, ok := g.Resolve("Adama")
	if !ok {
		t.Fatal("expected Adama to resolve")
	}
	if p.Latitude != 8.54 || p.Longitude != 39.27 {
		t.Errorf("unexpected coordinates for Adama: %+v", p)
	}

	if _, ok := g.Resolve("Atlantis"); ok {
		t.Error("unknown place should not resolve")
	}
}
