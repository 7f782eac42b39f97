package energetics

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dragonlab/internal/dataset"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(b))
}

func TestRER(t *testing.T) {
	tests := []struct {
		mass     float64
		expected float64
	}{
		{1, 70},
		{16, 560},
		{10000, 70000},
	}

	for _, tt := range tests {
		if got := RER(tt.mass); !approx(got, tt.expected, 1e-12) {
			t.Errorf("RER(%v): expected %f, got %f", tt.mass, tt.expected, got)
		}
	}
}

func TestMER(t *testing.T) {
	if got := MER(16, 2); !approx(got, 1120, 1e-12) {
		t.Errorf("expected 1120, got %f", got)
	}
}

func TestFlightEnergy(t *testing.T) {
	power := FlightPower(1000, 0.02, 1.1)
	if !approx(power, 0.02*math.Pow(1000, 1.1), 1e-12) {
		t.Errorf("unexpected flight power %f", power)
	}
	if got := FlightEnergy(1000, 3, 0.02, 1.1); !approx(got, power/8, 1e-12) {
		t.Errorf("expected 3h to be an eighth of the daily power, got %f", got)
	}
}

func TestFireEnergy(t *testing.T) {
	if got := FireBurstEnergy(100, 0.8, 9.3); !approx(got, 744, 1e-12) {
		t.Errorf("expected burst 744 kcal, got %f", got)
	}
	if got := FireDailyEnergy(2, 100, 0.8, 9.3); !approx(got, 1488, 1e-12) {
		t.Errorf("expected daily 1488 kcal, got %f", got)
	}
}

func TestScholander(t *testing.T) {
	watts, kcal := Scholander(2800, 28)
	if !approx(kcal, 100, 1e-12) {
		t.Errorf("expected 100 kcal/day/°C, got %f", kcal)
	}
	if !approx(watts, 100*4184.0/86400.0, 1e-12) {
		t.Errorf("unexpected conductance %f W/°C", watts)
	}
}

func TestCompute(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader("age_yr,mass_kg\n0,16\n1,\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	out, err := Compute(tbl, DefaultParams())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	for _, col := range []string{ColRER, ColMER, ColFlight, ColFire, ColThermo} {
		if !out.Has(col) {
			t.Errorf("expected column %s", col)
		}
	}

	rer, _ := out.Floats(ColRER)
	if !approx(rer[0], 560, 1e-12) {
		t.Errorf("expected RER 560, got %f", rer[0])
	}
	if !math.IsNaN(rer[1]) {
		t.Errorf("expected NA RER for missing mass, got %f", rer[1])
	}

	fire, _ := out.Floats(ColFire)
	if !approx(fire[1], 1488, 1e-12) {
		t.Errorf("fire energy does not depend on mass, got %f", fire[1])
	}
}

func TestComputeMissingMass(t *testing.T) {
	tbl, _ := dataset.ReadCSV(strings.NewReader("age_yr\n1\n"))
	if _, err := Compute(tbl, DefaultParams()); err == nil {
		t.Error("expected error without a mass column")
	}
}
