// Package energetics estimates daily energy budgets from body mass.
package energetics

import (
	"math"

	"github.com/san-kum/dragonlab/internal/dataset"
)

// wattsPerKcalDay converts kcal/day to watts.
const wattsPerKcalDay = 4184.0 / 86400.0

// Output column names.
const (
	ColRER    = "RER_kcal_day"
	ColMER    = "MER_kcal_day"
	ColFlight = "flight_energy_3h_kcal"
	ColFire   = "fire_daily_kcal"
	ColThermo = "thermo_kcal_per_degC"
)

// RER is the Kleiber resting energy requirement in kcal/day.
func RER(massKg float64) float64 {
	return 70 * math.Pow(massKg, 0.75)
}

// MER is the maintenance energy requirement, alpha times RER.
func MER(massKg, alpha float64) float64 {
	return alpha * RER(massKg)
}

// FlightPower is the power of sustained flight over a full day, in kcal.
func FlightPower(massKg, phi, exponent float64) float64 {
	return phi * math.Pow(massKg, exponent)
}

// FlightEnergy is the energy of hours of flight per day.
func FlightEnergy(massKg, hours, phi, exponent float64) float64 {
	return FlightPower(massKg, phi, exponent) * hours / 24
}

// FireBurstEnergy is the energy of one burst of volume liters of fuel gas
// burned at efficiency delta with combustion energy c kcal/L.
func FireBurstEnergy(liters, delta, c float64) float64 {
	return delta * liters * c
}

func FireDailyEnergy(bursts int, liters, delta, c float64) float64 {
	return float64(bursts) * FireBurstEnergy(liters, delta, c)
}

// Scholander returns the thermal conductance implied by a resting
// metabolism holding the body deltaT degrees above ambient, in W/°C and
// kcal/day/°C.
func Scholander(rer, deltaT float64) (wattsPerDeg, kcalPerDayPerDeg float64) {
	c := rer * wattsPerKcalDay / deltaT
	return c, c / wattsPerKcalDay
}

// Params are the budget assumptions applied to every row.
type Params struct {
	Alpha          float64 `yaml:"alpha"`
	FlightPhi      float64 `yaml:"flight_phi"`
	FlightExponent float64 `yaml:"flight_exponent"`
	FlightHours    float64 `yaml:"flight_hours"`
	FireBursts     int     `yaml:"fire_bursts"`
	FireLiters     float64 `yaml:"fire_liters"`
	FireEfficiency float64 `yaml:"fire_efficiency"`
	FireKcalPerL   float64 `yaml:"fire_kcal_per_liter"`
	DeltaT         float64 `yaml:"delta_t"`
}

func DefaultParams() Params {
	return Params{
		Alpha:          2,
		FlightPhi:      0.02,
		FlightExponent: 1.1,
		FlightHours:    3,
		FireBursts:     2,
		FireLiters:     100,
		FireEfficiency: 0.8,
		FireKcalPerL:   9.3,
		DeltaT:         28,
	}
}

// Budget is the energy budget of one animal.
type Budget struct {
	RER    float64
	MER    float64
	Flight float64
	Fire   float64
	Thermo float64
}

// Estimate computes the budget for one mass. A NaN mass gives NaN for
// every mass-dependent term.
func (p Params) Estimate(massKg float64) Budget {
	rer := RER(massKg)
	_, thermo := Scholander(rer, p.DeltaT)
	return Budget{
		RER:    rer,
		MER:    MER(massKg, p.Alpha),
		Flight: FlightEnergy(massKg, p.FlightHours, p.FlightPhi, p.FlightExponent),
		Fire:   FireDailyEnergy(p.FireBursts, p.FireLiters, p.FireEfficiency, p.FireKcalPerL),
		Thermo: thermo,
	}
}

// Compute returns a copy of t with the budget columns appended.
func Compute(t *dataset.Table, p Params) (*dataset.Table, error) {
	mass, err := t.Floats(dataset.ColMass)
	if err != nil {
		return nil, err
	}

	n := len(mass)
	rer := make([]float64, n)
	mer := make([]float64, n)
	flight := make([]float64, n)
	fire := make([]float64, n)
	thermo := make([]float64, n)
	for i, m := range mass {
		b := p.Estimate(m)
		rer[i], mer[i], flight[i], fire[i], thermo[i] = b.RER, b.MER, b.Flight, b.Fire, b.Thermo
	}

	out := t.Clone()
	for _, c := range []struct {
		name string
		vals []float64
	}{
		{ColRER, rer},
		{ColMER, mer},
		{ColFlight, flight},
		{ColFire, fire},
		{ColThermo, thermo},
	} {
		if err := out.SetFloats(c.name, c.vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}
