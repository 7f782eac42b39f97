// Package allometry scales body mass from length and wing area from
// wingspan using constants calibrated on an adult reference animal:
//
//	M = κL · L³
//	A = κb · b^β
package allometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dragonlab/internal/dataset"
)

var (
	ErrNoReference  = errors.New("allometry: no reference row at adult age")
	ErrBadReference = errors.New("allometry: reference row has no usable length or wingspan")
)

// Reference describes the full-grown animal the constants are fitted on.
// Length and wingspan come from the table row at AdultAge.
type Reference struct {
	AdultAge      float64 `yaml:"adult_age"`
	AdultMass     float64 `yaml:"adult_mass_kg"`
	AdultWingArea float64 `yaml:"adult_wing_area_m2"`
	Beta          float64 `yaml:"beta"`
}

func DefaultReference() Reference {
	return Reference{
		AdultAge:      8,
		AdultMass:     35000,
		AdultWingArea: 700,
		Beta:          2,
	}
}

// Constants are the calibrated scaling coefficients.
type Constants struct {
	KappaL float64
	KappaB float64
	Beta   float64
}

func KappaL(lAdult, mAdult float64) float64 {
	return mAdult / (lAdult * lAdult * lAdult)
}

func KappaB(bAdult, aAdult, beta float64) float64 {
	return aAdult / math.Pow(bAdult, beta)
}

func MassFromLength(l, kappaL float64) float64 {
	return kappaL * l * l * l
}

func WingAreaFromSpan(b, kappaB, beta float64) float64 {
	return kappaB * math.Pow(b, beta)
}

// Calibrate derives the constants from the first row of t whose age
// equals ref.AdultAge.
func Calibrate(t *dataset.Table, ref Reference) (Constants, error) {
	ages, err := t.Floats(dataset.ColAge)
	if err != nil {
		return Constants{}, err
	}
	lengths, err := t.Floats(dataset.ColLength)
	if err != nil {
		return Constants{}, err
	}
	spans, err := t.Floats(dataset.ColWingspan)
	if err != nil {
		return Constants{}, err
	}

	for i, a := range ages {
		if a != ref.AdultAge {
			continue
		}
		l, b := lengths[i], spans[i]
		if !(l > 0) || !(b > 0) {
			return Constants{}, fmt.Errorf("%w: row %d length=%v wingspan=%v", ErrBadReference, i, l, b)
		}
		return Constants{
			KappaL: KappaL(l, ref.AdultMass),
			KappaB: KappaB(b, ref.AdultWingArea, ref.Beta),
			Beta:   ref.Beta,
		}, nil
	}
	return Constants{}, fmt.Errorf("%w: age %v", ErrNoReference, ref.AdultAge)
}

// FillMissing returns a copy of t with NA mass and wing area cells
// computed from length and wingspan. Existing values are kept; a row
// without a length (or wingspan) stays NA.
func FillMissing(t *dataset.Table, ref Reference) (*dataset.Table, Constants, error) {
	c, err := Calibrate(t, ref)
	if err != nil {
		return nil, Constants{}, err
	}

	out := t.Clone()
	lengths, _ := out.Floats(dataset.ColLength)
	spans, _ := out.Floats(dataset.ColWingspan)

	mass, err := column(out, dataset.ColMass)
	if err != nil {
		return nil, Constants{}, err
	}
	area, err := column(out, dataset.ColWingArea)
	if err != nil {
		return nil, Constants{}, err
	}

	for i := range mass {
		if math.IsNaN(mass[i]) {
			mass[i] = MassFromLength(lengths[i], c.KappaL)
		}
		if math.IsNaN(area[i]) {
			area[i] = WingAreaFromSpan(spans[i], c.KappaB, c.Beta)
		}
	}

	if err := out.SetFloats(dataset.ColMass, mass); err != nil {
		return nil, Constants{}, err
	}
	if err := out.SetFloats(dataset.ColWingArea, area); err != nil {
		return nil, Constants{}, err
	}
	return out, c, nil
}

// column returns the numeric values of col, all NA if the column is absent.
func column(t *dataset.Table, col string) ([]float64, error) {
	if !t.Has(col) {
		vals := make([]float64, t.Len())
		for i := range vals {
			vals[i] = math.NaN()
		}
		return vals, nil
	}
	return t.Floats(col)
}
