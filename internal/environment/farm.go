// Package environment estimates the land a dragon farm needs.
//
// Every dragon claims a square of side twice its body length; the farm
// adds a safety margin on top of the summed squares plus fixed areas for
// prey and for hatching.
package environment

import (
	"fmt"

	"github.com/san-kum/dragonlab/internal/dataset"
	"github.com/san-kum/dragonlab/internal/fit"
)

const sqmPerHectare = 10000.0

// ColPersonalArea holds each dragon's square in the per-dragon table.
const ColPersonalArea = "personal_area_m2"

// DefaultLengthModel is length in metres as a quartic in age in years.
func DefaultLengthModel() fit.Polynomial {
	return fit.Polynomial{Coeffs: []float64{8.335, 1.351, -5.467e-3, 7.748e-6, 4.973e-9}}
}

// AreaPerDragon is the personal square of a dragon of length l.
func AreaPerDragon(l float64) float64 {
	side := 2 * l
	return side * side
}

// Herd lists the ages of perAge dragons for every age from 0 to maxAge.
func Herd(perAge, maxAge int) []float64 {
	if perAge <= 0 || maxAge < 0 {
		return nil
	}
	ages := make([]float64, 0, perAge*(maxAge+1))
	for a := 0; a <= maxAge; a++ {
		for i := 0; i < perAge; i++ {
			ages = append(ages, float64(a))
		}
	}
	return ages
}

type Options struct {
	SafetyFactor float64 `yaml:"safety_factor"`
	PreyArea     float64 `yaml:"prey_area_m2"`
	HatchingArea float64 `yaml:"hatching_area_m2"`
}

func DefaultOptions() Options {
	return Options{
		SafetyFactor: 1.2,
		PreyArea:     5000,
		HatchingArea: 1000,
	}
}

// Estimate is the land requirement of a herd.
type Estimate struct {
	Dragons    int
	DragonArea float64
	TotalArea  float64
	Density    float64
	PerDragon  *dataset.Table
}

// TotalFarmArea sizes a farm for dragons of the given ages. Lengths come
// from length; the safety factor scales the summed personal areas only.
func TotalFarmArea(ages []float64, length fit.Model, opts Options) (Estimate, error) {
	if length == nil {
		return Estimate{}, fmt.Errorf("environment: nil length model")
	}
	if opts.SafetyFactor <= 0 {
		return Estimate{}, fmt.Errorf("environment: safety factor must be positive, got %v", opts.SafetyFactor)
	}

	lengths := make([]float64, len(ages))
	areas := make([]float64, len(ages))
	sum := 0.0
	for i, a := range ages {
		lengths[i] = length.Eval(a)
		areas[i] = AreaPerDragon(lengths[i])
		sum += areas[i]
	}

	tbl := dataset.New()
	if err := tbl.SetFloats(dataset.ColAge, ages); err != nil {
		return Estimate{}, err
	}
	if err := tbl.SetFloats(dataset.ColLength, lengths); err != nil {
		return Estimate{}, err
	}
	if err := tbl.SetFloats(ColPersonalArea, areas); err != nil {
		return Estimate{}, err
	}

	total := opts.SafetyFactor*sum + opts.PreyArea + opts.HatchingArea
	return Estimate{
		Dragons:    len(ages),
		DragonArea: sum,
		TotalArea:  total,
		Density:    Density(len(ages), total),
		PerDragon:  tbl,
	}, nil
}

// Density is dragons per hectare.
func Density(n int, areaM2 float64) float64 {
	if areaM2 <= 0 {
		return 0
	}
	return float64(n) / (areaM2 / sqmPerHectare)
}
