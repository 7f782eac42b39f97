package analysis

import (
	"math"

	"github.com/san-kum/dragonlab/internal/population"
)

// ScanPoint holds the reproductive outlook at one parameter value.
type ScanPoint struct {
	Param  float64
	R0     float64
	Growth float64 // dominant eigenvalue, per year
}

// ParameterScan sweeps one population parameter over steps evenly spaced
// values and records R0 and the asymptotic growth rate at each. Values
// where either is undefined hold NaN.
func ParameterScan(base population.Params, name string, lo, hi float64, steps int) ([]ScanPoint, error) {
	if steps <= 1 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)

	points := make([]ScanPoint, 0, steps)
	for i := 0; i < steps; i++ {
		v := lo + float64(i)*step
		p := base
		if err := p.Set(name, v); err != nil {
			return nil, err
		}

		r0, err := population.R0(p)
		if err != nil {
			r0 = math.NaN()
		}
		growth, err := population.AsymptoticGrowthRate(p)
		if err != nil {
			growth = math.NaN()
		}
		points = append(points, ScanPoint{Param: v, R0: r0, Growth: growth})
	}
	return points, nil
}

// Threshold returns the first parameter value at which R0 crosses 1,
// linearly interpolated between scan points, and false if it never does.
func Threshold(points []ScanPoint) (float64, bool) {
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if math.IsNaN(a.R0) || math.IsNaN(b.R0) {
			continue
		}
		if (a.R0-1)*(b.R0-1) > 0 || a.R0 == b.R0 {
			continue
		}
		frac := (1 - a.R0) / (b.R0 - a.R0)
		return a.Param + frac*(b.Param-a.Param), true
	}
	return math.NaN(), false
}
