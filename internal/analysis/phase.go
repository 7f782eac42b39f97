package analysis

import "github.com/san-kum/dragonlab/internal/dynamo"

// Phase is the trajectory of a run projected onto two compartments.
type Phase struct {
	XIndex, YIndex int
	X, Y           []float64
}

// PhasePortrait projects every sample of res onto compartments xIdx and
// yIdx. It returns nil for an empty run or an index outside the state.
func PhasePortrait(res *dynamo.Result, xIdx, yIdx int) *Phase {
	if res == nil || len(res.States) == 0 {
		return nil
	}
	dim := len(res.States[0])
	if xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil
	}
	return &Phase{
		XIndex: xIdx,
		YIndex: yIdx,
		X:      res.Column(xIdx),
		Y:      res.Column(yIdx),
	}
}

// Extent returns the bounding box of the trajectory.
func (p *Phase) Extent() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = p.X[0], p.X[0]
	ymin, ymax = p.Y[0], p.Y[0]
	for i := range p.X {
		xmin, xmax = min(xmin, p.X[i]), max(xmax, p.X[i])
		ymin, ymax = min(ymin, p.Y[i]), max(ymax, p.Y[i])
	}
	return xmin, xmax, ymin, ymax
}
