package config

import (
	"sort"

	"github.com/san-kum/dragonlab/internal/population"
)

type Preset struct {
	Description string
	Params      population.Params
	Initial     []float64
}

func withParams(edit func(p *population.Params)) population.Params {
	p := population.DefaultParams()
	edit(&p)
	return p
}

var Presets = map[string]Preset{
	"lore": {
		Description: "default rates, slow decline (R0 ~ 0.70)",
		Params:      population.DefaultParams(),
		Initial:     []float64{10, 3, 1, 0},
	},
	"stable": {
		Description: "birth rate tuned to exact replacement (R0 = 1)",
		Params:      withParams(func(p *population.Params) { p.B = 5.6875 }),
		Initial:     []float64{10, 3, 1, 0},
	},
	"collapse": {
		Description: "low fecundity and high adult mortality",
		Params: withParams(func(p *population.Params) {
			p.B = 2
			p.DA = 0.8
		}),
		Initial: []float64{10, 3, 1, 0},
	},
	"boom": {
		Description: "high fecundity, low juvenile mortality",
		Params: withParams(func(p *population.Params) {
			p.B = 12
			p.DH = 0.1
		}),
		Initial: []float64{10, 3, 1, 2},
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
