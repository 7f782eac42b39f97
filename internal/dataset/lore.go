package dataset

// Canonical column names.
const (
	ColName     = "name"
	ColAge      = "age_yr"
	ColLength   = "length_m"
	ColWingspan = "wingspan_m"
	ColHeight   = "height_m"
	ColMass     = "mass_kg"
	ColWingArea = "wing_area_m2"
	ColSource   = "_source_file"
	LoreSource  = "lore_anchors"
	LoreName    = "Lore"
)

// CanonicalColumns is the column order of every prepared table.
var CanonicalColumns = []string{ColName, ColAge, ColLength, ColWingspan, ColHeight, ColMass, ColWingArea}

// loreAnchors are the hand-curated growth stages from age 0 to 8.
var loreAnchors = [][]string{
	{"0.0", "0.75", "1.88", "0.75", "29.0", "0.59"},
	{"1.0", "1.50", "3.75", "1.00", "117.0", "2.34"},
	{"2.5", "5.00", "12.50", "1.75", "1302.0", "26.04"},
	{"4.0", "13.50", "33.75", "2.00", "9492.0", "189.84"},
	{"8.0", "21.00", "52.50", "4.00", "22969.0", "459.38"},
}

// Lore returns the anchor rows tagged with their source.
func Lore() *Table {
	cols := append(append([]string(nil), CanonicalColumns...), ColSource)
	t := New(cols...)
	for _, row := range loreAnchors {
		cells := append([]string{LoreName}, row...)
		t.AppendRow(append(cells, LoreSource)...)
	}
	return t
}
