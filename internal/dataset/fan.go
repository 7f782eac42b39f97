package dataset

import (
	"log/slog"
	"path/filepath"
	"slices"
)

var fanRenames = map[string]string{
	"age":      ColAge,
	"length":   ColLength,
	"wingspan": ColWingspan,
	"height":   ColHeight,
}

// ReadFanCSVs reads every *.csv in dir whose base name is not in skip
// and concatenates them, tagging each row with its file name. Files that
// fail to parse are logged and left out.
func ReadFanCSVs(dir string, logger *slog.Logger, skip ...string) (*Table, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)

	combined := New()
	for _, f := range files {
		base := filepath.Base(f)
		if slices.Contains(skip, base) {
			continue
		}

		t, err := LoadCSV(f)
		if err != nil {
			logger.Warn("failed to read fan csv", "file", f, "error", err)
			continue
		}

		src := make([]string, t.Len())
		for i := range src {
			src[i] = base
		}
		t.Drop(ColSource)
		if err := t.SetStrings(ColSource, src); err != nil {
			return nil, err
		}

		combined = combined.Append(t)
		logger.Debug("read fan csv", "file", base, "rows", t.Len())
	}
	return combined, nil
}

// Standardize maps fan column names onto the canonical ones, adds missing
// columns as NA and resets mass and wing area, which allometry fills.
// Columns outside the canonical set are dropped.
func Standardize(t *Table) *Table {
	if t.Len() == 0 {
		return t
	}

	out := t.Clone()
	out.Rename(fanRenames)

	na := make([]string, out.Len())
	for _, c := range []string{ColName, ColAge, ColLength, ColWingspan, ColHeight} {
		if !out.Has(c) {
			_ = out.SetStrings(c, na)
		}
	}
	_ = out.SetStrings(ColMass, na)
	_ = out.SetStrings(ColWingArea, na)
	if !out.Has(ColSource) {
		_ = out.SetStrings(ColSource, na)
	}

	cols := append(append([]string(nil), CanonicalColumns...), ColSource)
	sel, _ := out.Select(cols...)
	return sel
}

// Combine merges the lore anchors with standardized fan rows. Rows that
// repeat (name, age, length, wingspan) are dropped, keeping the first, so
// lore wins over fan data. The result is sorted by age then name with NA
// last, and the source column is removed.
func Combine(lore, fan *Table) (*Table, error) {
	combined := lore.Clone()
	if fan.Len() > 0 {
		var err error
		combined, err = lore.Append(fan).DropDuplicates(ColName, ColAge, ColLength, ColWingspan)
		if err != nil {
			return nil, err
		}
	}

	sorted, err := combined.SortBy(ColAge, ColName)
	if err != nil {
		return nil, err
	}
	sorted.Drop(ColSource)
	return sorted, nil
}
