package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title       lipgloss.Style
	Subtle      lipgloss.Style
	MetricLabel lipgloss.Style
	MetricValue lipgloss.Style
	Warn        lipgloss.Style
	Saved       lipgloss.Style

	SparkHigh lipgloss.Style
	SparkMid  lipgloss.Style
	SparkLow  lipgloss.Style
)

func init() {
	applyTheme(CurrentTheme)
}

func applyTheme(t Theme) {
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Border)
	Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	MetricLabel = lipgloss.NewStyle().Foreground(t.Muted)
	MetricValue = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	Warn = lipgloss.NewStyle().Foreground(t.Warning)
	Saved = lipgloss.NewStyle().Foreground(t.Good)

	SparkHigh = lipgloss.NewStyle().Foreground(t.Good)
	SparkMid = lipgloss.NewStyle().Foreground(t.Warning)
	SparkLow = lipgloss.NewStyle().Foreground(t.Bad)
}

// Metric renders "label: value" with a fixed-width label.
func Metric(label string, value float64) string {
	return MetricLabel.Render(fmt.Sprintf("%-16s", label)) + " " + MetricValue.Render(FormatValue(value))
}

// FormatValue prints v compactly; NaN prints as "NaN".
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case v == 0:
		return "0"
	case math.Abs(v) >= 1e5 || math.Abs(v) < 1e-3:
		return fmt.Sprintf("%.4e", v)
	}
	return fmt.Sprintf("%.4f", v)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// SparklineChart renders values as one line of block characters, one per
// column. Each column shows the mean of its bucket; NaN values are skipped
// and an all-NaN bucket is drawn as a space.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	width = min(width, len(values))

	cols := make([]float64, width)
	lo, hi := math.Inf(1), math.Inf(-1)
	for c := range cols {
		sum, n := 0.0, 0
		for _, v := range values[c*len(values)/width : (c+1)*len(values)/width] {
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		cols[c] = math.NaN()
		if n > 0 {
			cols[c] = sum / float64(n)
			lo, hi = min(lo, cols[c]), max(hi, cols[c])
		}
	}
	span := hi - lo
	if span <= 0 || math.IsInf(span, 0) {
		span = 1
	}

	var b strings.Builder
	for _, v := range cols {
		if math.IsNaN(v) {
			b.WriteByte(' ')
			continue
		}
		frac := (v - lo) / span
		r := string(sparkRunes[min(int(frac*float64(len(sparkRunes))), len(sparkRunes)-1)])
		switch {
		case frac > 0.7:
			b.WriteString(SparkHigh.Render(r))
		case frac > 0.3:
			b.WriteString(SparkMid.Render(r))
		default:
			b.WriteString(SparkLow.Render(r))
		}
	}
	return b.String()
}

// Separator is a muted horizontal rule.
func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}
