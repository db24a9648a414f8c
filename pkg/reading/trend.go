package reading

import "strings"

// Trend is the direction of the glucose change.
type Trend uint8

const (
	// TrendNone means no trend was reported or it could not be interpreted.
	TrendNone Trend = iota
	TrendDoubleUp
	TrendSingleUp
	TrendFortyFiveUp
	TrendFlat
	TrendFortyFiveDown
	TrendSingleDown
	TrendDoubleDown
)

var trendNames = map[Trend]string{
	TrendDoubleUp:      "DoubleUp",
	TrendSingleUp:      "SingleUp",
	TrendFortyFiveUp:   "FortyFiveUp",
	TrendFlat:          "Flat",
	TrendFortyFiveDown: "FortyFiveDown",
	TrendSingleDown:    "SingleDown",
	TrendDoubleDown:    "DoubleDown",
}

var trendGlyphs = map[Trend]string{
	TrendDoubleUp:      "↑↑",
	TrendSingleUp:      "↑",
	TrendFortyFiveUp:   "↗",
	TrendFlat:          "→",
	TrendFortyFiveDown: "↘",
	TrendSingleDown:    "↓",
	TrendDoubleDown:    "↓↓",
}

// trendKeys is keyed by the compacted lower-case name.
var trendKeys = map[string]Trend{
	"doubleup":      TrendDoubleUp,
	"singleup":      TrendSingleUp,
	"fortyfiveup":   TrendFortyFiveUp,
	"flat":          TrendFlat,
	"fortyfivedown": TrendFortyFiveDown,
	"singledown":    TrendSingleDown,
	"doubledown":    TrendDoubleDown,
}

// String returns the canonical trend name, or "None".
func (t Trend) String() string {
	if name, ok := trendNames[t]; ok {
		return name
	}
	return "None"
}

// Glyph returns the arrow shown for the trend, or "" for TrendNone.
func (t Trend) Glyph() string {
	return trendGlyphs[t]
}

// ParseTrend maps a trend name onto a Trend. Matching ignores case and the
// separators '_', '-' and ' ', so "SINGLE_UP", "singleUp" and "single-up"
// are equivalent. Unknown names yield TrendNone.
func ParseTrend(name string) Trend {
	return trendKeys[compact(name)]
}

// GlyphFor returns the glyph for a trend name, "" when unknown.
func GlyphFor(name string) string {
	return ParseTrend(name).Glyph()
}

func compact(s string) string {
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}
