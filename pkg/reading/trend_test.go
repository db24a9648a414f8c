package reading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlyphFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"SINGLE_UP", "↑"},
		{"singleUp", "↑"},
		{"single-up", "↑"},
		{"Single Up", "↑"},
		{"DoubleUp", "↑↑"},
		{"fortyFiveUp", "↗"},
		{"FLAT", "→"},
		{"forty_five_down", "↘"},
		{"SingleDown", "↓"},
		{"double-down", "↓↓"},
		{"", ""},
		{"None", ""},
		{"NotComputable", ""},
		{"RateOutOfRange", ""},
		{"sideways", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GlyphFor(tt.name))
		})
	}
}

func TestTrendTableIsTotal(t *testing.T) {
	for trend := TrendDoubleUp; trend <= TrendDoubleDown; trend++ {
		assert.NotEmpty(t, trend.Glyph(), "glyph for %v", trend)
		assert.Equal(t, trend, ParseTrend(trend.String()))
	}
	assert.Equal(t, "", TrendNone.Glyph())
	assert.Equal(t, "None", TrendNone.String())
}
