package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRegion(t *testing.T) {
	valid := map[Region][]string{
		RegionUS:  {"us", "USA", "unitedstates", "United_States", "  us  "},
		RegionOUS: {"ous", "outside", "outside-us", "outside_of_us", "outsideofus", "EU", "europe", "uk"},
		RegionJP:  {"jp", "Japan"},
	}

	for want, inputs := range valid {
		for _, in := range inputs {
			got, err := NormalizeRegion(in)
			assert.NoError(t, err, "input %q", in)
			assert.Equal(t, want, got, "input %q", in)
		}
	}

	for _, in := range []string{"", "ca", "united states", "japan!", "de"} {
		_, err := NormalizeRegion(in)
		assert.ErrorIs(t, err, ErrInvalidRegion, "input %q", in)
	}
}
