package vault

import "strings"

// NormalizeRegion maps user input and its accepted synonyms onto a Region.
func NormalizeRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "us", "usa", "unitedstates", "united_states":
		return RegionUS, nil
	case "ous", "outside", "outside-us", "outside_of_us", "outsideofus", "eu", "europe", "uk":
		return RegionOUS, nil
	case "jp", "japan":
		return RegionJP, nil
	default:
		return "", ErrInvalidRegion
	}
}

// String returns the region code.
func (r Region) String() string {
	return string(r)
}
