package transform

import (
	"strings"
)

// ExtractLocation splits a composite "City, State, Country" string into its
// parts, producing partial results when fewer parts are present. Strings
// with more than three comma-separated parts fall back to the whole value
// as the city.
func ExtractLocation(location string) (city, state, country *string) {
	cleaned := Clean(location)
	if cleaned == nil {
		return nil, nil, nil
	}

	parts := strings.Split(*cleaned, ",")
	switch len(parts) {
	case 3:
		return Clean(parts[0]), Clean(parts[1]), Clean(parts[2])
	case 2:
		return Clean(parts[0]), Clean(parts[1]), nil
	case 1:
		return Clean(parts[0]), nil, nil
	default:
		return cleaned, nil, nil
	}
}

func (e *Engine) categorizeRegion(country *string) string {
	if country == nil {
		return "Unknown"
	}
	lower := strings.ToLower(*country)
	for _, region := range e.catalog.Regions {
		for _, c := range region.Countries {
			if strings.Contains(lower, c) {
				return region.Name
			}
		}
	}
	return "Other"
}

func (e *Engine) categorizeContinent(country *string) string {
	if country == nil {
		return "Unknown"
	}
	lower := strings.ToLower(*country)
	for _, continent := range e.catalog.Continents {
		for _, c := range continent.Countries {
			if strings.Contains(lower, c) {
				return continent.Name
			}
		}
	}
	return "Other"
}
