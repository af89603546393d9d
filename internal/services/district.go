package services

import (
	"regexp"
	"strings"

	"github.com/daaqui-joyas/salesbot/internal/models"
)

// Coverage is the result of resolving a Lima district.
type Coverage string

const (
	WithCoverage    Coverage = "WITH_COVERAGE"
	WithoutCoverage Coverage = "WITHOUT_COVERAGE"
	NotFound        Coverage = "NOT_FOUND"
)

var (
	// Only leading filler is removed, so names such as "San Juan de
	// Lurigancho" keep their inner "de".
	districtFiller = regexp.MustCompile(`^(?:soy de|vivo en|estoy en|es en|queda en|mi distrito es|el distrito es|en el distrito de|en|de)\s+`)
	provinceFiller = regexp.MustCompile(`(?i)^\s*(?:soy de|vivo en|mi ciudad es|el distrito es|estoy en)\s+`)
)

// DistrictResolver classifies free-text Lima locations against the
// coverage lists of the business rules.
type DistrictResolver struct {
	rules models.BusinessRules
}

// NewDistrictResolver creates a resolver over a rules snapshot.
func NewDistrictResolver(rules models.BusinessRules) *DistrictResolver {
	return &DistrictResolver{rules: rules}
}

// NormalizeAndCheck returns the canonical, title-cased district name and its
// coverage status. An exact name wins; otherwise the first list entry
// containing the input does.
func (r *DistrictResolver) NormalizeAndCheck(text string) (string, Coverage) {
	input := normalize(text)
	for {
		stripped := districtFiller.ReplaceAllString(input, "")
		if stripped == input {
			break
		}
		input = strings.TrimSpace(stripped)
	}
	input = strings.Trim(input, " .,;:!¡?¿")
	if input == "" {
		return "", NotFound
	}

	if name, coverage, ok := r.exact(input); ok {
		return titleCase(name), coverage
	}
	for _, abbr := range r.rules.DistrictAbbreviations {
		if key := normalize(abbr.Key); key != "" && strings.Contains(input, key) {
			input = normalize(abbr.Value)
			break
		}
	}
	if name, coverage, ok := r.exact(input); ok {
		return titleCase(name), coverage
	}

	if name, ok := firstContaining(r.rules.CoverageDistricts, input); ok {
		return titleCase(name), WithCoverage
	}
	if name, ok := firstContaining(r.rules.AllDistricts, input); ok {
		return titleCase(name), WithoutCoverage
	}
	return "", NotFound
}

// exact finds a district whose normalized name equals input. It runs before
// the substring scan so "Lurigancho" does not resolve to "San Juan de Lurigancho".
func (r *DistrictResolver) exact(input string) (string, Coverage, bool) {
	for _, d := range r.rules.CoverageDistricts {
		if normalize(d) == input {
			return d, WithCoverage, true
		}
	}
	for _, d := range r.rules.AllDistricts {
		if normalize(d) == input {
			return d, WithoutCoverage, true
		}
	}
	return "", NotFound, false
}

func firstContaining(list []string, input string) (string, bool) {
	for _, d := range list {
		if strings.Contains(normalize(d), input) {
			return d, true
		}
	}
	return "", false
}

// ParseProvinceDistrict splits "Arequipa, Cayma" style input at the first
// comma, hyphen or slash. Without a separator the whole text is used for both.
func ParseProvinceDistrict(text string) (province, district string) {
	clean := strings.TrimSpace(provinceFiller.ReplaceAllString(text, ""))
	if i := strings.IndexAny(clean, ",-/"); i >= 0 {
		province = strings.TrimSpace(clean[:i])
		district = strings.TrimSpace(clean[i+1:])
		switch {
		case province == "":
			province = district
		case district == "":
			district = province
		}
		return titleCase(province), titleCase(district)
	}
	return titleCase(clean), titleCase(clean)
}
