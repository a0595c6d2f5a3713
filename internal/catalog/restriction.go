package catalog

import "strings"

// Restrictor decides which rows never reach the public catalog.
type Restrictor struct {
	keywords     []string
	exceptions   []MarkerException
	discontinued map[string]struct{}
}

func NewRestrictor(rs RuleSet) *Restrictor {
	r := &Restrictor{
		discontinued: make(map[string]struct{}, len(rs.Discontinued)),
	}
	for _, kw := range rs.RestrictedKeywords {
		if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" {
			r.keywords = append(r.keywords, kw)
		}
	}
	for _, ex := range rs.MarkerExceptions {
		r.exceptions = append(r.exceptions, MarkerException{
			Base:   strings.ToUpper(collapseSpaces(ex.Base)),
			Marker: strings.ToUpper(collapseSpaces(ex.Marker)),
		})
	}
	for _, d := range rs.Discontinued {
		r.discontinued[discontinuedKey(d.Base, d.Flavor)] = struct{}{}
	}
	return r
}

// IsRestricted reports whether a row must be dropped from aggregation.
// Keywords are matched as substrings of both the normalized and raw name.
func (r *Restrictor) IsRestricted(normalized, baseKey, raw string) bool {
	n := strings.ToUpper(normalized)
	rawUpper := strings.ToUpper(raw)
	for _, kw := range r.keywords {
		if strings.Contains(n, kw) || strings.Contains(rawUpper, kw) {
			return true
		}
	}

	for _, ex := range r.exceptions {
		if baseKey == ex.Base+" "+ex.Marker {
			return true
		}
		if baseKey == ex.Base && containsPhrase(n, ex.Marker) {
			return true
		}
	}
	return false
}

// IsDiscontinued matches an exact (base, flavor) pair, ignoring flavor case.
func (r *Restrictor) IsDiscontinued(baseKey, flavor string) bool {
	_, ok := r.discontinued[discontinuedKey(baseKey, flavor)]
	return ok
}

func discontinuedKey(base, flavor string) string {
	return strings.ToUpper(collapseSpaces(base)) + "|" + strings.ToUpper(collapseSpaces(flavor))
}

func containsPhrase(s, phrase string) bool {
	return strings.Contains(" "+s+" ", " "+phrase+" ")
}
