package catalog

import (
	"regexp"
	"strings"

	"storefront-backend/internal/domain"
)

var (
	sizeSpecRe     = regexp.MustCompile(`^\d+(?:\.\d)?(?:K|G|GR|MG|ML|OZ|PK|CT)$`)
	packSizeRe     = regexp.MustCompile(`^\d+(?:PK|CT)$`)
	packFractionRe = regexp.MustCompile(`^(?:\d+-)?\d+/\d+$`)
)

var descriptorTokens = map[string]bool{
	"SINGLE": true, "ORIGINAL": true, "KINGS": true, "SLIM": true,
	"MINI": true, "EXTRA": true, "DOUBLE": true, "TRIPLE": true,
	"DUAL": true, "WOOD": true, "PLASTIC": true, "SMALL": true,
	"CLASSIC": true, "ORGANIC": true,
}

// marker keeps a sibling edition out of its parent's group.
type marker struct {
	suffix string
	re     *regexp.Regexp
}

// Checked in order; the first hit wins.
var markers = []marker{
	{suffix: "ZERO NIC", re: regexp.MustCompile(`(?i)\bZERO\s+NIC(?:OTINE)?\b`)},
	{suffix: "NO NICOTINE", re: regexp.MustCompile(`(?i)\bNO\s+NICOTINE\b`)},
	{suffix: "WHOLE", re: regexp.MustCompile(`(?i)\bWHOLE\b`)},
}

// KeyResult is the base key of a normalized name and how it was derived.
type KeyResult struct {
	Base   string
	Marker string
	// Fallback is set when no size token was found and the generic
	// two/three token rule produced the key.
	Fallback bool
}

// KeyExtractor splits normalized names into base key and flavor.
type KeyExtractor struct{}

func NewKeyExtractor() *KeyExtractor {
	return &KeyExtractor{}
}

// BaseKey returns the product family of a normalized name.
func (k *KeyExtractor) BaseKey(name string) string {
	return k.Extract(name).Base
}

func (k *KeyExtractor) Extract(name string) KeyResult {
	var found *marker
	for i := range markers {
		if markers[i].re.MatchString(name) {
			found = &markers[i]
			break
		}
	}

	body := name
	if found != nil {
		body = found.re.ReplaceAllString(name, " ")
	}
	prefix, fallback := basePrefix(strings.Fields(body))

	res := KeyResult{Base: strings.Join(prefix, " "), Fallback: fallback}
	if found != nil {
		res.Marker = found.suffix
		res.Base = strings.TrimSpace(res.Base + " " + found.suffix)
	}
	return res
}

func basePrefix(tokens []string) ([]string, bool) {
	for i, tok := range tokens {
		if !sizeSpecRe.MatchString(strings.ToUpper(tok)) {
			continue
		}
		end := i + 1
		// 3PK CLASSIC and the like name the pack, not a flavor
		if packSizeRe.MatchString(strings.ToUpper(tok)) && end < len(tokens) && isClassicOrOrganic(tokens[end]) {
			end++
			if end < len(tokens) && packFractionRe.MatchString(tokens[end]) {
				end++
			}
		}
		return tokens[:end], false
	}

	end := len(tokens)
	if end > 2 {
		end = 2
	}
	if len(tokens) > 2 && descriptorTokens[strings.ToUpper(tokens[2])] {
		end = 3
		if isClassicOrOrganic(tokens[2]) && len(tokens) > 3 && packFractionRe.MatchString(tokens[3]) {
			end = 4
		}
	}
	return tokens[:end], true
}

func isClassicOrOrganic(tok string) bool {
	tok = strings.ToUpper(tok)
	return tok == "CLASSIC" || tok == "ORGANIC"
}

// Flavor strips base from the normalized name. A marker carried by the base
// is removed wherever it appears in the remainder.
func (k *KeyExtractor) Flavor(name, base string) string {
	rest := collapseSpaces(name)

	m := markerOf(base)
	switch {
	case m == nil:
		rest = trimWordPrefixFold(rest, base)
	case hasWordPrefixFold(rest, base):
		rest = rest[len(base):]
	default:
		core := strings.TrimSpace(strings.TrimSuffix(base, m.suffix))
		rest = trimWordPrefixFold(collapseSpaces(m.re.ReplaceAllString(rest, " ")), core)
	}
	if m != nil {
		rest = m.re.ReplaceAllString(rest, " ")
	}

	rest = collapseSpaces(rest)
	if rest == "" {
		return domain.FlavorOriginal
	}
	return rest
}

func markerOf(base string) *marker {
	for i := range markers {
		s := markers[i].suffix
		if base == s || strings.HasSuffix(base, " "+s) {
			return &markers[i]
		}
	}
	return nil
}

func hasWordPrefixFold(s, prefix string) bool {
	if prefix == "" || len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return false
	}
	return len(s) == len(prefix) || s[len(prefix)] == ' '
}

func trimWordPrefixFold(s, prefix string) string {
	if hasWordPrefixFold(s, prefix) {
		return s[len(prefix):]
	}
	return s
}
