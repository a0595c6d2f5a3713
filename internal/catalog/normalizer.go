package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule is one rewrite step. Rewrite runs only when Match is nil or true.
type Rule struct {
	Name    string
	Match   func(string) bool
	Rewrite func(string) string
}

// Normalizer rewrites raw vendor names into canonical form by folding an
// ordered rule list. Rules are applied once each, in order.
type Normalizer struct {
	rules []Rule
}

var (
	zeroNicotineRe = regexp.MustCompile(`\bZERO\s+NICOTINE\b`)
	nicotineFreeRe = regexp.MustCompile(`\bNICOTINE\s+FREE\b`)
	noNicRe        = regexp.MustCompile(`\bNO\s+NIC\b`)
	packCountRe    = regexp.MustCompile(`^\d+PK$`)
	nonAlnumRe     = regexp.MustCompile(`[^A-Z0-9]+`)
)

// NewNormalizer compiles the rule set into the rewrite pipeline.
func NewNormalizer(rs RuleSet) *Normalizer {
	rules := []Rule{
		{Name: "casing", Rewrite: canonicalCase},
		{
			Name: "nicotine-phrase",
			Rewrite: func(s string) string {
				s = zeroNicotineRe.ReplaceAllString(s, "ZERO NIC")
				s = nicotineFreeRe.ReplaceAllString(s, "NO NICOTINE")
				return noNicRe.ReplaceAllString(s, "NO NICOTINE")
			},
		},
	}

	for _, a := range rs.BrandAliases {
		if r, ok := brandAliasRule(a); ok {
			rules = append(rules, r)
		}
	}
	for _, d := range rs.SizeDefaults {
		rules = append(rules, sizeDefaultRule(d))
	}
	for _, f := range rs.FlavorAliases {
		rules = append(rules, flavorAliasRule(f))
	}

	rules = append(rules, Rule{Name: "pack-tokens", Rewrite: normalizePackTokens})
	for _, p := range rs.PackDefaults {
		rules = append(rules, packDefaultRule(p))
	}
	if len(rs.NameRewrites) > 0 {
		rules = append(rules, nameRewriteRule(rs.NameRewrites))
	}

	rules = append(rules, Rule{Name: "whitespace", Rewrite: collapseSpaces})
	return &Normalizer{rules: rules}
}

// Normalize is total: unknown names only get casing and spacing fixed.
func (n *Normalizer) Normalize(raw string) string {
	s := raw
	for _, r := range n.rules {
		if r.Match != nil && !r.Match(s) {
			continue
		}
		s = r.Rewrite(s)
	}
	return s
}

// Key reduces s to the uppercase alphanumeric form used for image matching.
func (n *Normalizer) Key(s string) string {
	return nonAlnumRe.ReplaceAllString(n.Normalize(s), "")
}

// RuleNames lists the pipeline in application order.
func (n *Normalizer) RuleNames() []string {
	names := make([]string, len(n.rules))
	for i, r := range n.rules {
		names[i] = r.Name
	}
	return names
}

func canonicalCase(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return collapseSpaces(strings.ToUpper(folded))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func brandAliasRule(a BrandAlias) (Rule, bool) {
	re := brandAliasPattern(a.From)
	if re == nil {
		return Rule{}, false
	}
	to := strings.ToUpper(strings.TrimSpace(a.To))
	return Rule{
		Name:    "brand:" + to,
		Match:   re.MatchString,
		Rewrite: func(s string) string { return re.ReplaceAllLiteralString(s, to) },
	}, true
}

// hasWordPrefix reports whether s starts with prefix followed by a space or end.
func hasWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	return len(s) == len(prefix) || s[len(prefix)] == ' '
}

func sizeDefaultRule(d SizeDefault) Rule {
	brand := strings.ToUpper(collapseSpaces(d.Brand))
	size := strings.ToUpper(strings.TrimSpace(d.Size))
	unit := strings.TrimLeft(size, "0123456789.")
	unitRe := regexp.MustCompile(`^\d+(?:\.\d)?` + regexp.QuoteMeta(unit) + `$`)

	return Rule{
		Name: "size:" + brand,
		Match: func(s string) bool {
			if !hasWordPrefix(s, brand) {
				return false
			}
			for _, tok := range strings.Fields(s) {
				if unitRe.MatchString(tok) {
					return false
				}
			}
			return true
		},
		Rewrite: func(s string) string {
			return brand + " " + size + s[len(brand):]
		},
	}
}

func flavorAliasRule(f FlavorAlias) Rule {
	base := strings.ToUpper(collapseSpaces(f.Base))
	re := phraseRe(f.From)
	to := strings.ToUpper(collapseSpaces(f.To))
	return Rule{
		Name:  "flavor:" + base + ":" + strings.ToUpper(f.From),
		Match: func(s string) bool { return hasWordPrefix(s, base) && re.MatchString(s[len(base):]) },
		Rewrite: func(s string) string {
			return base + re.ReplaceAllLiteralString(s[len(base):], to)
		},
	}
}

// normalizePackTokens folds the 1 1/4 paper size spellings into 1-1/4 and
// drops the SIZE qualifier.
func normalizePackTokens(s string) string {
	tokens := strings.Fields(s)
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "SIZE":
			continue
		case tok == "1" && i+1 < len(tokens) && tokens[i+1] == "1/4":
			out = append(out, "1-1/4")
			i++
		case tok == "1/4" || tok == "1_4" || tok == "1_1/4" || tok == "1-1/4":
			out = append(out, "1-1/4")
		default:
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}

func packDefaultRule(p PackDefault) Rule {
	prefix := strings.ToUpper(collapseSpaces(p.Prefix))
	pack := strings.ToUpper(strings.TrimSpace(p.Pack))
	return Rule{
		Name: "pack:" + prefix,
		Match: func(s string) bool {
			if !hasWordPrefix(s, prefix) {
				return false
			}
			for _, tok := range strings.Fields(s) {
				if packCountRe.MatchString(tok) {
					return false
				}
			}
			return true
		},
		Rewrite: func(s string) string {
			return prefix + " " + pack + s[len(prefix):]
		},
	}
}

func nameRewriteRule(rewrites map[string]string) Rule {
	table := make(map[string]string, len(rewrites))
	for from, to := range rewrites {
		table[strings.ToUpper(collapseSpaces(from))] = strings.ToUpper(collapseSpaces(to))
	}
	return Rule{
		Name: "exact",
		Rewrite: func(s string) string {
			if to, ok := table[s]; ok {
				return to
			}
			return s
		},
	}
}
