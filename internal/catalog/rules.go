package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"storefront-backend/internal/domain"

	"gopkg.in/yaml.v3"
)

// BrandAlias rewrites any of the From spellings at the start of a name to To.
type BrandAlias struct {
	From []string `json:"from" yaml:"from"`
	To   string   `json:"to" yaml:"to"`
}

// SizeDefault injects Size right after Brand when the name carries no token
// with the same unit.
type SizeDefault struct {
	Brand string `json:"brand" yaml:"brand"`
	Size  string `json:"size" yaml:"size"`
}

// FlavorAlias rewrites a flavor spelling only under names starting with Base.
type FlavorAlias struct {
	Base string `json:"base" yaml:"base"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// PackDefault injects Pack after Prefix when no pack-count token is present.
type PackDefault struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Pack   string `json:"pack" yaml:"pack"`
}

// MarkerException suppresses the Marker edition of Base entirely.
type MarkerException struct {
	Base   string `json:"base" yaml:"base"`
	Marker string `json:"marker" yaml:"marker"`
}

type DiscontinuedVariant struct {
	Base   string `json:"base" yaml:"base"`
	Flavor string `json:"flavor" yaml:"flavor"`
}

// RuleSet is the business data driving the catalog engine. It is built once
// at startup and shared read-only.
type RuleSet struct {
	BrandAliases         []BrandAlias               `json:"brandAliases" yaml:"brandAliases"`
	SizeDefaults         []SizeDefault              `json:"sizeDefaults" yaml:"sizeDefaults"`
	FlavorAliases        []FlavorAlias              `json:"flavorAliases" yaml:"flavorAliases"`
	PackDefaults         []PackDefault              `json:"packDefaults" yaml:"packDefaults"`
	NameRewrites         map[string]string          `json:"nameRewrites" yaml:"nameRewrites"`
	RestrictedKeywords   []string                   `json:"restrictedKeywords" yaml:"restrictedKeywords"`
	MarkerExceptions     []MarkerException          `json:"markerExceptions" yaml:"markerExceptions"`
	Discontinued         []DiscontinuedVariant      `json:"discontinued" yaml:"discontinued"`
	SingleVariantAllowed []string                   `json:"singleVariantAllowed" yaml:"singleVariantAllowed"`
	Featured             []string                   `json:"featured" yaml:"featured"`
	FeaturedAliases      map[string][]string        `json:"featuredAliases" yaml:"featuredAliases"`
	AlwaysAllow          []string                   `json:"alwaysAllow" yaml:"alwaysAllow"`
	ImageOverrides       []domain.VariantImageEntry `json:"imageOverrides" yaml:"imageOverrides"`
	ImageFolderAliases   map[string]string          `json:"imageFolderAliases" yaml:"imageFolderAliases"`
}

// DefaultRuleSet returns the rules for the current storefront catalog.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		BrandAliases: []BrandAlias{
			{From: []string{"GEEK BAR", "GEEK-BAR"}, To: "GEEKBAR"},
			{From: []string{"GEEKBAR 25K"}, To: "GEEKBAR X 25K"},
			{From: []string{"ELF BAR"}, To: "ELFBAR"},
			{From: []string{"PUFF BAR"}, To: "PUFFBAR"},
			{From: []string{"BANG KING"}, To: "BANGKING"},
			{From: []string{"BREEZE PRO"}, To: "BREEZEPRO"},
			{From: []string{"FUMEPRO", "FUME-PRO"}, To: "FUME PRO"},
			{From: []string{"LOSTMARY"}, To: "LOST MARY"},
			{From: []string{"RAZZ LTX", "RAZLTX", "RAZ-LTX"}, To: "RAZ LTX"},
			{From: []string{"RAZZ 9K"}, To: "RAZ 9K"},
			{From: []string{"HQD CUVIE"}, To: "CUVIE"},
			{From: []string{"NEXA PIXA", "NEXA PIX"}, To: "NEXA"},
			{From: []string{"NEXA 35"}, To: "NEXA 35K"},
			{From: []string{"RAW CONES"}, To: "RAW CONE"},
			{From: []string{"OLITHOOKALIT"}, To: "OLIT HOOKALIT"},
		},
		SizeDefaults: []SizeDefault{
			{Brand: "RAZ LTX", Size: "25K"},
			{Brand: "GEEKBAR X", Size: "25K"},
			{Brand: "FUME PRO", Size: "30K"},
			{Brand: "NEXA", Size: "35K"},
			{Brand: "LOST MARY TURBO", Size: "35K"},
		},
		FlavorAliases: []FlavorAlias{
			{Base: "RAZ LTX 25K", From: "TROPICAL PUNCH", To: "TROPICAL FRUIT"},
			{Base: "RAZ 9K", From: "BLUE RAZZ", To: "BLUE RAZ"},
			{Base: "RAZ 9K", From: "BLUERAZZ", To: "BLUE RAZ"},
		},
		PackDefaults: []PackDefault{
			{Prefix: "RAW CONE", Pack: "3PK"},
		},
		NameRewrites: map[string]string{
			"GRABBA LEAF WHOLE LEAF": "GRABBA LEAF WHOLE",
		},
		RestrictedKeywords: []string{
			"THC", "CBD", "CBN", "HHC",
			"DELTA 8", "DELTA-8", "DELTA 9", "DELTA-9", "DELTA 10", "DELTA-10",
			"KRATOM", "AMANITA", "MUSHROOM", "PSILO",
			"PRE ROLL", "PRE-ROLL", "PREROLL",
		},
		MarkerExceptions: []MarkerException{
			{Base: "RAZ LTX 25K", Marker: "ZERO NIC"},
		},
		Discontinued: []DiscontinuedVariant{
			{Base: "RAZ 9K", Flavor: "CACTUS JACK"},
			{Base: "RAZ 9K", Flavor: "ORANGE RASPBERRY"},
		},
		SingleVariantAllowed: []string{
			"RAW CONE 3PK CLASSIC",
			"GRABBA LEAF SMALL",
			"GRABBA LEAF WHOLE",
		},
		Featured: []string{
			"FUME EXTRA",
			"FUME ULTRA",
			"FUME INFINITY",
			"FUME PRO 30K",
			"FUME PRO 30K ZERO NIC",
			"CUVIE PLUS",
			"CUVIE MARS",
			"GEEKBAR 15K",
			"GEEKBAR X 25K",
			"RAZ 9K",
			"RAZ LTX 25K",
			"LOST MARY TURBO 35K",
			"NEXA 35K",
			"OLIT HOOKALIT 60K",
			"ZYN 3MG",
			"ZYN 6MG",
			"GRABBA LEAF SMALL",
			"GRABBA LEAF WHOLE",
			"RAW CONE 20PK CLASSIC",
			"RAW CONE 3PK CLASSIC",
		},
		FeaturedAliases: map[string][]string{
			"GEEKBAR X 25K":        {"GEEK BAR 25K", "GEEKBAR 25K", "GEEK BAR X", "GEEK-BAR X"},
			"RAZ LTX 25K":          {"RAZ LTX", "RAZZ LTX"},
			"FUME PRO 30K":         {"FUME PRO"},
			"CUVIE PLUS":           {"HQD CUVIE PLUS"},
			"NEXA 35K":             {"NEXA"},
			"LOST MARY TURBO 35K":  {"LOST MARY TURBO", "LOSTMARY TURBO"},
			"RAW CONE 3PK CLASSIC": {"RAW CONES CLASSIC", "RAW CONE CLASSIC"},
		},
		AlwaysAllow: []string{
			"GRABBA LEAF SMALL",
			"GRABBA LEAF WHOLE",
			"ZYN 3MG",
			"ZYN 6MG",
		},
		ImageFolderAliases: map[string]string{
			"OLITHOOKALIT60K":  "OLIT HOOKALIT 60K",
			"OLITHOOKALIT40K":  "OLIT HOOKALIT 40K",
			"FUMEPRO30K":       "FUME PRO 30K",
			"FUMEINFINITY":     "FUME INFINITY",
			"FUMEULTRA":        "FUME ULTRA",
			"FUMEEXTRA":        "FUME EXTRA",
			"GRABBALEAFSMALL":  "GRABBA LEAF SMALL",
			"GRABBALEAFWHOLE":  "GRABBA LEAF WHOLE",
			"LOSTMARYTURBO35K": "LOST MARY TURBO 35K",
		},
	}
}

// LoadRuleSet reads a YAML rule file and overlays every non-empty table on
// the defaults. An empty path returns the defaults.
func LoadRuleSet(path string) (RuleSet, error) {
	rs := DefaultRuleSet()
	if path == "" {
		return rs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rs, fmt.Errorf("read rule file: %w", err)
	}

	var file RuleSet
	if err := yaml.Unmarshal(data, &file); err != nil {
		return rs, fmt.Errorf("parse rule file %s: %w", path, err)
	}

	rs.overlay(file)
	if err := rs.Validate(); err != nil {
		return rs, fmt.Errorf("rule file %s: %w", path, err)
	}
	return rs, nil
}

func (rs *RuleSet) overlay(o RuleSet) {
	if len(o.BrandAliases) > 0 {
		rs.BrandAliases = o.BrandAliases
	}
	if len(o.SizeDefaults) > 0 {
		rs.SizeDefaults = o.SizeDefaults
	}
	if len(o.FlavorAliases) > 0 {
		rs.FlavorAliases = o.FlavorAliases
	}
	if len(o.PackDefaults) > 0 {
		rs.PackDefaults = o.PackDefaults
	}
	if len(o.NameRewrites) > 0 {
		rs.NameRewrites = o.NameRewrites
	}
	if len(o.RestrictedKeywords) > 0 {
		rs.RestrictedKeywords = o.RestrictedKeywords
	}
	if len(o.MarkerExceptions) > 0 {
		rs.MarkerExceptions = o.MarkerExceptions
	}
	if len(o.Discontinued) > 0 {
		rs.Discontinued = o.Discontinued
	}
	if len(o.SingleVariantAllowed) > 0 {
		rs.SingleVariantAllowed = o.SingleVariantAllowed
	}
	if len(o.Featured) > 0 {
		rs.Featured = o.Featured
	}
	if len(o.FeaturedAliases) > 0 {
		rs.FeaturedAliases = o.FeaturedAliases
	}
	if len(o.AlwaysAllow) > 0 {
		rs.AlwaysAllow = o.AlwaysAllow
	}
	if len(o.ImageOverrides) > 0 {
		rs.ImageOverrides = o.ImageOverrides
	}
	if len(o.ImageFolderAliases) > 0 {
		rs.ImageFolderAliases = o.ImageFolderAliases
	}
}

// Validate rejects rules that would make normalization non-idempotent.
func (rs RuleSet) Validate() error {
	for _, a := range rs.BrandAliases {
		if strings.TrimSpace(a.To) == "" {
			return fmt.Errorf("brand alias %v has empty target", a.From)
		}
		re := brandAliasPattern(a.From)
		if re != nil && re.MatchString(strings.ToUpper(a.To)) {
			return fmt.Errorf("brand alias %q rewrites to a spelling it matches", a.To)
		}
	}
	for _, d := range rs.SizeDefaults {
		if !sizeSpecRe.MatchString(strings.ToUpper(d.Size)) {
			return fmt.Errorf("size default %q for %s is not a size token", d.Size, d.Brand)
		}
	}
	for _, f := range rs.FlavorAliases {
		if phraseRe(f.From).MatchString(strings.ToUpper(f.To)) {
			return fmt.Errorf("flavor alias %q -> %q is not stable", f.From, f.To)
		}
	}
	for from, to := range rs.NameRewrites {
		if _, chained := rs.NameRewrites[to]; chained {
			return fmt.Errorf("name rewrite %q -> %q chains into another rewrite", from, to)
		}
	}
	for _, p := range rs.PackDefaults {
		if !packCountRe.MatchString(strings.ToUpper(p.Pack)) {
			return fmt.Errorf("pack default %q for %s is not a pack count", p.Pack, p.Prefix)
		}
	}
	return nil
}

// phraseRe matches a space separated phrase as whole words, case-insensitive.
func phraseRe(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + phraseBody(phrase) + `\b`)
}

func phraseBody(phrase string) string {
	fields := strings.Fields(phrase)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(fields, `\s+`)
}

func brandAliasPattern(from []string) *regexp.Regexp {
	if len(from) == 0 {
		return nil
	}
	alts := make([]string, 0, len(from))
	for _, f := range from {
		if strings.TrimSpace(f) == "" {
			continue
		}
		alts = append(alts, phraseBody(f))
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)^(?:` + strings.Join(alts, "|") + `)\b`)
}
