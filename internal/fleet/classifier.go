package fleet

import (
	"regexp"
	"strings"

	"fleet-analytics/modernity/internal/textnorm"
)

// FamilyRulesVersion tags the family pattern list below. Changing any pattern
// changes historical outputs, so bump the version with it.
const FamilyRulesVersion = "v1"

// Family identifies one of the six new-generation aircraft families.
type Family string

const (
	FamilyA220    Family = "a220"
	Family787     Family = "787"
	FamilyA350    Family = "a350"
	FamilyA330neo Family = "a330neo"
	FamilyNeo     Family = "neo"
	FamilyMax     Family = "max"
)

// Families lists the families in output column order.
var Families = []Family{FamilyA220, Family787, FamilyA350, FamilyA330neo, FamilyNeo, FamilyMax}

type familyRule struct {
	family  Family
	pattern *regexp.Regexp
}

var familyRules = []familyRule{
	// A220 = ex CSeries (CS100/300) = BD-500-1A10/1A11
	{FamilyA220, regexp.MustCompile(`(?i)\b(a220-?1(00)?|a220-?3(00)?|cs100|cs300|bd-500-1a1[01])\b`)},
	{Family787, regexp.MustCompile(`(?i)\b787\b`)},
	{FamilyA350, regexp.MustCompile(`(?i)\ba350\b`)},
	{FamilyA330neo, regexp.MustCompile(`(?i)\b(a330-800|a330-900|a330neo|a330-?9?00?neo)\b`)},
	// single-aisle A319/A320/A321 neo, marketing name or -2xxN style designation
	{FamilyNeo, regexp.MustCompile(`(?i)\b(a31[9]|a32[01])[- ]?\d{2,3}n\b|\b(a31[9]|a32[01])neo\b`)},
	// 737 MAX: marketing names, manufacturer codes and the dashed Boeing designations (737-8, 737-8-200)
	{FamilyMax, regexp.MustCompile(`(?i)\b(737[- ]?max|7m7|7m8|7m9|7mj|max ?(7|8|9|10))\b|(^|\s)b?737-(7|8|9|10)\b`)},
}

// legacyNewGenPatterns drives the coarse new_gen flag of the v0 index. It is
// maintained independently of familyRules and is not their union.
var legacyNewGenPatterns = compileAll([]string{
	// Airbus NEO single-aisle
	`\bneo\b`,
	`\ba32\dneo\b`,
	`\ba32\d-2\d{2}n\w?\b`,
	`\ba31\d-1\d{2}n\w?\b`,
	`\ba321\s?xlr\b`,
	`\ba321\s?lr\b`,

	// new-generation widebodies
	`\b787\b`,
	`\ba350\b`,
	`\ba330neo\b`,
	`\ba330-9\d{2}\b`,
	`\ba330-8\d{2}\b`,

	// 737 MAX, including designations without the word MAX
	`\bmax\b`,
	`(^|\s)b?737-7\b`,
	`(^|\s)b?737-8\b`,
	`(^|\s)b?737-9\b`,
	`(^|\s)b?737-10\b`,
	`(^|\s)b?737-8-200\b`,

	// A220 and CSeries
	`\ba220\b`,
	`\bcs(100|300)\b`,
	`cseries`,

	// Embraer E2
	`embraer.*\be2\b`,
	`\be19[05]-e2\b`,
	`\be19[05]-2\b`,
	`\be2\b`,

	`\b777x\b`,
})

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Classification is the set of family tags derived from one model string.
// Tags are independent: a designation may match several families.
type Classification struct {
	IsA220    bool
	Is787     bool
	IsA350    bool
	IsA330neo bool
	IsNeo     bool
	IsMax     bool
	// NewGen is the legacy coarse flag.
	NewGen bool
}

// Has reports whether the tag for f is set.
func (c Classification) Has(f Family) bool {
	switch f {
	case FamilyA220:
		return c.IsA220
	case Family787:
		return c.Is787
	case FamilyA350:
		return c.IsA350
	case FamilyA330neo:
		return c.IsA330neo
	case FamilyNeo:
		return c.IsNeo
	case FamilyMax:
		return c.IsMax
	}
	return false
}

func (c *Classification) set(f Family) {
	switch f {
	case FamilyA220:
		c.IsA220 = true
	case Family787:
		c.Is787 = true
	case FamilyA350:
		c.IsA350 = true
	case FamilyA330neo:
		c.IsA330neo = true
	case FamilyNeo:
		c.IsNeo = true
	case FamilyMax:
		c.IsMax = true
	}
}

// Classify tags a raw model designation. A blank model yields no tags.
func Classify(model string) Classification {
	var c Classification
	if strings.TrimSpace(model) == "" {
		return c
	}

	s := strings.ToLower(model)
	for _, rule := range familyRules {
		if rule.pattern.MatchString(s) {
			c.set(rule.family)
		}
	}
	c.NewGen = IsLegacyNewGen(model)
	return c
}

// IsLegacyNewGen evaluates the legacy pattern list against the normalized model.
func IsLegacyNewGen(model string) bool {
	m := strings.ToLower(textnorm.ModelKey(model))
	if m == "" {
		return false
	}
	for _, p := range legacyNewGenPatterns {
		if p.MatchString(m) {
			return true
		}
	}
	return false
}
