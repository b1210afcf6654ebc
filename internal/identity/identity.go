// Package identity canonicalizes the designation, department, plan-head and
// work-name strings that OCR produces, so that values from different passes
// over the same document compare equal.
package identity

import (
	"regexp"
	"strings"
)

var (
	reParenthetical = regexp.MustCompile(`\(.*?\)`)
	reNonAlnum      = regexp.MustCompile(`[^A-Z0-9]`)
	reNonAlnumSpace = regexp.MustCompile(`[^A-Z0-9 ]`)
	reSpaces        = regexp.MustCompile(`\s+`)
	rePlanheadKey   = regexp.MustCompile(`(\d{4,})\s*/\s*(\d{4})`)
)

// NormalizeDesignation returns the comparison key for a designation:
// the part before the first "/", uppercased, without parentheticals or punctuation.
// "Sr. DEN (Co)/JU" becomes "SRDEN".
func NormalizeDesignation(raw string) string {
	base, _, _ := strings.Cut(raw, "/")
	base = strings.ToUpper(base)
	base = reParenthetical.ReplaceAllString(base, "")
	return reNonAlnum.ReplaceAllString(base, "")
}

// SplitDesignationDepartment splits "SR. DFM/JU" into ("SR. DFM", "JU").
// The department is empty when no "/" is present.
func SplitDesignationDepartment(raw string) (designation, department string) {
	left, right, found := strings.Cut(strings.TrimSpace(raw), "/")
	designation = strings.TrimSpace(left)
	if found {
		// anything after a second "/" is not part of the department code
		right, _, _ = strings.Cut(right, "/")
		department = strings.ToUpper(strings.TrimSpace(right))
	}
	return designation, department
}

// Department prefers an explicitly stored department and falls back to the
// code embedded in the raw designation.
func Department(explicit, rawDesignation string) string {
	if d := strings.ToUpper(strings.TrimSpace(explicit)); d != "" {
		return d
	}
	_, d := SplitDesignationDepartment(rawDesignation)
	return d
}

// NormalizePlanhead uppercases and strips everything but A-Z and 0-9.
func NormalizePlanhead(raw string) string {
	return reNonAlnum.ReplaceAllString(strings.ToUpper(raw), "")
}

// NormalizeWorkname uppercases, collapses whitespace and keeps only A-Z, 0-9 and spaces.
func NormalizeWorkname(raw string) string {
	s := strings.ToUpper(raw)
	s = reSpaces.ReplaceAllString(s, " ")
	s = reNonAlnumSpace.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractPlanheadKey pulls a loose "NNNN/NNNN" key out of a plan head, e.g.
// "CE/12345 / 2024-R1" gives "12345/2024". Returns "" when there is none.
func ExtractPlanheadKey(raw string) string {
	m := rePlanheadKey.FindStringSubmatch(strings.ToUpper(raw))
	if m == nil {
		return ""
	}
	return m[1] + "/" + m[2]
}
