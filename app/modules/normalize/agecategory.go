package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// canonicalCategory matches the canonical output form: a gender letter, a
// two-digit threshold, and an optional range ("M40", "F35-39").
var canonicalCategory = regexp.MustCompile(`^[MF]\d{2}(-\d{2})?$`)

// veteranTiers is the recognized lexicon of veteran-code tokens. A zero
// Gender means the token carries no gender of its own: the caller's hint
// decides, and absent a hint the Scottish convention implies male.
var veteranTiers = map[string]struct {
	threshold int
	gender    Gender
}{
	"V":   {40, ""},
	"V40": {40, ""},
	"VM":  {40, GenderMale},
	"MV":  {40, GenderMale},
	"SV":  {50, ""},
	"V50": {50, ""},
	"MSV": {50, GenderMale},
	"SSV": {60, ""},
	"V60": {60, ""},
	"V70": {70, ""},

	"FV":   {40, GenderFemale},
	"VF":   {40, GenderFemale},
	"LV":   {40, GenderFemale},
	"FSV":  {50, GenderFemale},
	"FSSV": {60, GenderFemale},
}

var juniorTokens = map[string]bool{
	"J":      true,
	"JNR":    true,
	"JUNIOR": true,
	"U20":    true,
}

// ParseAgeCategory maps an age/category code onto its canonical form and
// infers gender where the code encodes it.
//
// The explicit hint always takes precedence over gender encoded in the
// token; a conflict is not surfaced. The inferred gender is only returned
// when no hint was given. Unrecognized codes pass through trimmed but
// otherwise unchanged with no inference: normalization here is a best-effort
// rewrite, not a closed-world rule.
func ParseAgeCategory(raw string, hint Gender) (string, Gender) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}

	token := strings.ToUpper(trimmed)

	if canonicalCategory.MatchString(token) {
		if hint == "" {
			return token, genderFromCategory(token)
		}
		return token, ""
	}

	if tier, ok := veteranTiers[token]; ok {
		letter := tier.gender
		if hint != "" {
			letter = hint
		} else if letter == "" {
			letter = GenderMale
		}
		code := fmt.Sprintf("%s%d", letter, tier.threshold)
		if hint != "" {
			return code, ""
		}
		return code, letter
	}

	if juniorTokens[token] {
		return "U20", ""
	}

	// Gender-only markers double as senior categories.
	switch token {
	case "M":
		if hint != "" {
			return "M", ""
		}
		return "M", GenderMale
	case "F", "L":
		if hint != "" {
			return "F", ""
		}
		return "F", GenderFemale
	}

	return trimmed, ""
}

// genderFromCategory derives a gender from a canonical category code.
func genderFromCategory(category string) Gender {
	switch {
	case strings.HasPrefix(category, "F"), strings.HasPrefix(category, "L"):
		return GenderFemale
	case strings.HasPrefix(category, "M"):
		return GenderMale
	}
	return ""
}
