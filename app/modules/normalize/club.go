package normalize

import "strings"

// UnattachedClub is the canonical name for runners with no club affiliation.
const UnattachedClub = "Unattached"

// nullClubAliases are spellings that all mean "no club".
var nullClubAliases = map[string]bool{
	"":           true,
	"U/A":        true,
	"UA":         true,
	"N/A":        true,
	"NA":         true,
	"NONE":       true,
	"UNATTACHED": true,
}

// clubSynonyms maps known variants and abbreviations to one canonical club
// name. Keys are lowercased with dots removed. Every value is also present
// as its own key so the function is a fixed point on its outputs.
var clubSynonyms = map[string]string{
	"westies":                        "Westerlands CCC",
	"westerlands":                    "Westerlands CCC",
	"westerlands ccc":                "Westerlands CCC",
	"westerlands cross country club": "Westerlands CCC",

	"hbt":                  "Hunters Bog Trotters",
	"hunters bog trotters": "Hunters Bog Trotters",

	"ochil hr":            "Ochil Hill Runners",
	"ochils hr":           "Ochil Hill Runners",
	"ochil hill runners":  "Ochil Hill Runners",
	"ochils hill runners": "Ochil Hill Runners",

	"lothian rc": "Lothian RC",
	"lothian":    "Lothian RC",

	"lochtayside": "Lochtayside",
	"lochtay":     "Lochtayside",

	"north ayrshire":                "North Ayrshire AC",
	"north ayrshire ac":             "North Ayrshire AC",
	"north ayrshire athletics club": "North Ayrshire AC",

	"carnegie harriers":         "Carnegie Harriers",
	"shettleston harriers":      "Shettleston Harriers",
	"deeside runners":           "Deeside Runners",
	"bellahouston road runners": "Bellahouston Road Runners",
	"dumfries rc":               "Dumfries RC",
	"dumfries running club":     "Dumfries RC",
	"galloway harriers":         "Galloway Harriers",
	"moorfoot runners":          "Moorfoot Runners",
	"penicuik harriers":         "Penicuik Harriers",
	"portobello rrc":            "Portobello RRC",
	"tinto hill runners":        "Tinto Hill Runners",
	"teviotdale harriers":       "Teviotdale Harriers",
	"fife ac":                   "Fife AC",
}

// clubSuffixes are trailing organizational suffixes stripped during
// normalization, matched as whole trailing tokens, case-insensitively.
var clubSuffixes = []string{
	" HRC",
	" H.R.C.",
	" Hill Running Club",
	" AAC",
	" A.A.C.",
	" Amateur Athletic Club",
	" AC",
	" A.C.",
	" Athletic Club",
	" Harriers",
	" RC",
	" R.C.",
	" Running Club",
	" Club",
}

// NormalizeClubName canonicalizes a free-text club name: null-club aliases
// become "Unattached", known variants resolve through the synonym table, and
// trailing organizational suffixes are stripped. Unrecognized names come back
// trimmed but otherwise unchanged; the function never fabricates a name and
// is idempotent.
func NormalizeClubName(raw string) string {
	club := strings.TrimSpace(raw)

	if nullClubAliases[strings.ToUpper(club)] {
		return UnattachedClub
	}

	key := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(club), ".", ""))
	if canonical, ok := clubSynonyms[key]; ok {
		return canonical
	}

	// Strip suffixes until none match. A single pass is not enough: compound
	// tails like "... Harriers AC" must reduce to the same name whether the
	// function runs once or twice.
	for {
		stripped, ok := stripClubSuffix(club)
		if !ok {
			break
		}
		club = stripped
		if canonical, ok := clubSynonyms[synonymKey(club)]; ok {
			return canonical
		}
	}

	return club
}

func synonymKey(club string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(club), ".", ""))
}

func stripClubSuffix(club string) (string, bool) {
	upper := strings.ToUpper(club)
	for _, suffix := range clubSuffixes {
		su := strings.ToUpper(suffix)
		if strings.HasSuffix(upper, su) && len(club) > len(suffix) {
			trimmed := strings.TrimRight(strings.TrimSpace(club[:len(club)-len(suffix)]), " ,.-")
			if trimmed == "" {
				return club, false
			}
			return trimmed, true
		}
	}
	return club, false
}
