package videogen

import "strings"

// corrections maps identifiers the classifier is known to hallucinate onto
// their canonical catalog IDs. The model keeps inventing punctuation and
// version-format variants of real IDs; this table repairs the recurring ones
// before the fuzzy match runs.
var corrections = map[string]string{
	"kling/2.6":           "kling/v2-6",
	"kling/v2.6":          "kling/v2-6",
	"kling-2.6":           "kling/v2-6",
	"kling/2.1":           "kling/v2-1",
	"kling/v2.1":          "kling/v2-1",
	"seedance/1.0-pro":    "seedance/v1-pro",
	"seedance/v1.0-pro":   "seedance/v1-pro",
	"seedance-pro":        "seedance/v1-pro",
	"omnihuman/1.5":       "omnihuman/v1_5",
	"omnihuman/v1.5":      "omnihuman/v1_5",
	"hailuo/2":            "hailuo/02",
	"hailuo/v2":           "hailuo/02",
	"veed/fabric":         "veed/fabric-1.0",
	"infinitetalk/single": "infinitalk/single",
}

// normalizeID lowers the string and strips every non-alphanumeric rune, so
// "Kling/V2.6" and "kling/v2-6" compare equal.
func normalizeID(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// resolveProviderID repairs an untrusted classifier identifier against the
// candidate set. Resolution order: exact match, corrections table, then a
// normalized substring match accepting the first candidate where either
// normalized string contains the other. Returns false when nothing resolves;
// callers must not guess.
func resolveProviderID(raw string, candidates []Provider) (Provider, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Provider{}, false
	}

	for _, p := range candidates {
		if p.ID == raw {
			return p, true
		}
	}

	if canonical, ok := corrections[strings.ToLower(raw)]; ok {
		raw = canonical
		for _, p := range candidates {
			if p.ID == raw {
				return p, true
			}
		}
	}

	norm := normalizeID(raw)
	if norm == "" {
		return Provider{}, false
	}
	for _, p := range candidates {
		cand := normalizeID(p.ID)
		if strings.Contains(cand, norm) || strings.Contains(norm, cand) {
			return p, true
		}
	}

	return Provider{}, false
}
