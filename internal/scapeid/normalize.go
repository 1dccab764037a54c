// Package scapeid canonicalizes scape names typed on the command line or
// stored in configuration files.
package scapeid

import "strings"

// canonical maps a compact alias (no separators) to its scape name.
var canonical = map[string]string{
	"xor":             "xor",
	"regressionmimic": "regression-mimic",
	"regression":      "regression-mimic",
	"mimic":           "regression-mimic",
}

// Normalize lowercases name, turns separators into dashes and resolves known
// aliases such as "scape_xor_sim". Unknown names come back normalized but
// otherwise unchanged.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	for _, candidate := range aliasCandidates(normalized) {
		if name, ok := canonical[strings.ReplaceAll(candidate, "-", "")]; ok {
			return name
		}
	}
	return normalized
}

func aliasCandidates(normalized string) []string {
	candidates := []string{normalized}

	stripped := strings.TrimPrefix(normalized, "scape-")
	if stripped == normalized {
		stripped = strings.TrimPrefix(stripped, "scape")
	}
	stripped = strings.Trim(stripped, "-")
	if stripped != "" && stripped != normalized {
		candidates = append(candidates, stripped)
	}

	for _, c := range []string{stripped, normalized} {
		if trimmed := trimSimSuffix(c); trimmed != "" && trimmed != c {
			candidates = append(candidates, trimmed)
		}
	}
	return candidates
}

func trimSimSuffix(value string) string {
	for _, suffix := range []string{"-sim1", "-sim"} {
		if strings.HasSuffix(value, suffix) {
			return strings.TrimSuffix(value, suffix)
		}
	}
	if !strings.Contains(value, "-") {
		for _, suffix := range []string{"sim1", "sim"} {
			if strings.HasSuffix(value, suffix) {
				return strings.TrimSuffix(value, suffix)
			}
		}
	}
	return value
}
