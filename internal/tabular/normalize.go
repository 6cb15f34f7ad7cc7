package tabular

import "strings"

// NormalizeHeader canonicalizes a single raw header cell: trim, upper-case,
// spaces and hyphens to underscores. Pure and total; normalizing an already
// normalized header is a no-op.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ToUpper(h)
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// NormalizeHeaders canonicalizes a header sequence. Column order and count
// are preserved; this is the contract surface for schema validation.
func NormalizeHeaders(headers []string) []string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}
	return normalized
}
