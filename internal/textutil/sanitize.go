package textutil

import "strings"

// SanitizeToken converts value to a filesystem-safe token. ASCII letters
// keep their case, digits, hyphens and underscores are kept, and everything
// else becomes an underscore. Leading and trailing separators are trimmed;
// fallback is returned when nothing remains.
func SanitizeToken(value, fallback string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return fallback
	}
	return out
}
