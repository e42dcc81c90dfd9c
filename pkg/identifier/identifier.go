package identifier

import "strings"

// Sanitize validates that s looks like a canonical v4 UUID and returns it
// lower-cased, or "" when it does not. It never errors: callers decide whether
// an empty result is a 400 (required field) or a silent null (optional
// foreign key). Pure-numeric strings and anything not 8-4-4-4-12 hex are
// rejected outright.
func Sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 36 {
		return ""
	}
	for i := 0; i < 36; i++ {
		c := s[i]
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return ""
			}
		default:
			if !isHex(c) {
				return ""
			}
		}
	}
	// version nibble must be 4, variant nibble 8/9/a/b
	if s[14] != '4' {
		return ""
	}
	switch s[19] {
	case '8', '9', 'a', 'b':
	default:
		return ""
	}
	return s
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
