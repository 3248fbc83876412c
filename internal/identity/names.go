package identity

import (
	"strings"
	"unicode"
)

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// namesEquivalent is the controlled token heuristic: identical normalized
// token sequences, or the same first and last token when both names have at
// least two tokens ("John A Smith" and "John Smith").
func namesEquivalent(a, b string) bool {
	at := strings.Fields(normalizeName(a))
	bt := strings.Fields(normalizeName(b))
	if len(at) == 0 || len(bt) == 0 {
		return false
	}

	if strings.Join(at, " ") == strings.Join(bt, " ") {
		return true
	}

	if len(at) >= 2 && len(bt) >= 2 {
		return at[0] == bt[0] && at[len(at)-1] == bt[len(bt)-1]
	}

	return false
}

// containsName reports whether one name contains the other case-insensitively.
// The contained name must sit on word boundaries, so "John" does not match
// "Johnny" while "jdoe" matches "jdoe-work". A trailing run of digits counts
// as a boundary ("jdoe" matches "jdoe123").
func containsName(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return containsOnBoundary(b, a)
}

func containsOnBoundary(s, sub string) bool {
	for from := 0; from+len(sub) <= len(s); {
		i := strings.Index(s[from:], sub)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(sub)
		if isBoundary(s, start-1) && (isBoundary(s, end) || digitSuffix(s, end)) {
			return true
		}
		from = start + 1
	}
	return false
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r := rune(s[i])
	if r >= 0x80 {
		// inside a multi-byte rune, treat as part of a word
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// digitSuffix reports whether s[i:] starts with digits that run up to a
// boundary.
func digitSuffix(s string, i int) bool {
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	return j > i && isBoundary(s, j)
}

// weakMatch decides whether author could be the seed account by name alone.
func weakMatch(seeds []string, author string) bool {
	for _, seed := range seeds {
		if seed == "" {
			continue
		}
		if namesEquivalent(seed, author) || containsName(seed, author) {
			return true
		}
	}
	return false
}
