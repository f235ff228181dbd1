package parser

import "strings"

// stripComment removes everything from the first unquoted '#' to the end
// of the line (spec.md §4.2/§6).
func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

// ResolveRegister maps a register operand (x0-x31 or an ABI alias) to its
// numeric index (spec.md §6). Returns false for anything else.
func ResolveRegister(text string) (int, bool) {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "x") && len(lower) > 1 {
		n := 0
		for _, ch := range lower[1:] {
			if ch < '0' || ch > '9' {
				return 0, false
			}
			n = n*10 + int(ch-'0')
		}
		if n >= 0 && n <= 31 {
			return n, true
		}
		return 0, false
	}
	if n, ok := registerAliases[lower]; ok {
		return n, true
	}
	return 0, false
}
