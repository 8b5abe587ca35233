package wildcard

import "strings"

// HasWildcard reports whether s contains a glob metacharacter.
func HasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Match reports whether name matches pattern, where '*' matches any
// run of runes (including none) and '?' matches exactly one rune. No
// library in the retrieval pack implements this grammar (no path-
// segment specialness, unlike path/filepath.Match), so this is a
// from-scratch dynamic-programming matcher.
func Match(pattern, name string) bool {
	p := []rune(pattern)
	n := []rune(name)

	dp := make([][]bool, len(p)+1)
	for i := range dp {
		dp[i] = make([]bool, len(n)+1)
	}
	dp[0][0] = true
	for i := 1; i <= len(p); i++ {
		if p[i-1] == '*' {
			dp[i][0] = dp[i-1][0]
		}
	}
	for i := 1; i <= len(p); i++ {
		for j := 1; j <= len(n); j++ {
			switch p[i-1] {
			case '*':
				dp[i][j] = dp[i-1][j] || dp[i][j-1]
			case '?':
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = dp[i-1][j-1] && p[i-1] == n[j-1]
			}
		}
	}
	return dp[len(p)][len(n)]
}

// SuffixPrefix reports whether pattern has the shape "prefix*": a
// literal run followed by exactly one trailing '*' and no other
// wildcard character. When true, it returns the literal prefix —
// spec.md §4.2's range-scan fast path is only valid for this shape.
func SuffixPrefix(pattern string) (string, bool) {
	if !strings.HasSuffix(pattern, "*") {
		return "", false
	}
	body := pattern[:len(pattern)-1]
	if HasWildcard(body) {
		return "", false
	}
	return body, true
}
