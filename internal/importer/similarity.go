package importer

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"golang-dsf-service/internal/locale"
)

const (
	scoreExact       = 100.0
	scoreContains    = 85.0
	scoreAccountWild = 90.0
	scoreAccountPre  = 75.0
)

// Similarity compares two labels after normalisation and returns 0-100:
// 100 when equal, 85 when one contains the other, otherwise the
// Levenshtein ratio (maxLen - distance) / maxLen.
func Similarity(a, b string) float64 {
	return normalizedSimilarity(locale.Normalize(a), locale.Normalize(b))
}

func normalizedSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return scoreExact
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return scoreContains
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := float64(maxLen-dist) / float64(maxLen) * 100
	return math.Round(ratio*100) / 100
}

// bestSimilarity returns the best score of s against patterns and the winning pattern
func bestSimilarity(s string, patterns []string) (float64, string) {
	norm := locale.Normalize(s)
	best, winner := 0.0, ""
	for _, p := range patterns {
		if score := normalizedSimilarity(norm, locale.Normalize(p)); score > best {
			best, winner = score, p
		}
	}
	return best, winner
}

// AccountScore scores an account number against wildcard patterns such as
// "601x": 100 for an exact match of the pattern stem, 90 when the number
// fits the pattern with x standing for any digit, 75 when the number only
// starts with the stem, and 0 otherwise.
func AccountScore(account string, patterns []string) float64 {
	account = strings.TrimSpace(account)
	if account == "" {
		return 0
	}
	best := 0.0
	for _, p := range patterns {
		stem := strings.TrimRight(strings.ToLower(p), "x")
		if stem == "" {
			continue
		}
		var score float64
		switch {
		case account == stem:
			score = scoreExact
		case wildcardMatch(account, strings.ToLower(p)):
			score = scoreAccountWild
		case strings.HasPrefix(account, stem):
			score = scoreAccountPre
		}
		if score > best {
			best = score
		}
	}
	return best
}

func wildcardMatch(account, pattern string) bool {
	if len(account) != len(pattern) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == 'x' {
			if account[i] < '0' || account[i] > '9' {
				return false
			}
			continue
		}
		if pattern[i] != account[i] {
			return false
		}
	}
	return true
}

// positionScore loses step points per row of distance from the expected row
func positionScore(row, expected int, step float64) float64 {
	d := row - expected
	if d < 0 {
		d = -d
	}
	return math.Max(0, scoreExact-step*float64(d))
}
