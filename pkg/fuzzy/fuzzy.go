// Package fuzzy scores typo-tolerant matches of a search query against meeting fields.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance calculates the edit distance between two strings:
// the number of single-character insertions, deletions or substitutions
// required to change one into the other
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalizeString(s1))
	r2 := []rune(normalizeString(s2))
	m, n := len(r1), len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows are enough; the full matrix is never read back
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// Threshold returns the typo tolerance for a query of the given length
func Threshold(query string) int {
	n := len([]rune(normalizeString(query)))
	switch {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// FuzzyMatch checks if query fuzzy-matches text within a given threshold.
// threshold is the maximum allowed edit distance.
func FuzzyMatch(query, text string, threshold int) bool {
	query = normalizeString(query)
	text = normalizeString(text)
	if query == "" {
		return false
	}

	if strings.Contains(text, query) {
		return true
	}

	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) {
			return true
		}
		if LevenshteinDistance(query, word) <= threshold {
			return true
		}
	}

	// Whole-text distance only for short fields like titles
	if len(text) < 50 {
		maxDistance := threshold + len(query)/5
		if LevenshteinDistance(query, text) <= maxDistance {
			return true
		}
	}

	return false
}

// MeetingFields are the searchable parts of a meeting
type MeetingFields struct {
	Title       string
	Attendees   []string
	Description string
}

// MatchMeeting reports whether the query matches the meeting title, any attendee,
// or the start of the description
func MatchMeeting(query string, m MeetingFields) bool {
	threshold := Threshold(query)

	if FuzzyMatch(query, m.Title, threshold) {
		return true
	}
	for _, a := range m.Attendees {
		if FuzzyMatch(query, a, threshold) {
			return true
		}
	}

	desc := m.Description
	if r := []rune(desc); len(r) > 500 {
		desc = string(r[:500])
	}
	return desc != "" && FuzzyMatch(query, desc, threshold)
}

// Score ranks how relevant a meeting is to a query. Higher is more relevant.
// Title hits weigh most, then attendee names, then attendee email addresses.
func Score(query string, m MeetingFields) float64 {
	query = normalizeString(query)
	if query == "" {
		return 0
	}

	score := fieldScore(query, m.Title, 100, 50)
	for _, a := range m.Attendees {
		norm := normalizeString(a)
		if at := strings.Index(norm, "@"); at > 0 {
			if strings.Contains(norm, query) {
				score += 60
			} else if strings.HasPrefix(norm[:at], query) {
				score += 30
			}
			continue
		}
		score += fieldScore(query, norm, 80, 40)
	}

	if strings.Contains(normalizeString(m.Description), query) {
		score += 10
	}
	return score
}

// fieldScore awards exact containment with a bonus for whole-word hits,
// and otherwise near-miss words and prefixes
func fieldScore(query, field string, exact, fuzzy float64) float64 {
	field = normalizeString(field)
	if strings.Contains(field, query) {
		if containsWord(field, query) {
			return exact + exact/2
		}
		return exact
	}

	score := 0.0
	for _, word := range strings.Fields(field) {
		if dist := LevenshteinDistance(query, word); dist <= 2 {
			score += fuzzy - float64(dist)*fuzzy/3
		}
		if strings.HasPrefix(word, query) {
			score += fuzzy * 0.8
		}
	}
	return score
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeString lowercases, strips diacritics and collapses whitespace
func normalizeString(s string) string {
	if out, _, err := transform.String(accentStripper, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// containsWord checks if text contains query as a whole word
func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}
