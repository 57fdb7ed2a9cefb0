// Package similarity scores how alike two display names are.
//
// Every function here is pure and safe for concurrent use.
package similarity

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Component weights of the blended score.
const (
	weightEdit     = 0.3
	weightJaro     = 0.3
	weightPhonetic = 0.2
	weightToken    = 0.2

	// phoneticPartial scales the phonetic score when codes differ.
	phoneticPartial = 0.8
)

// Breakdown holds the per-algorithm components of a comparison.
type Breakdown struct {
	Edit        float64 `json:"edit"`
	JaroWinkler float64 `json:"jaro_winkler"`
	Phonetic    float64 `json:"phonetic"`
	Token       float64 `json:"token"`
	Score       float64 `json:"score"`
}

// Similarity returns a score in [0,1]. Empty input scores 0; inputs equal
// after normalization score 1.
func Similarity(a, b string) float64 {
	return Compare(a, b).Score
}

// Compare returns the blended score together with its components.
func Compare(a, b string) Breakdown {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return Breakdown{}
	}
	if na == nb {
		return Breakdown{Edit: 1, JaroWinkler: 1, Phonetic: 1, Token: 1, Score: 1}
	}

	out := Breakdown{
		Edit:        EditSimilarity(na, nb),
		JaroWinkler: JaroWinkler(na, nb),
		Phonetic:    PhoneticSimilarity(na, nb),
		Token:       TokenJaccard(na, nb),
	}
	out.Score = clamp(out.Edit*weightEdit +
		out.JaroWinkler*weightJaro +
		out.Phonetic*weightPhonetic +
		out.Token*weightToken)
	return out
}

// EditSimilarity is 1 - levenshtein/maxLen over runes.
func EditSimilarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// JaroWinkler returns the Jaro similarity plus a 0.1 bonus per shared
// leading character, up to four.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1
	}
	s1, s2 := []rune(a), []rune(b)
	len1, len2 := len(s1), len(s2)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	window := max(len1, len2)/2 - 1
	if window < 0 {
		window = 0
	}

	m1 := make([]bool, len1)
	m2 := make([]bool, len2)
	matches := 0
	for i := 0; i < len1; i++ {
		lo := max(0, i-window)
		hi := min(len2, i+window+1)
		for j := lo; j < hi; j++ {
			if m2[j] || s1[i] != s2[j] {
				continue
			}
			m1[i], m2[j] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !m1[i] {
			continue
		}
		for !m2[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len1) + m/float64(len2) + (m-float64(transpositions)/2)/m) / 3

	prefix := 0
	for i := 0; i < min(len1, len2, 4); i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}
	return jaro + 0.1*float64(prefix)*(1-jaro)
}

// PhoneticSimilarity compares per-token Metaphone codes. Identical codes
// score 1. Otherwise the codes are cut token by token to equal length and
// the edit similarity of the result is scaled by 0.8.
func PhoneticSimilarity(a, b string) float64 {
	ca, cb := phoneticCodes(strings.Fields(a)), phoneticCodes(strings.Fields(b))
	if len(ca) == 0 || len(cb) == 0 {
		return 0
	}
	ka, kb := strings.Join(ca, " "), strings.Join(cb, " ")
	if ka == kb {
		return 1
	}

	n := min(len(ca), len(cb))
	ta, tb := make([]string, n), make([]string, n)
	for i := 0; i < n; i++ {
		l := min(len(ca[i]), len(cb[i]))
		ta[i], tb[i] = ca[i][:l], cb[i][:l]
	}
	return phoneticPartial * EditSimilarity(strings.Join(ta, " "), strings.Join(tb, " "))
}

// TokenJaccard is |A∩B| / |A∪B| over the word sets of a and b.
func TokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	return float64(inter) / float64(len(setA)+len(setB)-inter)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokens(s) {
		set[t] = true
	}
	return set
}

// Match is one FindBestMatches result.
type Match struct {
	Candidate string  `json:"candidate"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
}

// FindBestMatches scores every candidate against target, keeps scores at or
// above threshold and returns them best first. Equal scores keep input order.
// maxResults <= 0 means no limit.
func FindBestMatches(target string, candidates []string, threshold float64, maxResults int) []Match {
	var out []Match
	for i, c := range candidates {
		if score := Similarity(target, c); score >= threshold {
			out = append(out, Match{Candidate: c, Index: i, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// equivalenceFloor is the similarity at which names count as equivalent.
const equivalenceFloor = 0.9

// AreEquivalent reports whether a and b name the same entity by a cheaper,
// more permissive test than a full score: equal or contained normalized
// forms, matching initials of at most three letters, nickname variants, or
// a similarity of at least 0.9.
func AreEquivalent(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	if ra, rb := reduce(na), reduce(nb); ra != "" && ra == rb && utf8.RuneCountInString(ra) <= 3 {
		return true
	}
	if nicknameVariant(na, nb) {
		return true
	}
	return Similarity(a, b) >= equivalenceFloor
}

// reduce returns the initials of a multi-word name or the consonants of a
// single word, so "Kansas City" and "KC" both reduce to "kc".
func reduce(normalized string) string {
	tokens := strings.Fields(normalized)
	var b strings.Builder
	if len(tokens) > 1 {
		for _, t := range tokens {
			r, _ := utf8.DecodeRuneInString(t)
			b.WriteRune(r)
		}
		return b.String()
	}
	for _, r := range normalized {
		if !strings.ContainsRune("aeiou", r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func nicknameVariant(na, nb string) bool {
	ta, tb := strings.Fields(na), strings.Fields(nb)
	if len(ta) != len(tb) || !NicknameRelated(ta[0], tb[0]) {
		return false
	}
	for i := 1; i < len(ta); i++ {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
