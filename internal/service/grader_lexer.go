package service

import "unicode"

// tokenizeSQL splits a normalized (lower-case, single-spaced) query into
// lexer-level tokens: words (keywords, identifiers, numbers), quoted string
// literals, multi-character operators and single punctuation characters.
// It is deliberately forgiving — an unterminated literal is still a token.
func tokenizeSQL(s string) []string {
	var tokens []string
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			start := i
			for i < len(runes) && isWordRune(runes[i]) {
				i++
			}
			// "1.5" stays one numeric token; "t.col" splits at the dot.
			if i < len(runes)-1 && runes[i] == '.' && unicode.IsDigit(runes[start]) && unicode.IsDigit(runes[i+1]) {
				i += 2
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			tokens = append(tokens, string(runes[start:i]))
		case r == '\'' || r == '"':
			quote := r
			start := i
			i++
			for i < len(runes) && runes[i] != quote {
				i++
			}
			if i < len(runes) {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
		default:
			if i+1 < len(runes) {
				pair := string(runes[i : i+2])
				if isOperatorPair(pair) {
					tokens = append(tokens, pair)
					i += 2
					continue
				}
			}
			tokens = append(tokens, string(r))
			i++
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isOperatorPair(s string) bool {
	switch s {
	case "<=", ">=", "<>", "!=", "||", "::":
		return true
	}
	return false
}

// sequenceRatio is the classic matching-blocks similarity: twice the total
// length of all common blocks divided by the combined length. 1.0 means
// identical strings, 0.0 means nothing in common.
func sequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}
	matched := matchingTotal(ra, rb, b2j, 0, len(ra), 0, len(rb))
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingTotal sums the longest common block in [alo,ahi)x[blo,bhi) and
// recurses into the regions on either side of it.
func matchingTotal(a, b []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) int {
	besti, bestj, size := longestMatch(a, b2j, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a, b, b2j, alo, besti, blo, bestj)
	total += matchingTotal(a, b, b2j, besti+size, ahi, bestj+size, bhi)
	return total
}

func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestSize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				besti, bestj, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return besti, bestj, bestSize
}
