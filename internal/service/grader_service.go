package service

import (
	"fmt"
	"strings"

	"sqlmentor/config"
)

// GraderService decides correctness of a free-text SQL answer against the
// stored reference. It is a total function over its inputs: no I/O, no
// infrastructure errors. The only error it returns is a data-integrity
// failure (empty reference answer), which must never be graded silently.
type GraderService interface {
	Grade(submitted, reference string) (correct bool, similarity float64, err error)
}

type graderService struct {
	threshold float64
}

func NewGraderService(cfg *config.Config) GraderService {
	return &graderService{threshold: cfg.Grader.Threshold}
}

// Grade computes the mean of a token-overlap similarity (SQL-aware lexer)
// and a character-sequence similarity (matching-blocks ratio) over the
// normalized strings, then applies the threshold.
func (s *graderService) Grade(submitted, reference string) (bool, float64, error) {
	reference = normalizeAnswer(reference)
	if reference == "" {
		return false, 0, fmt.Errorf("question has an empty reference answer")
	}
	submitted = normalizeAnswer(submitted)
	if submitted == "" {
		return false, 0, nil
	}

	tokenSim := tokenSimilarity(tokenizeSQL(submitted), tokenizeSQL(reference))
	charSim := sequenceRatio(submitted, reference)
	similarity := (tokenSim + charSim) / 2

	return similarity >= s.threshold, similarity, nil
}

// normalizeAnswer case-folds and collapses all whitespace runs to single
// spaces, so formatting and casing never affect the verdict.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// tokenSimilarity is the Dice coefficient over token multisets:
// 2*common / (len(a)+len(b)).
func tokenSimilarity(a, b []string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	counts := make(map[string]int, len(a))
	for _, tok := range a {
		counts[tok]++
	}
	common := 0
	for _, tok := range b {
		if counts[tok] > 0 {
			counts[tok]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}
