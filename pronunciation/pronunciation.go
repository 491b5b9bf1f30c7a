// Package pronunciation scores a learner's spoken attempt at a phrase.
//
// RandomScorer is a placeholder: it does not inspect audio and produces
// plausible random scores.
package pronunciation

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ErrMissingPhrase is returned when the request names no target phrase.
var ErrMissingPhrase = errors.New("target phrase is required")

// Request describes one pronunciation attempt.
type Request struct {
	TargetPhrase string `json:"targetPhrase"`
	Language     string `json:"language,omitempty"`
	// Audio is the recorded attempt; RandomScorer ignores it.
	Audio []byte `json:"-"`
}

// Breakdown holds the per-dimension scores.
type Breakdown struct {
	Accuracy      int `json:"accuracy"`
	Fluency       int `json:"fluency"`
	Pronunciation int `json:"pronunciation"`
}

// Result is the outcome of scoring an attempt.
type Result struct {
	OverallScore   int       `json:"overallScore"`
	Breakdown      Breakdown `json:"breakdown"`
	Feedback       string    `json:"feedback"`
	WordsToImprove []string  `json:"wordsToImprove"`
	Suggestions    []string  `json:"suggestions"`
}

// Scorer evaluates pronunciation attempts.
type Scorer interface {
	Score(ctx context.Context, req Request) (Result, error)
}

// Feedback returns the canned message for an overall score.
func Feedback(score int) string {
	switch {
	case score >= 90:
		return "Excelente! Sua pronúncia é perfeita."
	case score >= 80:
		return "Muito bom! Continue praticando para melhorar ainda mais."
	case score >= 70:
		return "Bom trabalho! Preste atenção aos sons específicos do idioma."
	default:
		return "Continue praticando! Ouça atentamente a pronúncia nativa."
	}
}

// Suggestions returns practice tips, naming the flagged words when there are any.
func Suggestions(wordsToImprove []string) []string {
	if len(wordsToImprove) == 0 {
		return []string{
			"Sua pronúncia está ótima!",
			"Continue praticando para manter o nível",
			"Tente conversas mais complexas para desafiar-se",
		}
	}
	return []string{
		`Tente enfatizar a sílaba correta em "` + strings.Join(wordsToImprove, ", ") + `"`,
		"Ouça atentamente a pronúncia nativa e repita várias vezes",
		"Grave sua voz e compare com a pronúncia original",
	}
}

const (
	flagProbability = 0.3
	maxFlaggedWords = 2
)

// RandomScorer draws uniform random scores: accuracy in [70,99], fluency in
// [80,99] and pronunciation in [75,99].
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScorer returns a scorer seeded from the clock.
func NewRandomScorer() *RandomScorer {
	return NewSeededScorer(time.Now().UnixNano())
}

// NewSeededScorer returns a deterministic scorer.
func NewSeededScorer(seed int64) *RandomScorer {
	return &RandomScorer{rng: rand.New(rand.NewSource(seed))}
}

// Score implements Scorer.
func (s *RandomScorer) Score(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	phrase := strings.TrimSpace(req.TargetPhrase)
	if phrase == "" {
		return Result{}, ErrMissingPhrase
	}

	s.mu.Lock()
	b := Breakdown{
		Accuracy:      s.between(70, 99),
		Fluency:       s.between(80, 99),
		Pronunciation: s.between(75, 99),
	}
	var flagged []string
	for _, word := range strings.Fields(phrase) {
		if len(flagged) == maxFlaggedWords {
			break
		}
		if s.rng.Float64() < flagProbability {
			flagged = append(flagged, word)
		}
	}
	s.mu.Unlock()

	overall := int(math.Round(float64(b.Accuracy+b.Fluency+b.Pronunciation) / 3))
	if flagged == nil {
		flagged = []string{}
	}

	return Result{
		OverallScore:   overall,
		Breakdown:      b,
		Feedback:       Feedback(overall),
		WordsToImprove: flagged,
		Suggestions:    Suggestions(flagged),
	}, nil
}

// between returns a uniform int in [lo, hi]. Callers hold s.mu.
func (s *RandomScorer) between(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

var _ Scorer = (*RandomScorer)(nil)
