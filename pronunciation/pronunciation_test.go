package pronunciation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestFeedbackTiers(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "Excelente! Sua pronúncia é perfeita."},
		{90, "Excelente! Sua pronúncia é perfeita."},
		{89, "Muito bom! Continue praticando para melhorar ainda mais."},
		{80, "Muito bom! Continue praticando para melhorar ainda mais."},
		{79, "Bom trabalho! Preste atenção aos sons específicos do idioma."},
		{70, "Bom trabalho! Preste atenção aos sons específicos do idioma."},
		{69, "Continue praticando! Ouça atentamente a pronúncia nativa."},
	}
	for _, tt := range tests {
		if got := Feedback(tt.score); got != tt.want {
			t.Errorf("Feedback(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestSuggestions(t *testing.T) {
	got := Suggestions([]string{"through", "thought"})
	if len(got) != 3 || got[0] != `Tente enfatizar a sílaba correta em "through, thought"` {
		t.Errorf("unexpected suggestions: %v", got)
	}

	got = Suggestions(nil)
	if len(got) != 3 || got[0] != "Sua pronúncia está ótima!" {
		t.Errorf("unexpected suggestions: %v", got)
	}
}

func TestRandomScorer_Ranges(t *testing.T) {
	s := NewSeededScorer(42)
	ctx := context.Background()
	phrase := "the quick brown fox jumps over the lazy dog"

	for i := 0; i < 500; i++ {
		res, err := s.Score(ctx, Request{TargetPhrase: phrase})
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		b := res.Breakdown
		if b.Accuracy < 70 || b.Accuracy > 99 {
			t.Fatalf("accuracy out of range: %d", b.Accuracy)
		}
		if b.Fluency < 80 || b.Fluency > 99 {
			t.Fatalf("fluency out of range: %d", b.Fluency)
		}
		if b.Pronunciation < 75 || b.Pronunciation > 99 {
			t.Fatalf("pronunciation out of range: %d", b.Pronunciation)
		}
		if res.OverallScore < 70 || res.OverallScore > 100 {
			t.Fatalf("overall out of range: %d", res.OverallScore)
		}
		if res.Feedback != Feedback(res.OverallScore) {
			t.Fatalf("feedback does not match tier for %d", res.OverallScore)
		}
		if len(res.WordsToImprove) > 2 {
			t.Fatalf("too many flagged words: %v", res.WordsToImprove)
		}
		for _, w := range res.WordsToImprove {
			if !strings.Contains(phrase, w) {
				t.Fatalf("flagged word %q not in phrase", w)
			}
		}
		if len(res.Suggestions) != 3 {
			t.Fatalf("expected 3 suggestions, got %d", len(res.Suggestions))
		}
	}
}

func TestRandomScorer_Deterministic(t *testing.T) {
	a, _ := NewSeededScorer(7).Score(context.Background(), Request{TargetPhrase: "hello world"})
	b, _ := NewSeededScorer(7).Score(context.Background(), Request{TargetPhrase: "hello world"})
	if a.OverallScore != b.OverallScore || a.Breakdown != b.Breakdown {
		t.Errorf("same seed should give same scores: %+v vs %+v", a, b)
	}
}

func TestRandomScorer_MissingPhrase(t *testing.T) {
	_, err := NewSeededScorer(1).Score(context.Background(), Request{TargetPhrase: "   "})
	if !errors.Is(err, ErrMissingPhrase) {
		t.Errorf("expected ErrMissingPhrase, got %v", err)
	}
}

func TestRandomScorer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSeededScorer(1).Score(ctx, Request{TargetPhrase: "hi"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRandomScorer_Concurrent(t *testing.T) {
	s := NewRandomScorer()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Score(context.Background(), Request{TargetPhrase: "bom dia"})
		}()
	}
	wg.Wait()
}
