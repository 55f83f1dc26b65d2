package app

import (
	"context"
	"errors"
	"testing"

	"movie-trivia-service/internal/domain"
)

// prefixTranslator translates by prefixing, failing outright for any text in
// the reject set.
type prefixTranslator struct {
	reject map[string]bool
}

func (p *prefixTranslator) Translate(_ context.Context, text string) (string, error) {
	if p.reject[text] {
		return "", errors.New("translation unavailable")
	}
	return "es:" + text, nil
}

func TestTranslateBatchTranslatesEveryField(t *testing.T) {
	s := newSession("u1", nil, &prefixTranslator{}, nil, Options{})
	batch := []domain.Question{
		{Prompt: "p0", CorrectAnswer: "c0", IncorrectAnswers: []string{"w0", "w1"}},
		{Prompt: "p1", CorrectAnswer: "c1", IncorrectAnswers: []string{"w2"}},
	}

	out := s.translateBatch(context.Background(), batch)

	if out[0].Prompt != "es:p0" || out[0].CorrectAnswer != "es:c0" {
		t.Fatalf("question 0 not translated: %+v", out[0])
	}
	if out[0].IncorrectAnswers[0] != "es:w0" || out[0].IncorrectAnswers[1] != "es:w1" {
		t.Fatalf("question 0 incorrect answers not translated: %+v", out[0].IncorrectAnswers)
	}
	if out[1].CorrectAnswer != "es:c1" || out[1].IncorrectAnswers[0] != "es:w2" {
		t.Fatalf("question 1 not translated: %+v", out[1])
	}
}

func TestTranslateBatchFallsBackPerField(t *testing.T) {
	s := newSession("u1", nil, &prefixTranslator{reject: map[string]bool{"w0": true}}, nil, Options{})
	batch := []domain.Question{
		{Prompt: "p0", CorrectAnswer: "c0", IncorrectAnswers: []string{"w0", "w1"}},
	}

	out := s.translateBatch(context.Background(), batch)

	// The failed field keeps the original text; siblings still translate.
	if out[0].IncorrectAnswers[0] != "w0" {
		t.Fatalf("failed field must keep original text, got %q", out[0].IncorrectAnswers[0])
	}
	if out[0].Prompt != "es:p0" || out[0].CorrectAnswer != "es:c0" || out[0].IncorrectAnswers[1] != "es:w1" {
		t.Fatalf("sibling fields must still translate: %+v", out[0])
	}
}

func TestTranslateBatchFailedCorrectAnswerKeepsIdentity(t *testing.T) {
	s := newSession("u1", nil, &prefixTranslator{reject: map[string]bool{"c0": true}}, nil, Options{})
	batch := []domain.Question{
		{Prompt: "p0", CorrectAnswer: "c0", IncorrectAnswers: []string{"w0"}},
	}

	out := s.translateBatch(context.Background(), batch)

	// Correctness is carried by the translated correct-answer value, so the
	// untranslated fallback is still the answer that scores.
	if out[0].CorrectAnswer != "c0" {
		t.Fatalf("expected original correct answer, got %q", out[0].CorrectAnswer)
	}
	if out[0].IncorrectAnswers[0] != "es:w0" {
		t.Fatalf("expected translated incorrect answer, got %q", out[0].IncorrectAnswers[0])
	}
}

func TestTranslateBatchNilTranslator(t *testing.T) {
	s := newSession("u1", nil, nil, nil, Options{})
	batch := []domain.Question{{Prompt: "p0", CorrectAnswer: "c0", IncorrectAnswers: []string{"w0"}}}

	out := s.translateBatch(context.Background(), batch)
	if out[0].Prompt != "p0" || out[0].CorrectAnswer != "c0" {
		t.Fatalf("nil translator must pass questions through, got %+v", out[0])
	}
}
