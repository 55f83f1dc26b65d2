package app

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"movie-trivia-service/internal/domain"
)

// loadBatch fetches exactly BatchSize questions and translates them. Provider
// failures and short batches are fetch errors; partial sessions never start.
func (s *Session) loadBatch(ctx context.Context) ([]domain.Question, error) {
	batch, err := s.source.FetchBatch(ctx, s.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	if len(batch) != s.opts.BatchSize {
		return nil, fmt.Errorf("%w: provider returned %d of %d questions", domain.ErrFetchFailed, len(batch), s.opts.BatchSize)
	}
	return s.translateBatch(ctx, batch), nil
}

// translateBatch fans out one task per text field (prompt, correct answer,
// each incorrect answer) and joins them all before the batch is ready.
// Concurrency is capped at three tasks per question. Correct-answer identity
// survives translation because the translated correct text is copied by value,
// never recovered by position.
func (s *Session) translateBatch(ctx context.Context, batch []domain.Question) []domain.Question {
	if s.translator == nil {
		return batch
	}

	out := make([]domain.Question, len(batch))
	g := new(errgroup.Group)
	g.SetLimit(3 * len(batch))
	for i, q := range batch {
		i, q := i, q
		out[i].IncorrectAnswers = make([]string, len(q.IncorrectAnswers))
		g.Go(func() error {
			out[i].Prompt = s.translateText(ctx, q.Prompt)
			return nil
		})
		g.Go(func() error {
			out[i].CorrectAnswer = s.translateText(ctx, q.CorrectAnswer)
			return nil
		})
		for j, text := range q.IncorrectAnswers {
			j, text := j, text
			g.Go(func() error {
				out[i].IncorrectAnswers[j] = s.translateText(ctx, text)
				return nil
			})
		}
	}
	_ = g.Wait()
	return out
}

// translateText is best-effort: any failure keeps the original text and is
// never surfaced to the session.
func (s *Session) translateText(ctx context.Context, text string) string {
	translated, err := s.translator.Translate(ctx, text)
	if err != nil {
		log.Printf("translation failed for %q, keeping original: %v", text, err)
		return text
	}
	return translated
}
