package port

import (
	"context"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
)

// QuestionGenerator drafts multiple-choice questions for a quiz. The catalog
// context (subject, chapter, quiz title) steers the model; existing holds the
// statements already on the quiz so the generator can avoid repeats.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, subject, chapter, quizTitle string, existing []string, count int) ([]domain.QuestionDraft, error)
}
