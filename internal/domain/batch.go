package domain

import "context"

// QuestionDraft is the shape the LLM is asked to produce for one
// multiple-choice question: a statement, its options and which one is right.
type QuestionDraft struct {
	Statement    string
	Options      []string
	CorrectIndex int
}

// Validate checks the draft is usable before it is persisted.
func (d *QuestionDraft) Validate() error {
	if d.Statement == "" {
		return NewValidationError("draft statement is required")
	}
	if len(d.Options) < MinOptionsPerQuestion || len(d.Options) > MaxOptionsPerQuestion {
		return NewValidationError("draft option count out of range")
	}
	if d.CorrectIndex < 0 || d.CorrectIndex >= len(d.Options) {
		return NewValidationError("draft correct index out of range")
	}
	for _, o := range d.Options {
		if o == "" {
			return NewValidationError("draft option text is required")
		}
	}
	return nil
}

// BatchService defines the interface for batch operations.
type BatchService interface {
	// GenerateDraftQuestions tops up underfilled quizzes with LLM-drafted
	// questions, persisted as drafts for admin review.
	GenerateDraftQuestions(ctx context.Context) error
}
