package domain

import (
	"context"
	"time"
)

// Subject represents a top-level content area quizzes are organized under.
type Subject struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
	Chapters    []*Chapter
}

// NewSubject creates a new Subject instance
func NewSubject(name, description string) *Subject {
	now := time.Now()
	return &Subject{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the subject
func (s *Subject) Validate() error {
	if s.Name == "" {
		return NewValidationError("name is required")
	}
	return nil
}

// Chapter represents a grouping of quizzes under a subject.
type Chapter struct {
	ID          string
	SubjectID   string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// NewChapter creates a new Chapter instance
func NewChapter(subjectID, name, description string) *Chapter {
	now := time.Now()
	return &Chapter{
		SubjectID:   subjectID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the chapter
func (c *Chapter) Validate() error {
	if c.SubjectID == "" {
		return NewValidationError("subject ID is required")
	}
	if c.Name == "" {
		return NewValidationError("name is required")
	}
	return nil
}

// SubjectRepository defines the interface for subject and chapter persistence.
type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject *Subject) error
	GetSubjectByID(ctx context.Context, id string) (*Subject, error)
	GetSubjectByName(ctx context.Context, name string) (*Subject, error)
	// GetAllSubjectsWithChapters returns every live subject with its live
	// chapters attached, ordered by name.
	GetAllSubjectsWithChapters(ctx context.Context) ([]*Subject, error)
	UpdateSubject(ctx context.Context, subject *Subject) error
	// DeleteSubject soft-deletes the subject and all of its chapters.
	DeleteSubject(ctx context.Context, id string) error

	CreateChapter(ctx context.Context, chapter *Chapter) error
	GetChapterByID(ctx context.Context, id string) (*Chapter, error)
	GetChapterByName(ctx context.Context, subjectID, name string) (*Chapter, error)
	GetChaptersBySubject(ctx context.Context, subjectID string) ([]*Chapter, error)
	UpdateChapter(ctx context.Context, chapter *Chapter) error
	DeleteChapter(ctx context.Context, id string) error

	SearchSubjects(ctx context.Context, query string, limit int) ([]*Subject, error)
	CountSubjects(ctx context.Context) (int, error)
	CountChapters(ctx context.Context) (int, error)
}
