package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/repository/models"
	"github.com/fariyalkhan17/Quizzmaster/internal/util"

	"github.com/jmoiron/sqlx"
)

const subjectColumns = `ID, NAME, DESCRIPTION, CREATED_AT, UPDATED_AT, DELETED_AT`
const chapterColumns = `ID, SUBJECT_ID, NAME, DESCRIPTION, CREATED_AT, UPDATED_AT, DELETED_AT`

// SubjectDatabaseAdapter implements domain.SubjectRepository using sqlx.
type SubjectDatabaseAdapter struct {
	db *sqlx.DB
}

// NewSubjectDatabaseAdapter creates a new instance of SubjectDatabaseAdapter
func NewSubjectDatabaseAdapter(db *sqlx.DB) domain.SubjectRepository {
	return &SubjectDatabaseAdapter{db: db}
}

func toDomainSubject(m *models.Subject) *domain.Subject {
	if m == nil {
		return nil
	}
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}
	return &domain.Subject{
		ID:          m.ID,
		Name:        m.Name,
		Description: util.NullStringToString(m.Description),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

func toDomainChapter(m *models.Chapter) *domain.Chapter {
	if m == nil {
		return nil
	}
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}
	return &domain.Chapter{
		ID:          m.ID,
		SubjectID:   m.SubjectID,
		Name:        m.Name,
		Description: util.NullStringToString(m.Description),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

// CreateSubject persists a new subject.
func (a *SubjectDatabaseAdapter) CreateSubject(ctx context.Context, subject *domain.Subject) error {
	id := util.NewULID()
	now := time.Now()

	query := `INSERT INTO subjects (ID, NAME, DESCRIPTION, CREATED_AT, UPDATED_AT)
              VALUES (:1, :2, :3, :4, :5)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		id,
		subject.Name,
		util.StringToNullString(subject.Description),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	subject.ID = id
	subject.CreatedAt = now
	subject.UpdatedAt = now
	return nil
}

// GetSubjectByID retrieves a live subject.
func (a *SubjectDatabaseAdapter) GetSubjectByID(ctx context.Context, id string) (*domain.Subject, error) {
	var m models.Subject
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE ID = :1 AND DELETED_AT IS NULL`, subjectColumns)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return toDomainSubject(&m), nil
}

// GetSubjectByName retrieves a live subject by its unique name.
func (a *SubjectDatabaseAdapter) GetSubjectByName(ctx context.Context, name string) (*domain.Subject, error) {
	var m models.Subject
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE NAME = :1 AND DELETED_AT IS NULL`, subjectColumns)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subject by name: %w", err)
	}
	return toDomainSubject(&m), nil
}

// GetAllSubjectsWithChapters loads the full live catalog tree in two queries.
func (a *SubjectDatabaseAdapter) GetAllSubjectsWithChapters(ctx context.Context) ([]*domain.Subject, error) {
	executor := GetExecutor(ctx, a.db)

	var subjectModels []models.Subject
	subjectQuery := fmt.Sprintf(`SELECT %s FROM subjects WHERE DELETED_AT IS NULL ORDER BY NAME`, subjectColumns)
	if err := executor.SelectContext(ctx, &subjectModels, subjectQuery); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	var chapterModels []models.Chapter
	chapterQuery := fmt.Sprintf(`SELECT %s FROM chapters WHERE DELETED_AT IS NULL ORDER BY NAME`, chapterColumns)
	if err := executor.SelectContext(ctx, &chapterModels, chapterQuery); err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	chaptersBySubject := make(map[string][]*domain.Chapter)
	for i := range chapterModels {
		ch := toDomainChapter(&chapterModels[i])
		chaptersBySubject[ch.SubjectID] = append(chaptersBySubject[ch.SubjectID], ch)
	}

	subjects := make([]*domain.Subject, 0, len(subjectModels))
	for i := range subjectModels {
		s := toDomainSubject(&subjectModels[i])
		s.Chapters = chaptersBySubject[s.ID]
		subjects = append(subjects, s)
	}
	return subjects, nil
}

// UpdateSubject writes name and description.
func (a *SubjectDatabaseAdapter) UpdateSubject(ctx context.Context, subject *domain.Subject) error {
	now := time.Now()
	query := `UPDATE subjects SET NAME = :1, DESCRIPTION = :2, UPDATED_AT = :3 WHERE ID = :4 AND DELETED_AT IS NULL`

	executor := GetExecutor(ctx, a.db)
	result, err := executor.ExecContext(ctx, query,
		subject.Name,
		util.StringToNullString(subject.Description),
		now,
		subject.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subject with ID %s not found or not updated", subject.ID)
	}
	subject.UpdatedAt = now
	return nil
}

// DeleteSubject soft-deletes the subject and its chapters together.
func (a *SubjectDatabaseAdapter) DeleteSubject(ctx context.Context, id string) error {
	now := time.Now()
	executor := GetExecutor(ctx, a.db)

	result, err := executor.ExecContext(ctx,
		`UPDATE subjects SET DELETED_AT = :1, UPDATED_AT = :2 WHERE ID = :3 AND DELETED_AT IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subject with ID %s not found", id)
	}

	_, err = executor.ExecContext(ctx,
		`UPDATE chapters SET DELETED_AT = :1, UPDATED_AT = :2 WHERE SUBJECT_ID = :3 AND DELETED_AT IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete chapters of subject: %w", err)
	}
	return nil
}

// CreateChapter persists a new chapter.
func (a *SubjectDatabaseAdapter) CreateChapter(ctx context.Context, chapter *domain.Chapter) error {
	id := util.NewULID()
	now := time.Now()

	query := `INSERT INTO chapters (ID, SUBJECT_ID, NAME, DESCRIPTION, CREATED_AT, UPDATED_AT)
              VALUES (:1, :2, :3, :4, :5, :6)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		id,
		chapter.SubjectID,
		chapter.Name,
		util.StringToNullString(chapter.Description),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	chapter.ID = id
	chapter.CreatedAt = now
	chapter.UpdatedAt = now
	return nil
}

// GetChapterByID retrieves a live chapter.
func (a *SubjectDatabaseAdapter) GetChapterByID(ctx context.Context, id string) (*domain.Chapter, error) {
	var m models.Chapter
	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE ID = :1 AND DELETED_AT IS NULL`, chapterColumns)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return toDomainChapter(&m), nil
}

// GetChapterByName retrieves a live chapter by name within a subject.
func (a *SubjectDatabaseAdapter) GetChapterByName(ctx context.Context, subjectID, name string) (*domain.Chapter, error) {
	var m models.Chapter
	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE SUBJECT_ID = :1 AND NAME = :2 AND DELETED_AT IS NULL`, chapterColumns)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, subjectID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chapter by name: %w", err)
	}
	return toDomainChapter(&m), nil
}

// GetChaptersBySubject lists the live chapters of one subject.
func (a *SubjectDatabaseAdapter) GetChaptersBySubject(ctx context.Context, subjectID string) ([]*domain.Chapter, error) {
	var chapterModels []models.Chapter
	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE SUBJECT_ID = :1 AND DELETED_AT IS NULL ORDER BY NAME`, chapterColumns)

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &chapterModels, query, subjectID); err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	chapters := make([]*domain.Chapter, 0, len(chapterModels))
	for i := range chapterModels {
		chapters = append(chapters, toDomainChapter(&chapterModels[i]))
	}
	return chapters, nil
}

// UpdateChapter writes name and description.
func (a *SubjectDatabaseAdapter) UpdateChapter(ctx context.Context, chapter *domain.Chapter) error {
	now := time.Now()
	query := `UPDATE chapters SET NAME = :1, DESCRIPTION = :2, UPDATED_AT = :3 WHERE ID = :4 AND DELETED_AT IS NULL`

	executor := GetExecutor(ctx, a.db)
	result, err := executor.ExecContext(ctx, query,
		chapter.Name,
		util.StringToNullString(chapter.Description),
		now,
		chapter.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chapter: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("chapter with ID %s not found or not updated", chapter.ID)
	}
	chapter.UpdatedAt = now
	return nil
}

// DeleteChapter soft-deletes a chapter.
func (a *SubjectDatabaseAdapter) DeleteChapter(ctx context.Context, id string) error {
	now := time.Now()
	executor := GetExecutor(ctx, a.db)

	result, err := executor.ExecContext(ctx,
		`UPDATE chapters SET DELETED_AT = :1, UPDATED_AT = :2 WHERE ID = :3 AND DELETED_AT IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("chapter with ID %s not found", id)
	}
	return nil
}

// SearchSubjects matches the query against subject names.
func (a *SubjectDatabaseAdapter) SearchSubjects(ctx context.Context, query string, limit int) ([]*domain.Subject, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + strings.ToUpper(query) + "%"
	q := fmt.Sprintf(`SELECT %s FROM subjects WHERE DELETED_AT IS NULL AND UPPER(NAME) LIKE :1 ORDER BY NAME FETCH FIRST %d ROWS ONLY`, subjectColumns, limit)

	executor := GetExecutor(ctx, a.db)
	var subjectModels []models.Subject
	if err := executor.SelectContext(ctx, &subjectModels, q, pattern); err != nil {
		return nil, fmt.Errorf("failed to search subjects: %w", err)
	}

	subjects := make([]*domain.Subject, 0, len(subjectModels))
	for i := range subjectModels {
		subjects = append(subjects, toDomainSubject(&subjectModels[i]))
	}
	return subjects, nil
}

// CountSubjects counts live subjects.
func (a *SubjectDatabaseAdapter) CountSubjects(ctx context.Context) (int, error) {
	var total int
	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &total, `SELECT COUNT(*) FROM subjects WHERE DELETED_AT IS NULL`); err != nil {
		return 0, fmt.Errorf("failed to count subjects: %w", err)
	}
	return total, nil
}

// CountChapters counts live chapters.
func (a *SubjectDatabaseAdapter) CountChapters(ctx context.Context) (int, error) {
	var total int
	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &total, `SELECT COUNT(*) FROM chapters WHERE DELETED_AT IS NULL`); err != nil {
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return total, nil
}
