package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/repository/models"
	"github.com/fariyalkhan17/Quizzmaster/internal/util"

	"github.com/jmoiron/sqlx"
)

const quizColumns = `ID, CHAPTER_ID, TITLE, REMARKS, DATE_OF_QUIZ, DURATION_MINUTES, PASS_PERCENTAGE, PUBLISHED, CREATED_AT, UPDATED_AT, DELETED_AT`
const questionColumns = `ID, QUIZ_ID, STATEMENT, POSITION, DRAFT, CREATED_AT, UPDATED_AT, DELETED_AT`
const optionColumns = `ID, QUESTION_ID, TEXT, IS_CORRECT, POSITION, CREATED_AT, UPDATED_AT`

// questionCountExpr counts the live non-draft questions of the quiz row
// being selected. Kept as a correlated subquery so every quiz query can
// attach the count without a GROUP BY.
const questionCountExpr = `(SELECT COUNT(*) FROM questions q WHERE q.QUIZ_ID = quizzes.ID AND q.DELETED_AT IS NULL AND q.DRAFT = 0) AS QUESTION_COUNT`

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter.
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

// quizWithCount carries the question count next to the quiz row.
type quizWithCount struct {
	models.Quiz
	QuestionCount int `db:"QUESTION_COUNT"`
}

func toDomainQuiz(m *quizWithCount) *domain.Quiz {
	if m == nil {
		return nil
	}
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}
	return &domain.Quiz{
		ID:              m.ID,
		ChapterID:       m.ChapterID,
		Title:           m.Title,
		Remarks:         util.NullStringToString(m.Remarks),
		DateOfQuiz:      m.DateOfQuiz,
		DurationMinutes: m.DurationMinutes,
		PassPercentage:  m.PassPercentage,
		Published:       util.NumberToBool(m.Published),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		DeletedAt:       deletedAt,
		QuestionCount:   m.QuestionCount,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}
	return &domain.Question{
		ID:        m.ID,
		QuizID:    m.QuizID,
		Statement: m.Statement,
		Position:  m.Position,
		Draft:     util.NumberToBool(m.Draft),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		DeletedAt: deletedAt,
	}
}

func toDomainOption(m *models.Option) *domain.Option {
	if m == nil {
		return nil
	}
	return &domain.Option{
		ID:         m.ID,
		QuestionID: m.QuestionID,
		Text:       m.Text,
		IsCorrect:  util.NumberToBool(m.IsCorrect),
		Position:   m.Position,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// CreateQuiz persists a new quiz.
func (a *QuizDatabaseAdapter) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	id := util.NewULID()
	now := time.Now()

	query := `INSERT INTO quizzes (ID, CHAPTER_ID, TITLE, REMARKS, DATE_OF_QUIZ, DURATION_MINUTES, PASS_PERCENTAGE, PUBLISHED, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		id,
		quiz.ChapterID,
		quiz.Title,
		util.StringToNullString(quiz.Remarks),
		quiz.DateOfQuiz,
		quiz.DurationMinutes,
		quiz.PassPercentage,
		util.BoolToNumber(quiz.Published),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.ID = id
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	return nil
}

// GetQuizByID retrieves a live quiz with its question count.
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var m quizWithCount
	query := fmt.Sprintf(`SELECT %s, %s FROM quizzes WHERE ID = :1 AND DELETED_AT IS NULL`, quizColumns, questionCountExpr)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return toDomainQuiz(&m), nil
}

// UpdateQuiz writes the mutable quiz fields, Published included.
func (a *QuizDatabaseAdapter) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	now := time.Now()
	query := `UPDATE quizzes SET
		TITLE = :1,
		REMARKS = :2,
		DATE_OF_QUIZ = :3,
		DURATION_MINUTES = :4,
		PASS_PERCENTAGE = :5,
		PUBLISHED = :6,
		UPDATED_AT = :7
	WHERE ID = :8
	AND DELETED_AT IS NULL`

	executor := GetExecutor(ctx, a.db)
	result, err := executor.ExecContext(ctx, query,
		quiz.Title,
		util.StringToNullString(quiz.Remarks),
		quiz.DateOfQuiz,
		quiz.DurationMinutes,
		quiz.PassPercentage,
		util.BoolToNumber(quiz.Published),
		now,
		quiz.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("quiz with ID %s not found or not updated", quiz.ID)
	}
	quiz.UpdatedAt = now
	return nil
}

// DeleteQuiz soft-deletes a quiz.
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, id string) error {
	now := time.Now()
	executor := GetExecutor(ctx, a.db)

	result, err := executor.ExecContext(ctx,
		`UPDATE quizzes SET DELETED_AT = :1, UPDATED_AT = :2 WHERE ID = :3 AND DELETED_AT IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("quiz with ID %s not found", id)
	}
	return nil
}

// ListQuizzes returns a page of quizzes matching the filters, newest quiz
// date first. Quizzes under soft-deleted chapters or subjects are excluded.
func (a *QuizDatabaseAdapter) ListQuizzes(ctx context.Context, filters domain.QuizFilters, pagination dto.Pagination) ([]domain.Quiz, int, error) {
	limit, offset := normalizePagination(pagination)

	conds := []string{
		"quizzes.DELETED_AT IS NULL",
		"EXISTS (SELECT 1 FROM chapters c JOIN subjects s ON s.ID = c.SUBJECT_ID AND s.DELETED_AT IS NULL WHERE c.ID = quizzes.CHAPTER_ID AND c.DELETED_AT IS NULL)",
	}
	var args []interface{}
	bind := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf(":%d", len(args))
	}

	if filters.OnlyPublished {
		conds = append(conds, "quizzes.PUBLISHED = 1")
	}
	if filters.OnlyOpen {
		conds = append(conds, "quizzes.PUBLISHED = 1 AND quizzes.DATE_OF_QUIZ <= "+bind(time.Now()))
	}
	if filters.ChapterID != "" {
		conds = append(conds, "quizzes.CHAPTER_ID = "+bind(filters.ChapterID))
	}
	if filters.SubjectID != "" {
		conds = append(conds, "quizzes.CHAPTER_ID IN (SELECT ID FROM chapters WHERE SUBJECT_ID = "+bind(filters.SubjectID)+")")
	}
	where := strings.Join(conds, " AND ")

	inner := fmt.Sprintf(`SELECT %s, %s, ROW_NUMBER() OVER (ORDER BY DATE_OF_QUIZ DESC, ID) AS RN FROM quizzes WHERE %s`, quizColumns, questionCountExpr, where)
	resultsQuery := fmt.Sprintf(`SELECT %s, QUESTION_COUNT FROM (%s) WHERE RN > %d AND RN <= %d`, quizColumns, inner, offset, offset+limit)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM quizzes WHERE %s`, where)

	executor := GetExecutor(ctx, a.db)

	var rows []quizWithCount
	if err := executor.SelectContext(ctx, &rows, resultsQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}

	var total int
	if err := executor.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count quizzes: %w", err)
	}

	quizzes := make([]domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, *toDomainQuiz(&rows[i]))
	}
	return quizzes, total, nil
}

// CreateQuestion inserts the question and its option set. The caller is
// expected to hold a transaction so the writes land together.
func (a *QuizDatabaseAdapter) CreateQuestion(ctx context.Context, question *domain.Question) error {
	id := util.NewULID()
	now := time.Now()

	query := `INSERT INTO questions (ID, QUIZ_ID, STATEMENT, POSITION, DRAFT, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		id,
		question.QuizID,
		question.Statement,
		question.Position,
		util.BoolToNumber(question.Draft),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	question.ID = id
	question.CreatedAt = now
	question.UpdatedAt = now

	if err := a.insertOptions(ctx, executor, question); err != nil {
		return err
	}
	return nil
}

func (a *QuizDatabaseAdapter) insertOptions(ctx context.Context, executor DBTX, question *domain.Question) error {
	query := `INSERT INTO options (ID, QUESTION_ID, TEXT, IS_CORRECT, POSITION, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7)`
	now := time.Now()
	for i, opt := range question.Options {
		opt.ID = util.NewULID()
		opt.QuestionID = question.ID
		if opt.Position == 0 {
			opt.Position = i + 1
		}
		opt.CreatedAt = now
		opt.UpdatedAt = now
		_, err := executor.ExecContext(ctx, query,
			opt.ID,
			opt.QuestionID,
			opt.Text,
			util.BoolToNumber(opt.IsCorrect),
			opt.Position,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to create option: %w", err)
		}
	}
	return nil
}

// GetQuestionByID retrieves a live question with its options.
func (a *QuizDatabaseAdapter) GetQuestionByID(ctx context.Context, id string) (*domain.Question, error) {
	var m models.Question
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE ID = :1 AND DELETED_AT IS NULL`, questionColumns)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	var optionModels []models.Option
	optionQuery := fmt.Sprintf(`SELECT %s FROM options WHERE QUESTION_ID = :1 ORDER BY POSITION`, optionColumns)
	if err := executor.SelectContext(ctx, &optionModels, optionQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}

	q := toDomainQuestion(&m)
	q.Options = make([]*domain.Option, 0, len(optionModels))
	for i := range optionModels {
		q.Options = append(q.Options, toDomainOption(&optionModels[i]))
	}
	return q, nil
}

// UpdateQuestion writes the question fields and replaces its option set.
// Run inside a transaction so readers never see a half-replaced set.
func (a *QuizDatabaseAdapter) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	now := time.Now()
	executor := GetExecutor(ctx, a.db)

	query := `UPDATE questions SET STATEMENT = :1, POSITION = :2, DRAFT = :3, UPDATED_AT = :4 WHERE ID = :5 AND DELETED_AT IS NULL`
	result, err := executor.ExecContext(ctx, query,
		question.Statement,
		question.Position,
		util.BoolToNumber(question.Draft),
		now,
		question.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("question with ID %s not found or not updated", question.ID)
	}
	question.UpdatedAt = now

	if _, err := executor.ExecContext(ctx, `DELETE FROM options WHERE QUESTION_ID = :1`, question.ID); err != nil {
		return fmt.Errorf("failed to clear options: %w", err)
	}
	return a.insertOptions(ctx, executor, question)
}

// DeleteQuestion soft-deletes a question. Its options stay in place for
// terminal attempt reviews.
func (a *QuizDatabaseAdapter) DeleteQuestion(ctx context.Context, id string) error {
	now := time.Now()
	executor := GetExecutor(ctx, a.db)

	result, err := executor.ExecContext(ctx,
		`UPDATE questions SET DELETED_AT = :1, UPDATED_AT = :2 WHERE ID = :3 AND DELETED_AT IS NULL`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("question with ID %s not found", id)
	}
	return nil
}

// GetQuestionsByQuiz returns the live questions of a quiz in position order,
// options attached and ordered.
func (a *QuizDatabaseAdapter) GetQuestionsByQuiz(ctx context.Context, quizID string, includeDrafts bool) ([]*domain.Question, error) {
	executor := GetExecutor(ctx, a.db)

	cond := "QUIZ_ID = :1 AND DELETED_AT IS NULL"
	if !includeDrafts {
		cond += " AND DRAFT = 0"
	}

	var questionModels []models.Question
	questionQuery := fmt.Sprintf(`SELECT %s FROM questions WHERE %s ORDER BY POSITION, ID`, questionColumns, cond)
	if err := executor.SelectContext(ctx, &questionModels, questionQuery, quizID); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	var optionModels []models.Option
	optionQuery := fmt.Sprintf(`SELECT %s FROM options WHERE QUESTION_ID IN (SELECT ID FROM questions WHERE %s) ORDER BY QUESTION_ID, POSITION`, optionColumns, cond)
	if err := executor.SelectContext(ctx, &optionModels, optionQuery, quizID); err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}

	optionsByQuestion := make(map[string][]*domain.Option)
	for i := range optionModels {
		o := toDomainOption(&optionModels[i])
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], o)
	}

	questions := make([]*domain.Question, 0, len(questionModels))
	for i := range questionModels {
		q := toDomainQuestion(&questionModels[i])
		q.Options = optionsByQuestion[q.ID]
		questions = append(questions, q)
	}
	return questions, nil
}

// CountQuestionsByQuiz counts a quiz's live questions.
func (a *QuizDatabaseAdapter) CountQuestionsByQuiz(ctx context.Context, quizID string, includeDrafts bool) (int, error) {
	cond := "QUIZ_ID = :1 AND DELETED_AT IS NULL"
	if !includeDrafts {
		cond += " AND DRAFT = 0"
	}
	var total int
	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &total, fmt.Sprintf(`SELECT COUNT(*) FROM questions WHERE %s`, cond), quizID); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return total, nil
}

// ListQuizzesNeedingQuestions returns live published quizzes with fewer than
// min non-draft questions, for the draft generator to top up.
func (a *QuizDatabaseAdapter) ListQuizzesNeedingQuestions(ctx context.Context, min int) ([]*domain.Quiz, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM quizzes
		WHERE DELETED_AT IS NULL AND PUBLISHED = 1
		AND (SELECT COUNT(*) FROM questions q WHERE q.QUIZ_ID = quizzes.ID AND q.DELETED_AT IS NULL AND q.DRAFT = 0) < :1
		ORDER BY ID`, quizColumns, questionCountExpr)

	executor := GetExecutor(ctx, a.db)
	var rows []quizWithCount
	if err := executor.SelectContext(ctx, &rows, query, min); err != nil {
		return nil, fmt.Errorf("failed to list underfilled quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, toDomainQuiz(&rows[i]))
	}
	return quizzes, nil
}

// SearchQuizzes matches the query against quiz titles.
func (a *QuizDatabaseAdapter) SearchQuizzes(ctx context.Context, query string, limit int) ([]*domain.Quiz, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + strings.ToUpper(query) + "%"
	q := fmt.Sprintf(`SELECT %s, %s FROM quizzes WHERE DELETED_AT IS NULL AND UPPER(TITLE) LIKE :1 ORDER BY TITLE FETCH FIRST %d ROWS ONLY`, quizColumns, questionCountExpr, limit)

	executor := GetExecutor(ctx, a.db)
	var rows []quizWithCount
	if err := executor.SelectContext(ctx, &rows, q, pattern); err != nil {
		return nil, fmt.Errorf("failed to search quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, toDomainQuiz(&rows[i]))
	}
	return quizzes, nil
}

// SearchQuestions matches the query against question statements.
func (a *QuizDatabaseAdapter) SearchQuestions(ctx context.Context, query string, limit int) ([]*domain.Question, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + strings.ToUpper(query) + "%"
	q := fmt.Sprintf(`SELECT %s FROM questions WHERE DELETED_AT IS NULL AND DRAFT = 0 AND UPPER(STATEMENT) LIKE :1 ORDER BY ID FETCH FIRST %d ROWS ONLY`, questionColumns, limit)

	executor := GetExecutor(ctx, a.db)
	var questionModels []models.Question
	if err := executor.SelectContext(ctx, &questionModels, q, pattern); err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}

	questions := make([]*domain.Question, 0, len(questionModels))
	for i := range questionModels {
		questions = append(questions, toDomainQuestion(&questionModels[i]))
	}
	return questions, nil
}

// CountQuizzes counts live quizzes.
func (a *QuizDatabaseAdapter) CountQuizzes(ctx context.Context) (int, error) {
	var total int
	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &total, `SELECT COUNT(*) FROM quizzes WHERE DELETED_AT IS NULL`); err != nil {
		return 0, fmt.Errorf("failed to count quizzes: %w", err)
	}
	return total, nil
}

// CountQuestions counts live non-draft questions.
func (a *QuizDatabaseAdapter) CountQuestions(ctx context.Context) (int, error) {
	var total int
	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &total, `SELECT COUNT(*) FROM questions WHERE DELETED_AT IS NULL AND DRAFT = 0`); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return total, nil
}
