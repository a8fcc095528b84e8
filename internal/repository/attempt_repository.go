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

const attemptColumns = `ID, USER_ID, QUIZ_ID, STATUS, STARTED_AT, DEADLINE_AT, SUBMITTED_AT, TIME_TAKEN_SECONDS, TOTAL_QUESTIONS, CORRECT_COUNT, SCORE_PERCENT, PASSED, ANSWERS, CREATED_AT, UPDATED_AT`

// AttemptDatabaseAdapter implements domain.AttemptRepository using sqlx.
type AttemptDatabaseAdapter struct {
	db *sqlx.DB
}

// NewAttemptDatabaseAdapter creates a new instance of AttemptDatabaseAdapter.
func NewAttemptDatabaseAdapter(db *sqlx.DB) domain.AttemptRepository {
	return &AttemptDatabaseAdapter{db: db}
}

func toDomainAttempt(m *models.Attempt) *domain.Attempt {
	if m == nil {
		return nil
	}
	var submittedAt *time.Time
	if m.SubmittedAt.Valid {
		submittedAt = &m.SubmittedAt.Time
	}
	answers := make([]domain.Answer, 0, len(m.Answers))
	for _, a := range m.Answers {
		answers = append(answers, domain.Answer{QuestionID: a.QuestionID, OptionID: a.OptionID})
	}
	return &domain.Attempt{
		ID:               m.ID,
		UserID:           m.UserID,
		QuizID:           m.QuizID,
		Status:           domain.AttemptStatus(m.Status),
		StartedAt:        m.StartedAt,
		DeadlineAt:       m.DeadlineAt,
		SubmittedAt:      submittedAt,
		TimeTakenSeconds: m.TimeTakenSeconds,
		TotalQuestions:   m.TotalQuestions,
		CorrectCount:     m.CorrectCount,
		ScorePercent:     m.ScorePercent,
		Passed:           util.NumberToBool(m.Passed),
		Answers:          answers,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func answerListFromDomain(answers []domain.Answer) models.AnswerList {
	out := make(models.AnswerList, 0, len(answers))
	for _, a := range answers {
		out = append(out, models.AnswerRecord{QuestionID: a.QuestionID, OptionID: a.OptionID})
	}
	return out
}

// CreateAttempt persists a new in-progress attempt.
func (a *AttemptDatabaseAdapter) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	id := util.NewULID()
	now := time.Now()

	query := `INSERT INTO scores (ID, USER_ID, QUIZ_ID, STATUS, STARTED_AT, DEADLINE_AT, TIME_TAKEN_SECONDS, TOTAL_QUESTIONS, CORRECT_COUNT, SCORE_PERCENT, PASSED, ANSWERS, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13, :14)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		id,
		attempt.UserID,
		attempt.QuizID,
		string(attempt.Status),
		attempt.StartedAt,
		attempt.DeadlineAt,
		attempt.TimeTakenSeconds,
		attempt.TotalQuestions,
		attempt.CorrectCount,
		attempt.ScorePercent,
		util.BoolToNumber(attempt.Passed),
		answerListFromDomain(attempt.Answers),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	attempt.ID = id
	attempt.CreatedAt = now
	attempt.UpdatedAt = now
	return nil
}

// GetAttemptByID retrieves an attempt.
func (a *AttemptDatabaseAdapter) GetAttemptByID(ctx context.Context, id string) (*domain.Attempt, error) {
	var m models.Attempt
	query := fmt.Sprintf(`SELECT %s FROM scores WHERE ID = :1`, attemptColumns)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return toDomainAttempt(&m), nil
}

// GetActiveAttempt returns the user's in-progress attempt on the quiz, nil
// when there is none.
func (a *AttemptDatabaseAdapter) GetActiveAttempt(ctx context.Context, userID, quizID string) (*domain.Attempt, error) {
	var m models.Attempt
	query := fmt.Sprintf(`SELECT %s FROM scores WHERE USER_ID = :1 AND QUIZ_ID = :2 AND STATUS = :3`, attemptColumns)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, userID, quizID, string(domain.AttemptInProgress))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active attempt: %w", err)
	}
	return toDomainAttempt(&m), nil
}

// FinalizeAttempt writes the terminal state and score fields, guarded on the
// row still being in progress so concurrent finalizations cannot both win.
func (a *AttemptDatabaseAdapter) FinalizeAttempt(ctx context.Context, attempt *domain.Attempt) (bool, error) {
	now := time.Now()
	var submittedAt sql.NullTime
	if attempt.SubmittedAt != nil {
		submittedAt = util.TimeToNullTime(*attempt.SubmittedAt)
	}

	query := `UPDATE scores SET
		STATUS = :1,
		SUBMITTED_AT = :2,
		TIME_TAKEN_SECONDS = :3,
		TOTAL_QUESTIONS = :4,
		CORRECT_COUNT = :5,
		SCORE_PERCENT = :6,
		PASSED = :7,
		ANSWERS = :8,
		UPDATED_AT = :9
	WHERE ID = :10
	AND STATUS = :11`

	executor := GetExecutor(ctx, a.db)
	result, err := executor.ExecContext(ctx, query,
		string(attempt.Status),
		submittedAt,
		attempt.TimeTakenSeconds,
		attempt.TotalQuestions,
		attempt.CorrectCount,
		attempt.ScorePercent,
		util.BoolToNumber(attempt.Passed),
		answerListFromDomain(attempt.Answers),
		now,
		attempt.ID,
		string(domain.AttemptInProgress),
	)
	if err != nil {
		return false, fmt.Errorf("failed to finalize attempt: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}
	attempt.UpdatedAt = now
	return true, nil
}

// ListOverdueAttempts returns in-progress attempts whose deadline lies before
// the cutoff, oldest deadline first.
func (a *AttemptDatabaseAdapter) ListOverdueAttempts(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Attempt, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM scores WHERE STATUS = :1 AND DEADLINE_AT < :2 ORDER BY DEADLINE_AT FETCH FIRST %d ROWS ONLY`, attemptColumns, limit)

	executor := GetExecutor(ctx, a.db)
	var rows []models.Attempt
	if err := executor.SelectContext(ctx, &rows, query, string(domain.AttemptInProgress), cutoff); err != nil {
		return nil, fmt.Errorf("failed to list overdue attempts: %w", err)
	}

	attempts := make([]*domain.Attempt, 0, len(rows))
	for i := range rows {
		attempts = append(attempts, toDomainAttempt(&rows[i]))
	}
	return attempts, nil
}

// attemptWithQuizRow joins a score row with the catalog names of its quiz.
type attemptWithQuizRow struct {
	models.Attempt
	QuizTitle   string `db:"QUIZ_TITLE"`
	ChapterName string `db:"CHAPTER_NAME"`
	SubjectName string `db:"SUBJECT_NAME"`
}

// ListUserAttempts returns a page of the user's terminal attempts with quiz
// and catalog names, newest first.
func (a *AttemptDatabaseAdapter) ListUserAttempts(ctx context.Context, userID string, filters dto.ScoreFilters, pagination dto.Pagination) ([]domain.AttemptWithQuiz, int, error) {
	limit, offset := normalizePagination(pagination)

	conds := []string{"scores.USER_ID = :1", "scores.STATUS <> :2"}
	args := []interface{}{userID, string(domain.AttemptInProgress)}
	bind := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf(":%d", len(args))
	}

	if filters.QuizID != "" {
		conds = append(conds, "scores.QUIZ_ID = "+bind(filters.QuizID))
	}
	if filters.SubjectID != "" {
		conds = append(conds, "c.SUBJECT_ID = "+bind(filters.SubjectID))
	}
	if filters.StartDate != "" {
		if from, err := time.Parse("2006-01-02", filters.StartDate); err == nil {
			conds = append(conds, "scores.STARTED_AT >= "+bind(from))
		}
	}
	if filters.EndDate != "" {
		if to, err := time.Parse("2006-01-02", filters.EndDate); err == nil {
			conds = append(conds, "scores.STARTED_AT < "+bind(to.AddDate(0, 0, 1)))
		}
	}
	if filters.Passed != nil {
		conds = append(conds, "scores.PASSED = "+bind(util.BoolToNumber(*filters.Passed)))
	}

	from := `scores
		JOIN quizzes qz ON qz.ID = scores.QUIZ_ID
		JOIN chapters c ON c.ID = qz.CHAPTER_ID
		JOIN subjects s ON s.ID = c.SUBJECT_ID`
	where := strings.Join(conds, " AND ")

	selectCols := prefixColumns("scores", attemptColumns) + `, qz.TITLE AS QUIZ_TITLE, c.NAME AS CHAPTER_NAME, s.NAME AS SUBJECT_NAME`
	inner := fmt.Sprintf(`SELECT %s, ROW_NUMBER() OVER (ORDER BY scores.STARTED_AT DESC, scores.ID) AS RN FROM %s WHERE %s`, selectCols, from, where)
	resultsQuery := fmt.Sprintf(`SELECT %s, QUIZ_TITLE, CHAPTER_NAME, SUBJECT_NAME FROM (%s) WHERE RN > %d AND RN <= %d`, attemptColumns, inner, offset, offset+limit)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, from, where)

	executor := GetExecutor(ctx, a.db)

	var rows []attemptWithQuizRow
	if err := executor.SelectContext(ctx, &rows, resultsQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list user attempts: %w", err)
	}

	var total int
	if err := executor.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count user attempts: %w", err)
	}

	attempts := make([]domain.AttemptWithQuiz, 0, len(rows))
	for i := range rows {
		attempts = append(attempts, domain.AttemptWithQuiz{
			Attempt:     *toDomainAttempt(&rows[i].Attempt),
			QuizTitle:   rows[i].QuizTitle,
			ChapterName: rows[i].ChapterName,
			SubjectName: rows[i].SubjectName,
		})
	}
	return attempts, total, nil
}

// ListQuizAttempts returns a page of a quiz's terminal attempts with the
// owners' display identity, newest first.
func (a *AttemptDatabaseAdapter) ListQuizAttempts(ctx context.Context, quizID string, pagination dto.Pagination) ([]domain.AttemptWithUser, int, error) {
	limit, offset := normalizePagination(pagination)

	from := `scores JOIN users u ON u.ID = scores.USER_ID`
	where := `scores.QUIZ_ID = :1 AND scores.STATUS <> :2`
	args := []interface{}{quizID, string(domain.AttemptInProgress)}

	selectCols := prefixColumns("scores", attemptColumns) + `, u.EMAIL AS USER_EMAIL, u.FULL_NAME AS USER_FULL_NAME`
	inner := fmt.Sprintf(`SELECT %s, ROW_NUMBER() OVER (ORDER BY scores.STARTED_AT DESC, scores.ID) AS RN FROM %s WHERE %s`, selectCols, from, where)
	resultsQuery := fmt.Sprintf(`SELECT %s, USER_EMAIL, USER_FULL_NAME FROM (%s) WHERE RN > %d AND RN <= %d`, attemptColumns, inner, offset, offset+limit)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, from, where)

	executor := GetExecutor(ctx, a.db)

	var rows []models.AttemptWithUser
	if err := executor.SelectContext(ctx, &rows, resultsQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list quiz attempts: %w", err)
	}

	var total int
	if err := executor.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count quiz attempts: %w", err)
	}

	attempts := make([]domain.AttemptWithUser, 0, len(rows))
	for i := range rows {
		attempts = append(attempts, domain.AttemptWithUser{
			Attempt:      *toDomainAttempt(&rows[i].Attempt),
			UserEmail:    rows[i].UserEmail,
			UserFullName: util.NullStringToString(rows[i].UserFullName),
		})
	}
	return attempts, total, nil
}

// GetUserStats aggregates the user's terminal attempts in SQL: the totals in
// one query, the per-subject breakdown in a second.
func (a *AttemptDatabaseAdapter) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	executor := GetExecutor(ctx, a.db)

	var totals struct {
		TotalAttempts int             `db:"TOTAL_ATTEMPTS"`
		Passed        int             `db:"PASSED_COUNT"`
		AvgPercent    sql.NullFloat64 `db:"AVG_PERCENT"`
		BestPercent   sql.NullFloat64 `db:"BEST_PERCENT"`
		LastAttemptAt sql.NullTime    `db:"LAST_ATTEMPT_AT"`
	}
	totalsQuery := `SELECT
		COUNT(*) AS TOTAL_ATTEMPTS,
		COALESCE(SUM(PASSED), 0) AS PASSED_COUNT,
		AVG(SCORE_PERCENT) AS AVG_PERCENT,
		MAX(SCORE_PERCENT) AS BEST_PERCENT,
		MAX(STARTED_AT) AS LAST_ATTEMPT_AT
	FROM scores WHERE USER_ID = :1 AND STATUS <> :2`
	if err := executor.GetContext(ctx, &totals, totalsQuery, userID, string(domain.AttemptInProgress)); err != nil {
		return nil, fmt.Errorf("failed to aggregate user stats: %w", err)
	}

	var breakdownRows []struct {
		SubjectID   string  `db:"SUBJECT_ID"`
		SubjectName string  `db:"SUBJECT_NAME"`
		Attempts    int     `db:"ATTEMPTS"`
		AvgPercent  float64 `db:"AVG_PERCENT"`
	}
	breakdownQuery := `SELECT s.ID AS SUBJECT_ID, s.NAME AS SUBJECT_NAME, COUNT(*) AS ATTEMPTS, AVG(scores.SCORE_PERCENT) AS AVG_PERCENT
		FROM scores
		JOIN quizzes qz ON qz.ID = scores.QUIZ_ID
		JOIN chapters c ON c.ID = qz.CHAPTER_ID
		JOIN subjects s ON s.ID = c.SUBJECT_ID
		WHERE scores.USER_ID = :1 AND scores.STATUS <> :2
		GROUP BY s.ID, s.NAME
		ORDER BY s.NAME`
	if err := executor.SelectContext(ctx, &breakdownRows, breakdownQuery, userID, string(domain.AttemptInProgress)); err != nil {
		return nil, fmt.Errorf("failed to aggregate subject breakdown: %w", err)
	}

	stats := &domain.UserStats{
		TotalAttempts: totals.TotalAttempts,
		Passed:        totals.Passed,
		AvgPercent:    util.RoundNullFloat(totals.AvgPercent),
		BestPercent:   util.RoundNullFloat(totals.BestPercent),
	}
	if totals.LastAttemptAt.Valid {
		stats.LastAttemptAt = &totals.LastAttemptAt.Time
	}
	for _, r := range breakdownRows {
		stats.BySubject = append(stats.BySubject, domain.SubjectBreakdown{
			SubjectID:   r.SubjectID,
			SubjectName: r.SubjectName,
			Attempts:    r.Attempts,
			AvgPercent:  util.RoundTo1(r.AvgPercent),
		})
	}
	return stats, nil
}

// CountAttempts counts terminal attempts.
func (a *AttemptDatabaseAdapter) CountAttempts(ctx context.Context) (int, error) {
	var total int
	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &total, `SELECT COUNT(*) FROM scores WHERE STATUS <> :1`, string(domain.AttemptInProgress)); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return total, nil
}

// OverallPassRate is the percentage of terminal attempts that passed.
func (a *AttemptDatabaseAdapter) OverallPassRate(ctx context.Context) (float64, error) {
	var rate sql.NullFloat64
	query := `SELECT AVG(PASSED) * 100 FROM scores WHERE STATUS <> :1`
	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &rate, query, string(domain.AttemptInProgress)); err != nil {
		return 0, fmt.Errorf("failed to compute pass rate: %w", err)
	}
	return util.RoundNullFloat(rate), nil
}

// TopQuizAggregates returns per-quiz aggregates for the most-attempted
// quizzes.
func (a *AttemptDatabaseAdapter) TopQuizAggregates(ctx context.Context, limit int) ([]domain.QuizAggregate, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT qz.ID AS QUIZ_ID, qz.TITLE AS QUIZ_TITLE, COUNT(*) AS ATTEMPTS, AVG(scores.SCORE_PERCENT) AS AVG_PERCENT, AVG(scores.PASSED) * 100 AS PASS_RATE
		FROM scores
		JOIN quizzes qz ON qz.ID = scores.QUIZ_ID
		WHERE scores.STATUS <> :1
		GROUP BY qz.ID, qz.TITLE
		ORDER BY COUNT(*) DESC, qz.TITLE
		FETCH FIRST %d ROWS ONLY`, limit)

	executor := GetExecutor(ctx, a.db)
	var rows []struct {
		QuizID     string  `db:"QUIZ_ID"`
		QuizTitle  string  `db:"QUIZ_TITLE"`
		Attempts   int     `db:"ATTEMPTS"`
		AvgPercent float64 `db:"AVG_PERCENT"`
		PassRate   float64 `db:"PASS_RATE"`
	}
	if err := executor.SelectContext(ctx, &rows, query, string(domain.AttemptInProgress)); err != nil {
		return nil, fmt.Errorf("failed to aggregate quizzes: %w", err)
	}

	aggregates := make([]domain.QuizAggregate, 0, len(rows))
	for _, r := range rows {
		aggregates = append(aggregates, domain.QuizAggregate{
			QuizID:     r.QuizID,
			QuizTitle:  r.QuizTitle,
			Attempts:   r.Attempts,
			AvgPercent: util.RoundTo1(r.AvgPercent),
			PassRate:   util.RoundTo1(r.PassRate),
		})
	}
	return aggregates, nil
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(table, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = table + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
