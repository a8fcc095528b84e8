package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subjectRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"ID", "NAME", "DESCRIPTION", "CREATED_AT", "UPDATED_AT", "DELETED_AT"})
}

func chapterRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"ID", "SUBJECT_ID", "NAME", "DESCRIPTION", "CREATED_AT", "UPDATED_AT", "DELETED_AT"})
}

func TestSubjectDatabaseAdapter_CreateSubject(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSubjectDatabaseAdapter(db)

	mock.ExpectExec(`INSERT INTO subjects`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	subject := &domain.Subject{Name: "Physics", Description: "Mechanics and waves"}
	err := repo.CreateSubject(context.Background(), subject)

	assert.NoError(t, err)
	assert.NotEmpty(t, subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectDatabaseAdapter_GetSubjectByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSubjectDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT (.+) FROM subjects WHERE ID = (.+)`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	subject, err := repo.GetSubjectByID(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectDatabaseAdapter_GetAllSubjectsWithChapters(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSubjectDatabaseAdapter(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM subjects WHERE DELETED_AT IS NULL ORDER BY NAME`).
		WillReturnRows(subjectRows().
			AddRow("sub1", "Chemistry", nil, now, now, nil).
			AddRow("sub2", "Physics", "Mechanics", now, now, nil))
	mock.ExpectQuery(`SELECT (.+) FROM chapters WHERE DELETED_AT IS NULL ORDER BY NAME`).
		WillReturnRows(chapterRows().
			AddRow("ch1", "sub2", "Kinematics", nil, now, now, nil).
			AddRow("ch2", "sub2", "Optics", nil, now, now, nil))

	subjects, err := repo.GetAllSubjectsWithChapters(context.Background())

	assert.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Empty(t, subjects[0].Chapters)
	require.Len(t, subjects[1].Chapters, 2)
	assert.Equal(t, "Kinematics", subjects[1].Chapters[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectDatabaseAdapter_DeleteSubject_CascadesChapters(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSubjectDatabaseAdapter(db)

	mock.ExpectExec(`UPDATE subjects SET DELETED_AT`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE chapters SET DELETED_AT`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.DeleteSubject(context.Background(), "sub1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectDatabaseAdapter_DeleteSubject_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSubjectDatabaseAdapter(db)

	mock.ExpectExec(`UPDATE subjects SET DELETED_AT`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteSubject(context.Background(), "missing")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectDatabaseAdapter_GetChapterByName(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSubjectDatabaseAdapter(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM chapters WHERE SUBJECT_ID = (.+) AND NAME = (.+)`).
		WithArgs("sub1", "Optics").
		WillReturnRows(chapterRows().AddRow("ch1", "sub1", "Optics", nil, now, now, nil))

	chapter, err := repo.GetChapterByName(context.Background(), "sub1", "Optics")

	assert.NoError(t, err)
	require.NotNil(t, chapter)
	assert.Equal(t, "ch1", chapter.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
