package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildOpenQuiz creates subject, chapter and a published two-question quiz
// dated today, returning the quiz ID and its questions.
func buildOpenQuiz(t *testing.T, adminToken string) (string, []dto.QuestionResponse) {
	t.Helper()
	suffix := time.Now().UnixNano()

	resp := doJSON(t, http.MethodPost, "/api/v1/admin/subjects", adminToken,
		fmt.Sprintf(`{"name":"IT Subject %d"}`, suffix))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var subject dto.SubjectResponse
	decodeBody(t, resp, &subject)

	resp = doJSON(t, http.MethodPost, "/api/v1/admin/subjects/"+subject.ID+"/chapters", adminToken,
		fmt.Sprintf(`{"name":"IT Chapter %d"}`, suffix))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var chapter dto.ChapterResponse
	decodeBody(t, resp, &chapter)

	resp = doJSON(t, http.MethodPost, "/api/v1/admin/chapters/"+chapter.ID+"/quizzes", adminToken,
		fmt.Sprintf(`{"title":"IT Quiz %d","date_of_quiz":%q,"duration_minutes":30,"pass_percentage":60}`,
			suffix, time.Now().Format("2006-01-02")))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var quiz dto.QuizResponse
	decodeBody(t, resp, &quiz)
	require.False(t, quiz.Published)

	questions := make([]dto.QuestionResponse, 0, 2)
	for i, statement := range []string{"What is 2+2?", "What is 3*3?"} {
		correct := []string{"4", "9"}[i]
		wrong := []string{"5", "8"}[i]
		resp = doJSON(t, http.MethodPost, "/api/v1/admin/quizzes/"+quiz.ID+"/questions", adminToken,
			fmt.Sprintf(`{"statement":%q,"options":[{"text":%q,"is_correct":true},{"text":%q}]}`,
				statement, correct, wrong))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		var q dto.QuestionResponse
		decodeBody(t, resp, &q)
		questions = append(questions, q)
	}

	resp = doJSON(t, http.MethodPut, "/api/v1/admin/quizzes/"+quiz.ID, adminToken,
		fmt.Sprintf(`{"title":"IT Quiz %d","date_of_quiz":%q,"duration_minutes":30,"pass_percentage":60,"published":true}`,
			suffix, time.Now().Format("2006-01-02")))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var published dto.QuizResponse
	decodeBody(t, resp, &published)
	require.True(t, published.Published)

	return quiz.ID, questions
}

func correctOptionID(t *testing.T, q dto.QuestionResponse) string {
	t.Helper()
	for _, o := range q.Options {
		if o.IsCorrect != nil && *o.IsCorrect {
			return o.ID
		}
	}
	t.Fatalf("question %s has no correct option in admin response", q.ID)
	return ""
}

func TestAttemptFlow(t *testing.T) {
	requireIntegration(t)

	adminToken := loginAs(t, adminEmail, adminPassword)
	quizID, questions := buildOpenQuiz(t, adminToken)

	userToken := registerUser(t, uniqueEmail("attempt-flow"), "password-123").AccessToken

	var attempt dto.AttemptStartResponse

	t.Run("StartAttempt", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/api/v1/quizzes/"+quizID+"/attempts", userToken, "")
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		decodeBody(t, resp, &attempt)
		assert.Len(t, attempt.Questions, 2)
		assert.Greater(t, attempt.RemainingSeconds, 0)
		// Answer keys must not leak to the quiz taker.
		for _, q := range attempt.Questions {
			for _, o := range q.Options {
				assert.Nil(t, o.IsCorrect)
			}
		}
	})

	t.Run("StartAgainResumes", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/api/v1/quizzes/"+quizID+"/attempts", userToken, "")
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var resumed dto.AttemptStartResponse
		decodeBody(t, resp, &resumed)
		assert.Equal(t, attempt.AttemptID, resumed.AttemptID)
	})

	t.Run("SubmitScoresAnswers", func(t *testing.T) {
		// First question right, second wrong.
		wrongOption := ""
		for _, o := range questions[1].Options {
			if o.IsCorrect == nil || !*o.IsCorrect {
				wrongOption = o.ID
			}
		}
		body := fmt.Sprintf(`{"answers":[{"question_id":%q,"option_id":%q},{"question_id":%q,"option_id":%q}]}`,
			questions[0].ID, correctOptionID(t, questions[0]),
			questions[1].ID, wrongOption)

		resp := doJSON(t, http.MethodPost, "/api/v1/attempts/"+attempt.AttemptID+"/submit", userToken, body)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result dto.AttemptResultResponse
		decodeBody(t, resp, &result)
		assert.Equal(t, 2, result.TotalQuestions)
		assert.Equal(t, 1, result.CorrectCount)
		assert.InDelta(t, 50.0, result.ScorePercent, 0.01)
		assert.False(t, result.Passed)
		assert.Len(t, result.Review, 2)
	})

	t.Run("DoubleSubmitRejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/api/v1/attempts/"+attempt.AttemptID+"/submit", userToken, `{"answers":[]}`)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("ScoreAppearsInHistory", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, "/api/v1/users/me/scores", userToken, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var scores dto.ScoreListResponse
		decodeBody(t, resp, &scores)
		require.NotEmpty(t, scores.Scores)
		assert.Equal(t, attempt.AttemptID, scores.Scores[0].AttemptID)
	})

	t.Run("AdminSeesAttempt", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, "/api/v1/admin/quizzes/"+quizID+"/attempts", adminToken, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var listing dto.QuizAttemptListResponse
		decodeBody(t, resp, &listing)
		require.NotEmpty(t, listing.Attempts)
		assert.Equal(t, attempt.AttemptID, listing.Attempts[0].AttemptID)
	})
}
