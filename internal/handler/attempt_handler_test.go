package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/service"
)

func createAssignedAssignment(t *testing.T, a *testApp) uint {
	t.Helper()

	resp := a.request(t, http.MethodPost, "/api/v2/assignments", arithmeticAssignment(), teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created envelope[dto.AssignmentResponse]
	decodeResponse(t, resp, &created)
	require.NotZero(t, created.Data.ID)

	resp = a.request(t, http.MethodPut, fmt.Sprintf("/api/v2/assignments/%d/classes", created.Data.ID),
		map[string]interface{}{"class_ids": []uint{10}}, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var assigned envelope[dto.AssignmentResponse]
	decodeResponse(t, resp, &assigned)
	require.Equal(t, []uint{10}, assigned.Data.ClassIDs)

	return created.Data.ID
}

func startAttempt(t *testing.T, a *testApp, assignmentID, userID uint) dto.AttemptResponse {
	t.Helper()

	resp := a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts", assignmentID), nil, userID, service.RoleStudent)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var started envelope[dto.AttemptResponse]
	decodeResponse(t, resp, &started)
	return started.Data
}

func TestAttemptStartAndSubmit(t *testing.T) {
	a := newTestApp(t)
	assignmentID := createAssignedAssignment(t, a)

	resp := a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts", assignmentID), nil, studentID, service.RoleStudent)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	raw := readBody(t, resp)
	require.NotContains(t, string(raw), `"answer"`)
	require.NotContains(t, string(raw), "var_0")

	attempt := startAttempt(t, a, assignmentID, studentID)
	require.NotEmpty(t, attempt.AttemptID)
	require.Len(t, attempt.Questions, 3)
	require.Equal(t, "What is 2 + 3?", attempt.Questions[0].Text)
	require.Equal(t, []string{"first", "second"}, attempt.Questions[2].Options)

	resp = a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts/submit", assignmentID), map[string]interface{}{
		"attempt_id": attempt.AttemptID,
		"answers":    map[string]string{"0": "5", "1": "paris", "2": " 1 "},
	}, studentID, service.RoleStudent)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var graded envelope[dto.SubmissionResponse]
	decodeResponse(t, resp, &graded)
	require.True(t, graded.Success)
	require.Equal(t, 3, graded.Data.Score)
	require.Equal(t, 3, graded.Data.TotalQuestions)
	require.Len(t, graded.Data.Answers, 3)
	require.Equal(t, "What is 2 + 3?", graded.Data.Answers[0].QuestionText)
	require.True(t, graded.Data.Answers[0].IsCorrect)

	// Starting again reports the existing submission.
	resp = a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts", assignmentID), nil, studentID, service.RoleStudent)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict envelope[map[string]uint]
	decodeResponse(t, resp, &conflict)
	require.False(t, conflict.Success)
	require.Equal(t, graded.Data.ID, conflict.Data["submission_id"])

	// The consumed attempt cannot be replayed.
	resp = a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts/submit", assignmentID), map[string]interface{}{
		"attempt_id": attempt.AttemptID,
		"answers":    map[string]string{"0": "5"},
	}, studentID, service.RoleStudent)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAttemptSubmitPartialAnswers(t *testing.T) {
	a := newTestApp(t)
	assignmentID := createAssignedAssignment(t, a)
	attempt := startAttempt(t, a, assignmentID, classmateID)

	resp := a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts/submit", assignmentID), map[string]interface{}{
		"attempt_id": attempt.AttemptID,
		"answers":    map[string]string{"0": "6"},
	}, classmateID, service.RoleStudent)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var graded envelope[dto.SubmissionResponse]
	decodeResponse(t, resp, &graded)
	require.Equal(t, 0, graded.Data.Score)
	require.Equal(t, 3, graded.Data.TotalQuestions)
	require.NotNil(t, graded.Data.Answers[0].StudentAnswer)
	require.Equal(t, "6", *graded.Data.Answers[0].StudentAnswer)
	require.Nil(t, graded.Data.Answers[1].StudentAnswer)
}

func TestAttemptRejectsIneligibleCallers(t *testing.T) {
	a := newTestApp(t)
	assignmentID := createAssignedAssignment(t, a)
	path := fmt.Sprintf("/api/v2/assignments/%d/attempts", assignmentID)

	resp := a.request(t, http.MethodPost, path, nil, outsiderID, service.RoleStudent)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.request(t, http.MethodPost, path, nil, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.request(t, http.MethodPost, path, nil, 0, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.request(t, http.MethodPost, "/api/v2/assignments/999/attempts", nil, studentID, service.RoleStudent)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.request(t, http.MethodPost, "/api/v2/assignments/abc/attempts", nil, studentID, service.RoleStudent)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAttemptSubmitRejectsForeignAttempt(t *testing.T) {
	a := newTestApp(t)
	assignmentID := createAssignedAssignment(t, a)
	attempt := startAttempt(t, a, assignmentID, studentID)

	resp := a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts/submit", assignmentID), map[string]interface{}{
		"attempt_id": attempt.AttemptID,
		"answers":    map[string]string{"0": "5"},
	}, classmateID, service.RoleStudent)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts/submit", assignmentID), map[string]interface{}{
		"attempt_id": attempt.AttemptID,
		"answers":    map[string]string{"7": "5"},
	}, studentID, service.RoleStudent)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts/submit", assignmentID), map[string]interface{}{
		"answers": map[string]string{"0": "5"},
	}, studentID, service.RoleStudent)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAttemptInvalidatedByAssignmentEdit(t *testing.T) {
	a := newTestApp(t)
	assignmentID := createAssignedAssignment(t, a)
	attempt := startAttempt(t, a, assignmentID, studentID)

	edited := arithmeticAssignment()
	edited["title"] = "Warm up (revised)"
	edited["questions"] = []map[string]interface{}{
		{"text": "What is {{range(4,4)}} * 2?", "type": "single_response", "answer": "var_0 * 2"},
	}
	resp := a.request(t, http.MethodPut, fmt.Sprintf("/api/v2/assignments/%d", assignmentID), edited, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.request(t, http.MethodPost, fmt.Sprintf("/api/v2/assignments/%d/attempts/submit", assignmentID), map[string]interface{}{
		"attempt_id": attempt.AttemptID,
		"answers":    map[string]string{"0": "5"},
	}, studentID, service.RoleStudent)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	fresh := startAttempt(t, a, assignmentID, studentID)
	require.Equal(t, "What is 4 * 2?", fresh.Questions[0].Text)
}

func TestAttemptSubmitIsRateLimited(t *testing.T) {
	a := newTestApp(t)
	path := "/api/v2/assignments/999/attempts/submit"
	body := map[string]interface{}{"attempt_id": "missing", "answers": map[string]string{}}

	for i := 0; i < 5; i++ {
		resp := a.request(t, http.MethodPost, path, body, outsiderID, service.RoleStudent)
		require.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode)
	}

	resp := a.request(t, http.MethodPost, path, body, outsiderID, service.RoleStudent)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
