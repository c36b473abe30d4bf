package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/service"
)

func TestAssignmentHandlerCreateAndList(t *testing.T) {
	a := newTestApp(t)

	for i := 0; i < 3; i++ {
		payload := arithmeticAssignment()
		payload["title"] = fmt.Sprintf("Set %d", i)
		resp := a.request(t, http.MethodPost, "/api/v2/assignments", payload, teacherID, service.RoleTeacher)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := a.request(t, http.MethodGet, "/api/v2/assignments?page=1&page_size=2", nil, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list envelope[[]dto.AssignmentResponse]
	decodeResponse(t, resp, &list)
	require.True(t, list.Success)
	require.Len(t, list.Data, 2)
	require.Equal(t, "Set 2", list.Data[0].Title)
	require.Equal(t, "var_0 + var_1", list.Data[0].Questions[0].Answer.String())
	require.JSONEq(t, `{"page":1,"page_size":2,"total_items":3,"total_pages":2}`, string(list.Meta))

	resp = a.request(t, http.MethodGet, "/api/v2/assignments", nil, otherTeacherID, service.RoleTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty envelope[[]dto.AssignmentResponse]
	decodeResponse(t, resp, &empty)
	require.Empty(t, empty.Data)
}

func TestAssignmentHandlerValidation(t *testing.T) {
	a := newTestApp(t)

	resp := a.request(t, http.MethodPost, "/api/v2/assignments", map[string]interface{}{
		"title":     "",
		"questions": []map[string]interface{}{},
	}, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.request(t, http.MethodPost, "/api/v2/assignments", map[string]interface{}{
		"title": "Choices",
		"questions": []map[string]interface{}{
			{"text": "Pick", "type": "multiple_choice", "options": []string{"a", "b"}, "answer": 5},
		},
	}, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var invalid envelope[interface{}]
	decodeResponse(t, resp, &invalid)
	require.False(t, invalid.Success)
	require.JSONEq(t, `{"question_index":0,"reason":"correct answer index 5 is out of range"}`, string(invalid.Details))

	resp = a.request(t, http.MethodPost, "/api/v2/assignments", arithmeticAssignment(), studentID, service.RoleStudent)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAssignmentHandlerOwnership(t *testing.T) {
	a := newTestApp(t)
	assignmentID := createAssignedAssignment(t, a)
	path := fmt.Sprintf("/api/v2/assignments/%d", assignmentID)

	resp := a.request(t, http.MethodGet, path, nil, otherTeacherID, service.RoleTeacher)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.request(t, http.MethodPut, path, arithmeticAssignment(), otherTeacherID, service.RoleTeacher)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.request(t, http.MethodPut, path+"/classes", map[string]interface{}{"class_ids": []uint{20}}, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.request(t, http.MethodGet, "/api/v2/assignments/4040", nil, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.request(t, http.MethodGet, path, nil, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got envelope[dto.AssignmentResponse]
	decodeResponse(t, resp, &got)
	require.Equal(t, "Warm up", got.Data.Title)
	require.Len(t, got.Data.Questions, 3)
}

func TestTemplateHandlerGenerate(t *testing.T) {
	a := newTestApp(t)

	resp := a.request(t, http.MethodPost, "/api/v2/templates", arithmeticAssignment(), teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var template envelope[dto.TemplateResponse]
	decodeResponse(t, resp, &template)
	require.NotZero(t, template.Data.ID)

	resp = a.request(t, http.MethodGet, "/api/v2/templates", nil, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var templates envelope[[]dto.TemplateResponse]
	decodeResponse(t, resp, &templates)
	require.Len(t, templates.Data, 1)

	path := fmt.Sprintf("/api/v2/templates/%d/generate", template.Data.ID)
	resp = a.request(t, http.MethodPost, path, nil, otherTeacherID, service.RoleTeacher)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.request(t, http.MethodPost, path, nil, teacherID, service.RoleTeacher)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var generated envelope[dto.AssignmentResponse]
	decodeResponse(t, resp, &generated)
	require.Equal(t, "Warm up", generated.Data.Title)
	require.NotNil(t, generated.Data.TemplateID)
	require.Equal(t, template.Data.ID, *generated.Data.TemplateID)
	require.Len(t, generated.Data.Questions, 3)
}

func TestTeacherOnlyGroupsRejectOtherCallers(t *testing.T) {
	a := newTestApp(t)

	for _, path := range []string{"/api/v2/templates", "/api/v2/tracking"} {
		resp := a.request(t, http.MethodGet, path, nil, studentID, service.RoleStudent)
		require.Equal(t, http.StatusForbidden, resp.StatusCode, path)

		resp = a.request(t, http.MethodGet, path, nil, 0, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := a.request(t, http.MethodPost, "/api/v2/templates", arithmeticAssignment(), studentID, service.RoleStudent)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
