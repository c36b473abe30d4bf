package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
)

func TestStudentDashboardCachesAndInvalidates(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	f := newAttemptFixture(t, nil, nil)
	assignment := f.assignedAssignment(t)
	ctx := context.Background()

	svc := NewStudentDashboardService(f.assignments, f.submissions, f.classes, redisClient, time.Minute, testLogger())

	fresh, err := svc.GetDashboard(ctx, student)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Len(t, fresh.Assignments, 1)
	require.Equal(t, dto.DashboardStatusPending, fresh.Assignments[0].Status)
	require.Equal(t, 1, fresh.Summary.Pending)

	cached, err := svc.GetDashboard(ctx, student)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)

	started, err := f.attempts.Start(ctx, student, assignment.ID)
	require.NoError(t, err)
	submitted, err := f.attempts.Submit(ctx, student, assignment.ID, dto.SubmitAttemptRequest{
		AttemptID: started.AttemptID,
		Answers:   map[int]string{0: "5", 1: "1"},
	})
	require.NoError(t, err)

	svc.Invalidate(ctx, student.ID)
	require.False(t, server.Exists("dashboard:student:100"))

	updated, err := svc.GetDashboard(ctx, student)
	require.NoError(t, err)
	require.False(t, updated.CacheHit)
	require.Equal(t, dto.DashboardStatusSubmitted, updated.Assignments[0].Status)
	require.Equal(t, submitted.ID, *updated.Assignments[0].SubmissionID)
	require.Equal(t, 2, *updated.Assignments[0].Score)
	require.Equal(t, 1, updated.Summary.Submitted)
	require.InDelta(t, 66.67, updated.Summary.AverageScore, 0.01)

	_, err = svc.GetDashboard(ctx, teacher)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestStudentDashboardWithoutCache(t *testing.T) {
	f := newAttemptFixture(t, nil, nil)
	f.assignedAssignment(t)

	svc := NewStudentDashboardService(f.assignments, f.submissions, f.classes, nil, 0, testLogger())
	svc.Invalidate(context.Background(), student.ID)

	response, err := svc.GetDashboard(context.Background(), outsider)
	require.NoError(t, err)
	require.Empty(t, response.Assignments)
	require.Zero(t, response.Summary.AverageScore)
}
