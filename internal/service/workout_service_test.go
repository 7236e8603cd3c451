package service

import (
	"context"
	"testing"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.workout(t, "2025-08-05", "", "Bench Press")
	next := e.workout(t, testToday, "", "Back Squat") // today without status counts as scheduled
	e.workout(t, "2025-07-20", "", "Deadlift")
	e.workout(t, "2025-07-28", domain.StatusCompleted, "Pull-Up")
	e.workout(t, "2025-06-01", domain.StatusScheduled, "Plank") // overdue but explicitly scheduled

	d, err := e.workouts.Dashboard(ctx, e.userID)
	require.NoError(t, err)

	require.NotNil(t, d.Next)
	assert.Equal(t, "2025-06-01", d.Next.Date.String())
	require.Len(t, d.Scheduled, 3)
	assert.Equal(t, next.ID, d.Scheduled[1].ID)
	for _, w := range d.Scheduled {
		assert.Equal(t, domain.StatusScheduled, w.Status)
	}

	require.Len(t, d.Completed, 2)
	assert.Equal(t, domain.Date("2025-07-28"), d.Completed[0].Date)
	assert.Equal(t, domain.StatusCompleted, d.Completed[1].Status)
}

func TestWorkouts_ListAndStatus(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	w := e.workout(t, "2025-07-01", "", "Bench Press")

	past, err := e.workouts.List(ctx, e.userID, ListOptions{Order: repository.Descending})
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, domain.StatusCompleted, past[0].Status)

	require.NoError(t, e.workouts.UpdateStatus(ctx, e.userID, w.ID, domain.StatusScheduled))
	got, err := e.workouts.Get(ctx, e.userID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, got.Status)

	assert.ErrorIs(t, e.workouts.UpdateStatus(ctx, e.userID, w.ID, "canceled"), ErrInvalidStatus)
	assert.ErrorIs(t, e.workouts.UpdateStatus(ctx, "stranger", w.ID, domain.StatusCompleted), ErrWorkoutNotFound)
	_, err = e.workouts.List(ctx, e.userID, ListOptions{Status: "paused"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestWorkouts_SaveSetsAndDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	w := e.workout(t, "2025-07-01", "", "Bench Press")

	set := w.Exercises[0].Sets[1]
	set.Reps = 3
	set.Notes = "grindy"
	date := "2025-07-02"
	status := string(domain.StatusCompleted)

	got, err := e.workouts.SaveSets(ctx, e.userID, w.ID, SetsInput{
		Date:   &date,
		Status: &status,
		Sets: []domain.WorkoutSet{
			set,
			{WorkoutExerciseID: w.Exercises[0].ID, SetNumber: 3, Reps: 1, Weight: 110},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Date("2025-07-02"), got.Date)
	require.Len(t, got.Exercises[0].Sets, 3)
	assert.Equal(t, "grindy", got.Exercises[0].Sets[1].Notes)
	assert.Equal(t, 110.0, got.Exercises[0].Sets[2].Weight)

	bad := "yesterday"
	_, err = e.workouts.SaveSets(ctx, e.userID, w.ID, SetsInput{Date: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	set.Weight = -5
	_, err = e.workouts.SaveSets(ctx, e.userID, w.ID, SetsInput{Sets: []domain.WorkoutSet{set}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, e.workouts.Delete(ctx, e.userID, w.ID))
	assert.ErrorIs(t, e.workouts.Delete(ctx, e.userID, w.ID), ErrWorkoutNotFound)
}
