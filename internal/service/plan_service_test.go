package service

import (
	"context"
	"testing"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/planner"
	"alcyxob/liftlog/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_Sources(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	d, err := e.plans.Draft(ctx, e.userID, DraftSource{})
	require.NoError(t, err)
	assert.Equal(t, planner.ModeNew, d.Mode)
	assert.Equal(t, testToday, d.Date)
	assert.Empty(t, d.Exercises)

	tpl, err := e.templates.CreateFromDraft(ctx, e.userID, "Legs", draftWith(e.ref(t, "Back Squat")))
	require.NoError(t, err)

	d, err = e.plans.Draft(ctx, e.userID, DraftSource{ImportTemplate: tpl.ID})
	require.NoError(t, err)
	assert.Equal(t, planner.ModeImportTemplate, d.Mode)
	require.Len(t, d.Exercises, 1)
	assert.Len(t, d.Exercises[0].Sets, 3)

	d, err = e.plans.Draft(ctx, e.userID, DraftSource{EditTemplate: tpl.ID})
	require.NoError(t, err)
	assert.Equal(t, planner.ModeEditTemplate, d.Mode)
	assert.Equal(t, tpl.ID, d.SourceID)

	w := e.workout(t, "2025-07-01", "", "Bench Press")
	d, err = e.plans.Draft(ctx, e.userID, DraftSource{ImportWorkout: w.ID})
	require.NoError(t, err)
	assert.Equal(t, planner.ModeImportWorkout, d.Mode)
	assert.Equal(t, domain.Date("2025-07-01"), d.Date)

	_, err = e.plans.Draft(ctx, e.userID, DraftSource{ImportTemplate: tpl.ID, ImportWorkout: w.ID})
	assert.ErrorIs(t, err, ErrAmbiguousImport)
	_, err = e.plans.Draft(ctx, e.userID, DraftSource{ImportTemplate: "missing"})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	_, err = e.plans.Draft(ctx, e.userID, DraftSource{ImportWorkout: "missing"})
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func draftWith(refs ...domain.ExerciseRef) planner.Draft {
	d := planner.New("2025-08-01")
	for _, r := range refs {
		d.Add(r)
	}
	return *d
}

func TestCommit_NewWorkout(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	draft := draftWith(e.ref(t, "Bench Press"), e.ref(t, "Barbell Row"))
	require.NoError(t, draft.SetWeightAll(0, 80))
	require.NoError(t, draft.SetCount(1, 2))

	res, err := e.plans.Commit(ctx, e.userID, CommitRequest{Draft: draft})
	require.NoError(t, err)
	assert.Equal(t, "/workout/"+res.WorkoutID, res.Redirect)

	w, err := e.workouts.Get(ctx, e.userID, res.WorkoutID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, w.Status)
	assert.Equal(t, domain.Date("2025-08-01"), w.Date)
	require.Len(t, w.Exercises, 2)
	assert.Equal(t, 3, w.Exercises[0].SetsCount)
	assert.Equal(t, 80.0, w.Exercises[0].Weight)
	assert.Len(t, w.Exercises[1].Sets, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.CounterWorkoutsCommitted.WithLabelValues("new")))
}

func TestCommit_RejectsBadDrafts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.plans.Commit(ctx, e.userID, CommitRequest{Draft: *planner.New(testToday)})
	assert.ErrorIs(t, err, planner.ErrEmptyDraft)

	bad := draftWith(domain.ExerciseRef{ID: "not-in-catalog", Name: "Ghost"})
	_, err = e.plans.Commit(ctx, e.userID, CommitRequest{Draft: bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	negative := draftWith(e.ref(t, "Deadlift"))
	negative.Exercises[0].Sets[0].Reps = -1
	_, err = e.plans.Commit(ctx, e.userID, CommitRequest{Draft: negative})
	assert.ErrorIs(t, err, planner.ErrInvalidValue)

	_, err = e.plans.Commit(ctx, e.userID, CommitRequest{Draft: planner.Draft{Mode: "teleport"}})
	assert.ErrorIs(t, err, ErrInvalidMode)
	_, err = e.plans.Commit(ctx, e.userID, CommitRequest{Draft: planner.Draft{Mode: planner.ModeEditTemplate}})
	assert.ErrorIs(t, err, ErrMissingSource)

	// nothing was written by the failed commits
	all, err := e.store.Workouts.List(ctx, e.userID, repository.WorkoutFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCommit_ImportWorkoutReplaces(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	w := e.workout(t, "2025-07-01", "", "Bench Press", "Deadlift")

	d, err := e.plans.Draft(ctx, e.userID, DraftSource{ImportWorkout: w.ID})
	require.NoError(t, err)
	d.Date = "2025-07-02"

	// Deadlift deselected, Pull-Up newly selected
	res, err := e.plans.Commit(ctx, e.userID, CommitRequest{
		Draft:     *d,
		Selection: []string{e.ref(t, "Bench Press").ID, e.ref(t, "Pull-Up").ID},
	})
	require.NoError(t, err)
	assert.Equal(t, w.ID, res.WorkoutID)

	got, err := e.workouts.Get(ctx, e.userID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Date("2025-07-02"), got.Date)
	require.Len(t, got.Exercises, 2)
	assert.Equal(t, "Bench Press", got.Exercises[0].Exercise.Name)
	assert.Equal(t, "Pull-Up", got.Exercises[1].Exercise.Name)
	assert.Len(t, got.Exercises[1].Sets, 3)

	_, err = e.plans.Commit(ctx, e.userID, CommitRequest{Draft: *d, Selection: []string{"nope"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrExerciseNotFound)
}

func TestCommit_ImportWorkoutWithoutDateKeepsDate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	w := e.workout(t, "2025-07-01", "", "Bench Press")

	d, err := e.plans.Draft(ctx, e.userID, DraftSource{ImportWorkout: w.ID})
	require.NoError(t, err)
	d.Date = ""
	require.NoError(t, d.SetCount(0, 4))

	_, err = e.plans.Commit(ctx, e.userID, CommitRequest{Draft: *d})
	require.NoError(t, err)

	got, err := e.workouts.Get(ctx, e.userID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Date("2025-07-01"), got.Date)
	assert.Len(t, got.Exercises[0].Sets, 4)

	d.SourceID = "missing"
	_, err = e.plans.Commit(ctx, e.userID, CommitRequest{Draft: *d})
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestCommit_EditTemplate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tpl, err := e.templates.CreateFromDraft(ctx, e.userID, "Pull", draftWith(e.ref(t, "Pull-Up")))
	require.NoError(t, err)

	d, err := e.plans.Draft(ctx, e.userID, DraftSource{EditTemplate: tpl.ID})
	require.NoError(t, err)
	require.NoError(t, d.SetCount(0, 5))
	require.NoError(t, d.SetRepsAll(0, 6))

	res, err := e.plans.Commit(ctx, e.userID, CommitRequest{Draft: *d})
	require.NoError(t, err)
	assert.Equal(t, "/templates", res.Redirect)

	got, err := e.templates.Get(ctx, e.userID, tpl.ID)
	require.NoError(t, err)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, domain.Target(5), got.Exercises[0].Sets)
	assert.Equal(t, domain.Target(6), got.Exercises[0].Reps)

	// template import saves verbatim and links the workout to its template
	d, err = e.plans.Draft(ctx, e.userID, DraftSource{ImportTemplate: tpl.ID})
	require.NoError(t, err)
	res, err = e.plans.Commit(ctx, e.userID, CommitRequest{Draft: *d, Selection: []string{}})
	require.NoError(t, err)
	w, err := e.workouts.Get(ctx, e.userID, res.WorkoutID)
	require.NoError(t, err)
	require.NotNil(t, w.TemplateID)
	assert.Equal(t, tpl.ID, *w.TemplateID)
	assert.Equal(t, testToday, w.Date)
	assert.Len(t, w.Exercises[0].Sets, 5)
}

func TestApply_ResolvesCatalogRefs(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	squat := e.ref(t, "Back Squat")

	forged := domain.ExerciseRef{ID: squat.ID, Name: "Anything", TargetMuscle: "Nowhere"}
	d, err := e.plans.Apply(ctx, e.userID, draftWith(), planner.Op{Type: planner.OpAdd, Exercise: &forged})
	require.NoError(t, err)
	require.Len(t, d.Exercises, 1)
	assert.Equal(t, "Back Squat", d.Exercises[0].Name)
	assert.Equal(t, "Legs", d.Exercises[0].TargetMuscle)

	d, err = e.plans.Apply(ctx, e.userID, *d, planner.Op{
		Type:      planner.OpSync,
		Selection: []domain.ExerciseRef{{ID: squat.ID}, {ID: e.ref(t, "Plank").ID}},
	})
	require.NoError(t, err)
	require.Len(t, d.Exercises, 2)
	assert.Equal(t, "Plank", d.Exercises[1].Name)

	_, err = e.plans.Apply(ctx, e.userID, *d, planner.Op{Type: planner.OpAdd, Exercise: &domain.ExerciseRef{ID: "nope"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrExerciseNotFound)
	_, err = e.plans.Apply(ctx, e.userID, *d, planner.Op{Type: planner.OpSetCount, Index: 0, Count: 0})
	assert.ErrorIs(t, err, planner.ErrInvalidSetCount)
}
