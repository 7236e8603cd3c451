package planner_test

import (
	"math"
	"testing"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bench = domain.ExerciseRef{ID: "bench", Name: "Bench Press", TargetMuscle: "Chest"}
	squat = domain.ExerciseRef{ID: "squat", Name: "Back Squat", TargetMuscle: "Legs"}
	row   = domain.ExerciseRef{ID: "row", Name: "Barbell Row", TargetMuscle: "Back"}
	curl  = domain.ExerciseRef{ID: "curl", Name: "Curl", TargetMuscle: "Arms"}
)

func draftOf(refs ...domain.ExerciseRef) *planner.Draft {
	d := planner.New("2025-07-29")
	for _, r := range refs {
		d.Add(r)
	}
	return d
}

func exerciseIDs(d *planner.Draft) []string {
	ids := make([]string, len(d.Exercises))
	for i, ex := range d.Exercises {
		ids[i] = ex.ExerciseID
	}
	return ids
}

func orders(d *planner.Draft) []int {
	o := make([]int, len(d.Exercises))
	for i, ex := range d.Exercises {
		o[i] = ex.Order
	}
	return o
}

func TestDraft_Add(t *testing.T) {
	d := draftOf(bench)

	require.Len(t, d.Exercises, 1)
	ex := d.Exercises[0]
	assert.Equal(t, "bench", ex.ExerciseID)
	assert.Equal(t, "Chest", ex.TargetMuscle)
	require.Len(t, ex.Sets, 3)
	for i, s := range ex.Sets {
		assert.Equal(t, i+1, s.SetNumber)
		assert.Equal(t, 8, s.Reps)
		assert.Zero(t, s.Weight)
		assert.Equal(t, "normal", s.IntensityType)
	}
}

func TestDraft_Remove_RenumbersOrder(t *testing.T) {
	for k := 0; k < 4; k++ {
		d := draftOf(bench, squat, row, curl)
		want := append([]string(nil), exerciseIDs(d)...)
		want = append(want[:k], want[k+1:]...)

		require.NoError(t, d.Remove(k))
		assert.Equal(t, want, exerciseIDs(d), "remove %d", k)
		assert.Equal(t, []int{0, 1, 2}, orders(d), "remove %d", k)
	}

	d := draftOf(bench)
	assert.ErrorIs(t, d.Remove(1), planner.ErrIndexOutOfRange)
	assert.ErrorIs(t, d.Remove(-1), planner.ErrIndexOutOfRange)
}

func TestDraft_SetCount_Grow(t *testing.T) {
	d := draftOf(bench)
	d.Exercises[0].Sets = []planner.SetConfig{
		{SetNumber: 1, Reps: 5, Weight: 100, IntensityType: "normal"},
		{SetNumber: 2, Reps: 6, Weight: 90, IntensityType: "normal"},
	}

	require.NoError(t, d.SetCount(0, 5))

	sets := d.Exercises[0].Sets
	require.Len(t, sets, 5)
	for i, s := range sets {
		assert.Equal(t, i+1, s.SetNumber)
	}
	// the two existing sets are untouched, new ones copy the first set
	assert.Equal(t, 6, sets[1].Reps)
	for _, s := range sets[2:] {
		assert.Equal(t, 5, s.Reps)
		assert.Equal(t, 100.0, s.Weight)
	}
}

func TestDraft_SetCount_Shrink(t *testing.T) {
	d := draftOf(bench)
	require.NoError(t, d.SetCount(0, 5))
	d.Exercises[0].Sets[0].Reps = 12

	require.NoError(t, d.SetCount(0, 2))

	sets := d.Exercises[0].Sets
	require.Len(t, sets, 2)
	assert.Equal(t, 1, sets[0].SetNumber)
	assert.Equal(t, 2, sets[1].SetNumber)
	assert.Equal(t, 12, sets[0].Reps)

	assert.ErrorIs(t, d.SetCount(0, 0), planner.ErrInvalidSetCount)
	assert.ErrorIs(t, d.SetCount(3, 2), planner.ErrIndexOutOfRange)
}

func TestDraft_SetCount_FromEmpty(t *testing.T) {
	d := draftOf(bench)
	d.Exercises[0].Sets = nil

	require.NoError(t, d.SetCount(0, 2))
	require.Len(t, d.Exercises[0].Sets, 2)
	assert.Equal(t, 8, d.Exercises[0].Sets[1].Reps)
}

func TestDraft_SetRepsAndWeightAll(t *testing.T) {
	d := draftOf(bench, squat)

	require.NoError(t, d.SetRepsAll(1, 5))
	require.NoError(t, d.SetWeightAll(1, 142.5))

	for _, s := range d.Exercises[1].Sets {
		assert.Equal(t, 5, s.Reps)
		assert.Equal(t, 142.5, s.Weight)
	}
	for _, s := range d.Exercises[0].Sets {
		assert.Equal(t, 8, s.Reps)
		assert.Zero(t, s.Weight)
	}

	assert.ErrorIs(t, d.SetRepsAll(0, -1), planner.ErrInvalidValue)
	assert.ErrorIs(t, d.SetWeightAll(0, -2.5), planner.ErrInvalidValue)
	assert.ErrorIs(t, d.SetWeightAll(0, math.NaN()), planner.ErrInvalidValue)
	assert.ErrorIs(t, d.SetWeightAll(0, math.Inf(1)), planner.ErrInvalidValue)
}

func TestDraft_Move(t *testing.T) {
	d := draftOf(bench, squat, row, curl)

	require.NoError(t, d.Move(0, 2))
	assert.Equal(t, []string{"squat", "row", "bench", "curl"}, exerciseIDs(d))
	assert.Equal(t, []int{0, 1, 2, 3}, orders(d))

	require.NoError(t, d.Move(3, 0))
	assert.Equal(t, []string{"curl", "squat", "row", "bench"}, exerciseIDs(d))
	assert.Equal(t, []int{0, 1, 2, 3}, orders(d))

	require.NoError(t, d.Move(1, 1))
	assert.Equal(t, []string{"curl", "squat", "row", "bench"}, exerciseIDs(d))

	assert.ErrorIs(t, d.Move(0, 4), planner.ErrIndexOutOfRange)
}

func TestDraft_Sync(t *testing.T) {
	d := draftOf(bench, squat, row)
	require.NoError(t, d.SetWeightAll(1, 100))

	d.Sync([]domain.ExerciseRef{squat, curl, bench})

	assert.Equal(t, []string{"bench", "squat", "curl"}, exerciseIDs(d))
	assert.Equal(t, []int{0, 1, 2}, orders(d))
	// kept exercises keep their configuration
	assert.Equal(t, 100.0, d.Exercises[1].Sets[0].Weight)
	assert.Len(t, d.Exercises[2].Sets, 3)

	d.Sync(nil)
	assert.Empty(t, d.Exercises)
}

func TestDraft_Normalize(t *testing.T) {
	d := &planner.Draft{
		Mode: planner.ModeNew,
		Date: "2025-07-29",
		Exercises: []planner.ExerciseConfig{
			{ExerciseID: "", Order: 7},
			{ExerciseID: "bench", Order: 4, Sets: []planner.SetConfig{{SetNumber: 9, Reps: 5, Weight: 80}}},
			{ExerciseID: "squat", Order: 2},
		},
	}

	require.NoError(t, d.Normalize())

	require.Len(t, d.Exercises, 2)
	assert.Equal(t, []int{0, 1}, orders(d))
	assert.Equal(t, 1, d.Exercises[0].Sets[0].SetNumber)
	assert.Equal(t, "normal", d.Exercises[0].Sets[0].IntensityType)
	require.Len(t, d.Exercises[1].Sets, 1)
	assert.Equal(t, 8, d.Exercises[1].Sets[0].Reps)
}

func TestDraft_Normalize_Rejects(t *testing.T) {
	empty := planner.New("2025-07-29")
	assert.ErrorIs(t, empty.Normalize(), planner.ErrEmptyDraft)

	noIDs := &planner.Draft{Exercises: []planner.ExerciseConfig{{Name: "ghost"}}}
	assert.ErrorIs(t, noIDs.Normalize(), planner.ErrEmptyDraft)

	negative := draftOf(bench)
	negative.Exercises[0].Sets[1].Reps = -3
	assert.ErrorIs(t, negative.Normalize(), planner.ErrInvalidValue)

	nan := draftOf(bench)
	nan.Exercises[0].Sets[2].Weight = math.NaN()
	assert.ErrorIs(t, nan.Normalize(), planner.ErrInvalidValue)
}

func TestDraft_WorkoutExercises(t *testing.T) {
	d := draftOf(bench, squat)
	require.NoError(t, d.SetCount(1, 2))
	d.Exercises[1].Sets[0].Reps = 5
	d.Exercises[1].Sets[0].Weight = 140

	rows := d.WorkoutExercises()

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[1].Order)
	assert.Equal(t, 2, rows[1].SetsCount)
	assert.Equal(t, 5, rows[1].Reps)
	assert.Equal(t, 140.0, rows[1].Weight)
	require.Len(t, rows[1].Sets, 2)
	assert.Equal(t, 2, rows[1].Sets[1].SetNumber)
	require.NotNil(t, rows[0].Exercise)
	assert.Equal(t, "Bench Press", rows[0].Exercise.Name)
}

func TestDraft_TemplateExercises(t *testing.T) {
	d := draftOf(bench, squat)
	require.NoError(t, d.SetCount(0, 5))
	require.NoError(t, d.SetRepsAll(0, 3))

	rows := d.TemplateExercises()

	require.Len(t, rows, 2)
	assert.Equal(t, domain.Target(5), rows[0].Sets)
	assert.Equal(t, domain.Target(3), rows[0].Reps)
	assert.Equal(t, 0, rows[0].Order)
	assert.Equal(t, domain.Target(3), rows[1].Sets)
	assert.Equal(t, domain.Target(8), rows[1].Reps)
	assert.Equal(t, 1, rows[1].Order)
}

func TestMode(t *testing.T) {
	assert.True(t, planner.ModeEditTemplate.Reconciles())
	assert.True(t, planner.ModeImportWorkout.Reconciles())
	assert.False(t, planner.ModeImportTemplate.Reconciles())
	assert.False(t, planner.ModeNew.Reconciles())
	assert.False(t, planner.Mode("bogus").Valid())
}
