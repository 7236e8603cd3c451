package planner_test

import (
	"testing"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTemplate(t *testing.T) {
	tmpl := &domain.Template{
		ID:   "tmpl-1",
		Name: "Push",
		Exercises: []domain.TemplateExercise{
			{ExerciseID: "squat", Sets: domain.Target(3), Reps: domain.Target(8), Order: 1, Exercise: &squat},
			{ExerciseID: "bench", Sets: domain.Target(3), Reps: domain.Target(8), Order: 0, Exercise: &bench},
		},
	}

	d := planner.FromTemplate(tmpl, planner.ModeImportTemplate, "2025-07-29")

	assert.Equal(t, planner.ModeImportTemplate, d.Mode)
	assert.Equal(t, "tmpl-1", d.SourceID)
	assert.Equal(t, domain.Date("2025-07-29"), d.Date)
	require.Len(t, d.Exercises, 2)
	assert.Equal(t, []string{"bench", "squat"}, exerciseIDs(d))
	for _, ex := range d.Exercises {
		require.Len(t, ex.Sets, 3)
		for i, s := range ex.Sets {
			assert.Equal(t, i+1, s.SetNumber)
			assert.Equal(t, 8, s.Reps)
			assert.Zero(t, s.Weight)
		}
	}
	assert.Equal(t, "Bench Press", d.Exercises[0].Name)
	// the template itself is not reordered
	assert.Equal(t, "squat", tmpl.Exercises[0].ExerciseID)
}

func TestFromTemplate_Defaults(t *testing.T) {
	tmpl := &domain.Template{ID: "t", Exercises: []domain.TemplateExercise{{ExerciseID: "curl"}}}

	d := planner.FromTemplate(tmpl, planner.ModeEditTemplate, "2025-07-29")

	require.Len(t, d.Exercises, 1)
	require.Len(t, d.Exercises[0].Sets, 3)
	assert.Equal(t, 8, d.Exercises[0].Sets[0].Reps)
	assert.Empty(t, d.Exercises[0].Name)
}

func TestFromTemplate_KeepsStoredZeros(t *testing.T) {
	tmpl := &domain.Template{ID: "t", Exercises: []domain.TemplateExercise{
		{ExerciseID: "curl", Sets: domain.Target(0), Order: 0},
		{ExerciseID: "plank", Sets: domain.Target(2), Reps: domain.Target(0), Order: 1},
	}}

	d := planner.FromTemplate(tmpl, planner.ModeImportTemplate, "2025-07-29")

	require.Len(t, d.Exercises, 2)
	assert.Empty(t, d.Exercises[0].Sets)
	require.Len(t, d.Exercises[1].Sets, 2)
	assert.Zero(t, d.Exercises[1].Sets[0].Reps)
	assert.Zero(t, d.Exercises[1].Sets[1].Reps)
}

func TestFromWorkout(t *testing.T) {
	w := &domain.Workout{
		ID:   "w-1",
		Date: "2025-07-20",
		Exercises: []domain.WorkoutExercise{
			{ExerciseID: "squat", Order: 1, Exercise: &squat},
			{ExerciseID: "bench", Order: 0, Exercise: &bench, Sets: []domain.WorkoutSet{
				{SetNumber: 2, Reps: 6, Weight: 110, IntensityType: "drop"},
				{SetNumber: 1, Reps: 8, Weight: 100, Notes: "easy"},
			}},
		},
	}

	d := planner.FromWorkout(w)

	assert.Equal(t, planner.ModeImportWorkout, d.Mode)
	assert.Equal(t, "w-1", d.SourceID)
	assert.Equal(t, domain.Date("2025-07-20"), d.Date)
	require.Len(t, d.Exercises, 2)

	benchSets := d.Exercises[0].Sets
	require.Len(t, benchSets, 2)
	assert.Equal(t, planner.SetConfig{SetNumber: 1, Reps: 8, Weight: 100, IntensityType: "normal", Notes: "easy"}, benchSets[0])
	assert.Equal(t, planner.SetConfig{SetNumber: 2, Reps: 6, Weight: 110, IntensityType: "drop"}, benchSets[1])

	squatSets := d.Exercises[1].Sets
	require.Len(t, squatSets, 1)
	assert.Equal(t, planner.SetConfig{SetNumber: 1, Reps: 8, IntensityType: "normal"}, squatSets[0])
}
