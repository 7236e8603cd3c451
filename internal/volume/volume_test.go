package volume_test

import (
	"testing"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/volume"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lift(muscle string, sets ...domain.WorkoutSet) domain.WorkoutExercise {
	return domain.WorkoutExercise{
		ExerciseID: muscle + "-lift",
		Exercise:   &domain.ExerciseRef{ID: muscle + "-lift", Name: muscle + " lift", TargetMuscle: muscle},
		Sets:       sets,
	}
}

func set(reps int, weight float64) domain.WorkoutSet {
	return domain.WorkoutSet{Reps: reps, Weight: weight}
}

func TestExerciseVolume(t *testing.T) {
	we := lift("Chest", set(8, 100), set(8, 100), set(6, 110))
	assert.Equal(t, 2260.0, volume.ExerciseVolume(we))

	assert.Zero(t, volume.ExerciseVolume(lift("Chest")))

	legacy := domain.WorkoutExercise{SetsCount: 3, Reps: 5, Weight: 20}
	assert.Equal(t, 300.0, volume.ExerciseVolume(legacy))
}

func TestByMuscle(t *testing.T) {
	exercises := []domain.WorkoutExercise{
		lift("Chest", set(8, 100), set(8, 100), set(6, 110)),
		lift("Chest", set(10, 50)),
		lift("Back", set(5, 10)),
		{Sets: []domain.WorkoutSet{set(1, 1)}},
	}

	assert.Equal(t, map[string]float64{"Chest": 2760, "Back": 50, volume.UnknownMuscle: 1}, volume.ByMuscle(exercises))
}

func TestByDate(t *testing.T) {
	workouts := []domain.Workout{
		{Date: "2025-07-03", Exercises: []domain.WorkoutExercise{lift("Legs", set(5, 100))}},
		{Date: "2025-07-01", Exercises: []domain.WorkoutExercise{lift("Chest", set(10, 50)), lift("Legs", set(5, 10))}},
		{Date: "2025-07-03", Exercises: []domain.WorkoutExercise{lift("Chest", set(1, 60))}},
	}

	assert.Equal(t, []volume.Point{
		{Date: "2025-07-01", Volume: 550},
		{Date: "2025-07-03", Volume: 560},
	}, volume.ByDate(workouts, volume.AllMuscles))
	assert.Equal(t, volume.ByDate(workouts, volume.AllMuscles), volume.ByDate(workouts, ""))

	assert.Equal(t, []volume.Point{
		{Date: "2025-07-01", Volume: 500},
		{Date: "2025-07-03", Volume: 60},
	}, volume.ByDate(workouts, "Chest"))

	assert.Empty(t, volume.ByDate(nil, "Chest"))
}

func TestMuscleGroups(t *testing.T) {
	workouts := []domain.Workout{
		{Exercises: []domain.WorkoutExercise{lift("Legs"), lift("Chest")}},
		{Exercises: []domain.WorkoutExercise{lift("Chest"), lift("Back")}},
	}
	assert.Equal(t, []string{"Back", "Chest", "Legs"}, volume.MuscleGroups(workouts))
}

func TestSummary(t *testing.T) {
	w := &domain.Workout{
		ID:   "w1",
		Date: "2025-07-29",
		Exercises: []domain.WorkoutExercise{
			lift("Chest", set(8, 100), set(8, 100), set(6, 110)),
			lift("Back", set(10, 40)),
		},
	}

	s := volume.Summary(w)

	assert.Equal(t, "w1", s.WorkoutID)
	assert.Equal(t, 2660.0, s.Total)
	require.Len(t, s.Exercises, 2)
	assert.Equal(t, volume.ExerciseSummary{
		ExerciseID:   "Chest-lift",
		Name:         "Chest lift",
		TargetMuscle: "Chest",
		Sets:         3,
		Volume:       2260,
	}, s.Exercises[0])
	assert.Equal(t, map[string]float64{"Chest": 2260, "Back": 400}, s.ByMuscle)
}
