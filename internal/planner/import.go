package planner

import (
	"sort"

	"alcyxob/liftlog/internal/domain"
)

// FromTemplate expands a template's flat set/rep configuration into per-set
// rows with zero weight. Targets missing from a row take the template
// defaults. Mode is either ModeImportTemplate or ModeEditTemplate.
func FromTemplate(t *domain.Template, mode Mode, date domain.Date) *Draft {
	rows := append([]domain.TemplateExercise(nil), t.Exercises...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Order < rows[j].Order })

	d := &Draft{Mode: mode, SourceID: t.ID, Date: date, Exercises: make([]ExerciseConfig, 0, len(rows))}
	for _, row := range rows {
		count, reps := row.Targets()
		sets := make([]SetConfig, count)
		for i := range sets {
			sets[i] = SetConfig{SetNumber: i + 1, Reps: reps, IntensityType: domain.DefaultIntensityType}
		}
		d.Exercises = append(d.Exercises, newConfig(row.ExerciseID, row.Exercise, sets))
	}
	d.renumber()
	return d
}

// FromWorkout copies a workout's per-set rows for re-editing. Exercises that
// have no sets get a single default set.
func FromWorkout(w *domain.Workout) *Draft {
	exercises := append([]domain.WorkoutExercise(nil), w.Exercises...)
	domain.SortExercises(exercises)

	d := &Draft{Mode: ModeImportWorkout, SourceID: w.ID, Date: w.Date, Exercises: make([]ExerciseConfig, 0, len(exercises))}
	for _, we := range exercises {
		src := append([]domain.WorkoutSet(nil), we.Sets...)
		domain.SortSets(src)

		var sets []SetConfig
		if len(src) == 0 {
			sets = []SetConfig{defaultSet(1)}
		}
		for _, s := range src {
			intensity := s.IntensityType
			if intensity == "" {
				intensity = domain.DefaultIntensityType
			}
			sets = append(sets, SetConfig{
				Reps:          s.Reps,
				Weight:        s.Weight,
				IntensityType: intensity,
				Notes:         s.Notes,
			})
		}
		d.Exercises = append(d.Exercises, newConfig(we.ExerciseID, we.Exercise, sets))
	}
	d.renumber()
	return d
}

func newConfig(exerciseID string, ref *domain.ExerciseRef, sets []SetConfig) ExerciseConfig {
	cfg := ExerciseConfig{ExerciseID: exerciseID, Sets: sets}
	if ref != nil {
		cfg.Name = ref.Name
		cfg.TargetMuscle = ref.TargetMuscle
	}
	return cfg
}
