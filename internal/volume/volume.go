// Package volume computes training volume (reps × weight) from loaded
// workouts. Nothing here is stored; every figure is recomputed per request.
package volume

import (
	"sort"

	"alcyxob/liftlog/internal/domain"
)

// AllMuscles selects every muscle group in ByDate.
const AllMuscles = "all"

// UnknownMuscle groups exercises whose catalog entry is missing.
const UnknownMuscle = "Unknown"

// Point is the volume trained on one date.
type Point struct {
	Date   domain.Date `json:"date"`
	Volume float64     `json:"volume"`
}

// ExerciseSummary is the recap line of one exercise.
type ExerciseSummary struct {
	ExerciseID   string  `json:"exerciseId"`
	Name         string  `json:"name"`
	TargetMuscle string  `json:"targetMuscle"`
	Sets         int     `json:"sets"`
	Volume       float64 `json:"volume"`
}

// WorkoutSummary is the per-workout volume breakdown.
type WorkoutSummary struct {
	WorkoutID string             `json:"workoutId"`
	Date      domain.Date        `json:"date"`
	Total     float64            `json:"total"`
	Exercises []ExerciseSummary  `json:"exercises"`
	ByMuscle  map[string]float64 `json:"byMuscle"`
}

// SetVolume is Σ reps × weight over sets.
func SetVolume(sets []domain.WorkoutSet) float64 {
	var total float64
	for _, s := range sets {
		total += float64(s.Reps) * s.Weight
	}
	return total
}

// ExerciseVolume sums the exercise's set rows. Exercises saved without set
// rows fall back to their summary fields.
func ExerciseVolume(we domain.WorkoutExercise) float64 {
	if len(we.Sets) == 0 {
		return float64(we.SetsCount) * float64(we.Reps) * we.Weight
	}
	return SetVolume(we.Sets)
}

// Muscle returns the exercise's target muscle, or UnknownMuscle.
func Muscle(we domain.WorkoutExercise) string {
	if we.Exercise == nil || we.Exercise.TargetMuscle == "" {
		return UnknownMuscle
	}
	return we.Exercise.TargetMuscle
}

// ByMuscle accumulates exercise volume per target muscle.
func ByMuscle(exercises []domain.WorkoutExercise) map[string]float64 {
	out := make(map[string]float64)
	for _, we := range exercises {
		out[Muscle(we)] += ExerciseVolume(we)
	}
	return out
}

// ByDate charts volume over time, ordered by date. Workouts on the same date
// accumulate into one point. muscle filters exercises by target muscle; empty
// or AllMuscles keeps every exercise. A date whose exercises are all filtered
// out still gets a zero point.
func ByDate(workouts []domain.Workout, muscle string) []Point {
	all := muscle == "" || muscle == AllMuscles
	totals := make(map[domain.Date]float64)
	for _, w := range workouts {
		total := totals[w.Date]
		for _, we := range w.Exercises {
			if all || Muscle(we) == muscle {
				total += ExerciseVolume(we)
			}
		}
		totals[w.Date] = total
	}

	points := make([]Point, 0, len(totals))
	for date, v := range totals {
		points = append(points, Point{Date: date, Volume: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// MuscleGroups lists the distinct target muscles trained, sorted.
func MuscleGroups(workouts []domain.Workout) []string {
	seen := make(map[string]struct{})
	for _, w := range workouts {
		for _, we := range w.Exercises {
			seen[Muscle(we)] = struct{}{}
		}
	}
	groups := make([]string, 0, len(seen))
	for m := range seen {
		groups = append(groups, m)
	}
	sort.Strings(groups)
	return groups
}

// Summary breaks one workout's volume down per exercise and per muscle.
func Summary(w *domain.Workout) WorkoutSummary {
	s := WorkoutSummary{
		WorkoutID: w.ID,
		Date:      w.Date,
		Exercises: make([]ExerciseSummary, 0, len(w.Exercises)),
		ByMuscle:  ByMuscle(w.Exercises),
	}
	for _, we := range w.Exercises {
		line := ExerciseSummary{
			ExerciseID:   we.ExerciseID,
			TargetMuscle: Muscle(we),
			Sets:         len(we.Sets),
			Volume:       ExerciseVolume(we),
		}
		if len(we.Sets) == 0 {
			line.Sets = we.SetsCount
		}
		if we.Exercise != nil {
			line.Name = we.Exercise.Name
		}
		s.Total += line.Volume
		s.Exercises = append(s.Exercises, line)
	}
	return s
}
