package domain

import (
	"sort"
	"time"
)

// WorkoutStatus tracks whether a workout has been performed.
type WorkoutStatus string

const (
	StatusScheduled WorkoutStatus = "scheduled"
	StatusCompleted WorkoutStatus = "completed"
)

// DefaultIntensityType is stored for sets that carry no intensity tag.
const DefaultIntensityType = "normal"

// Valid reports whether s is one of the known statuses.
func (s WorkoutStatus) Valid() bool {
	return s == StatusScheduled || s == StatusCompleted
}

// Workout is a dated training session with an ordered list of exercises.
type Workout struct {
	ID         string            `bson:"_id" json:"id"`
	UserID     string            `bson:"userId" json:"userId"`
	Date       Date              `bson:"date" json:"date"`
	Status     WorkoutStatus     `bson:"status,omitempty" json:"status"` // empty when never set
	TemplateID *string           `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Exercises  []WorkoutExercise `bson:"-" json:"exercises"`
	CreatedAt  time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise places a catalog exercise into a workout.
// SetsCount, Reps and Weight are summary copies of the set list taken at commit time.
type WorkoutExercise struct {
	ID         string       `bson:"_id" json:"id"`
	WorkoutID  string       `bson:"workoutId" json:"workoutId"`
	ExerciseID string       `bson:"exerciseId" json:"exerciseId"`
	Order      int          `bson:"order" json:"order"`
	SetsCount  int          `bson:"sets" json:"setsCount"`
	Reps       int          `bson:"reps" json:"reps"`
	Weight     float64      `bson:"weight" json:"weight"`
	Exercise   *ExerciseRef `bson:"-" json:"exercise"`
	Sets       []WorkoutSet `bson:"-" json:"sets"`
}

// WorkoutSet is one performed unit of an exercise.
type WorkoutSet struct {
	ID                string  `bson:"_id" json:"id"`
	WorkoutExerciseID string  `bson:"workoutExerciseId" json:"workoutExerciseId"`
	SetNumber         int     `bson:"setNumber" json:"setNumber"`
	Reps              int     `bson:"reps" json:"reps"`
	Weight            float64 `bson:"weight" json:"weight"`
	IntensityType     string  `bson:"intensityType" json:"intensityType"`
	Notes             string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ResolveStatus returns the stored status, or infers one from the date when
// none was stored: today and later is scheduled, anything earlier completed.
func ResolveStatus(stored WorkoutStatus, date, today Date) WorkoutStatus {
	if stored != "" {
		return stored
	}
	if date.Before(today) {
		return StatusCompleted
	}
	return StatusScheduled
}

// ApplyDefaults fills the status from the date and sorts exercises and sets
// into performance order.
func (w *Workout) ApplyDefaults(today Date) {
	w.Status = ResolveStatus(w.Status, w.Date, today)
	SortExercises(w.Exercises)
	for i := range w.Exercises {
		SortSets(w.Exercises[i].Sets)
		for j := range w.Exercises[i].Sets {
			if w.Exercises[i].Sets[j].IntensityType == "" {
				w.Exercises[i].Sets[j].IntensityType = DefaultIntensityType
			}
		}
	}
}

// SortExercises orders exercises by Order, keeping insertion order for ties.
func SortExercises(exercises []WorkoutExercise) {
	sort.SliceStable(exercises, func(i, j int) bool {
		return exercises[i].Order < exercises[j].Order
	})
}

// SortSets orders sets by SetNumber.
func SortSets(sets []WorkoutSet) {
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].SetNumber < sets[j].SetNumber
	})
}

// Summarize copies the set list into the denormalized summary fields.
func (we *WorkoutExercise) Summarize() {
	we.SetsCount = len(we.Sets)
	we.Reps = 0
	we.Weight = 0
	if len(we.Sets) > 0 {
		we.Reps = we.Sets[0].Reps
		we.Weight = we.Sets[0].Weight
	}
}

// AllSets flattens the workout's sets in performance order.
func (w *Workout) AllSets() []WorkoutSet {
	var sets []WorkoutSet
	for _, ex := range w.Exercises {
		sets = append(sets, ex.Sets...)
	}
	return sets
}
