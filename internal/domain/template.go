// internal/domain/template.go
package domain

import "time"

// Defaults used when a template row or planner set carries no explicit value.
const (
	DefaultTemplateSets = 3
	DefaultTemplateReps = 8
)

// Template is a reusable, date-less blueprint used to seed new workouts.
type Template struct {
	ID              string             `bson:"_id" json:"id"`
	UserID          string             `bson:"userId" json:"userId"`
	Name            string             `bson:"name" json:"name"`
	SourceWorkoutID *string            `bson:"sourceWorkoutId,omitempty" json:"sourceWorkoutId,omitempty"` // set when generated from a workout
	Exercises       []TemplateExercise `bson:"-" json:"exercises"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// TemplateExercise is the flattened per-exercise configuration of a template:
// a set count and one rep target instead of per-set rows. Either target may
// be missing from stored rows.
type TemplateExercise struct {
	ID         string       `bson:"_id" json:"id"`
	TemplateID string       `bson:"templateId" json:"templateId"`
	ExerciseID string       `bson:"exerciseId" json:"exerciseId"`
	Sets       *int         `bson:"sets" json:"sets"`
	Reps       *int         `bson:"reps" json:"reps"`
	Order      int          `bson:"order" json:"order"`
	Exercise   *ExerciseRef `bson:"-" json:"exercise"`
}

// Targets returns the set count and rep target. Missing values fall back to
// DefaultTemplateSets and DefaultTemplateReps; a stored zero stays zero.
func (te TemplateExercise) Targets() (sets, reps int) {
	sets, reps = DefaultTemplateSets, DefaultTemplateReps
	if te.Sets != nil {
		sets = *te.Sets
	}
	if te.Reps != nil {
		reps = *te.Reps
	}
	return sets, reps
}

// Target returns a template target holding n.
func Target(n int) *int {
	return &n
}

// Clone copies the row so it shares no targets with te.
func (te TemplateExercise) Clone() TemplateExercise {
	if te.Sets != nil {
		te.Sets = Target(*te.Sets)
	}
	if te.Reps != nil {
		te.Reps = Target(*te.Reps)
	}
	return te
}

// FlattenWorkout turns a workout's exercises into template rows: the set
// count is the number of sets and the rep target is the first set's reps.
// Exercises without sets get the template defaults.
func FlattenWorkout(exercises []WorkoutExercise) []TemplateExercise {
	rows := make([]TemplateExercise, 0, len(exercises))
	for _, we := range exercises {
		sets, reps := len(we.Sets), DefaultTemplateReps
		if sets > 0 {
			reps = we.Sets[0].Reps
		} else {
			sets = DefaultTemplateSets
		}
		rows = append(rows, TemplateExercise{
			ExerciseID: we.ExerciseID,
			Sets:       Target(sets),
			Reps:       Target(reps),
			Order:      we.Order,
			Exercise:   we.Exercise,
		})
	}
	return rows
}
