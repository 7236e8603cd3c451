// internal/domain/exercise.go
package domain

import "time"

// Exercise represents a single movement definition in the catalog.
// Global entries have no owner; custom entries belong to the user who added them.
type Exercise struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	TargetMuscle string    `bson:"targetMuscle" json:"targetMuscle"` // e.g., "Chest", "Legs", "Back"
	IsCustom     bool      `bson:"isCustom" json:"isCustom"`
	UserID       *string   `bson:"userId,omitempty" json:"userId,omitempty"` // nil for the shared catalog
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// ExerciseRef is the slice of an Exercise embedded into workout and template rows.
type ExerciseRef struct {
	ID           string `bson:"_id" json:"id"`
	Name         string `bson:"name" json:"name"`
	TargetMuscle string `bson:"targetMuscle" json:"targetMuscle"`
}

// Ref returns the embeddable view of the exercise.
func (e *Exercise) Ref() ExerciseRef {
	return ExerciseRef{ID: e.ID, Name: e.Name, TargetMuscle: e.TargetMuscle}
}

// VisibleTo reports whether the exercise belongs to the shared catalog or to userID.
func (e *Exercise) VisibleTo(userID string) bool {
	return e.UserID == nil || *e.UserID == userID
}
