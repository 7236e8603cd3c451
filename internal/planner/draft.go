// Package planner holds the editable working state of the plan builder: an
// ordered list of exercise configurations that is later committed as a
// workout or as a template.
package planner

import (
	"errors"
	"fmt"
	"math"

	"alcyxob/liftlog/internal/domain"
)

var (
	ErrIndexOutOfRange = errors.New("exercise index out of range")
	ErrInvalidSetCount = errors.New("set count must be at least 1")
	ErrInvalidValue    = errors.New("reps and weight must be finite and not negative")
	ErrEmptyDraft      = errors.New("add at least one exercise")
)

// Mode records where a draft came from, which decides how it is committed.
type Mode string

const (
	ModeNew            Mode = "new"
	ModeImportTemplate Mode = "import_template"
	ModeImportWorkout  Mode = "import_workout"
	ModeEditTemplate   Mode = "edit_template"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeNew, ModeImportTemplate, ModeImportWorkout, ModeEditTemplate:
		return true
	}
	return false
}

// Reconciles reports whether drafts of this mode are reconciled against the
// live exercise selection before they are saved. Imported templates are
// saved exactly as imported.
func (m Mode) Reconciles() bool {
	return m == ModeImportWorkout || m == ModeEditTemplate
}

// SetConfig is one planned set.
type SetConfig struct {
	SetNumber     int     `json:"setNumber"`
	Reps          int     `json:"reps"`
	Weight        float64 `json:"weight"`
	IntensityType string  `json:"intensityType"`
	Notes         string  `json:"notes,omitempty"`
}

// ExerciseConfig is one exercise of the draft with its per-set plan.
type ExerciseConfig struct {
	ExerciseID   string      `json:"exerciseId"`
	Name         string      `json:"name"`
	TargetMuscle string      `json:"targetMuscle"`
	Order        int         `json:"order"`
	Sets         []SetConfig `json:"sets"`
}

// Draft is the plan builder's working state.
type Draft struct {
	Mode      Mode             `json:"mode"`
	SourceID  string           `json:"sourceId,omitempty"` // template or workout the draft was imported from
	Date      domain.Date      `json:"date"`
	Exercises []ExerciseConfig `json:"exercises"`
}

// New returns an empty draft for date.
func New(date domain.Date) *Draft {
	return &Draft{Mode: ModeNew, Date: date, Exercises: []ExerciseConfig{}}
}

func defaultSet(n int) SetConfig {
	return SetConfig{
		SetNumber:     n,
		Reps:          domain.DefaultTemplateReps,
		IntensityType: domain.DefaultIntensityType,
	}
}

// DefaultSets returns the sets a newly added exercise starts with.
func DefaultSets() []SetConfig {
	sets := make([]SetConfig, domain.DefaultTemplateSets)
	for i := range sets {
		sets[i] = defaultSet(i + 1)
	}
	return sets
}

// Add appends an exercise with the default sets.
func (d *Draft) Add(ref domain.ExerciseRef) {
	d.Exercises = append(d.Exercises, ExerciseConfig{
		ExerciseID:   ref.ID,
		Name:         ref.Name,
		TargetMuscle: ref.TargetMuscle,
		Order:        len(d.Exercises),
		Sets:         DefaultSets(),
	})
}

// Remove drops the exercise at index i and renumbers the rest.
func (d *Draft) Remove(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.Exercises = append(d.Exercises[:i:i], d.Exercises[i+1:]...)
	d.renumber()
	return nil
}

// SetCount grows or shrinks the set list of exercise i to k sets. New sets
// copy the reps and weight of the first set.
func (d *Draft) SetCount(i, k int) error {
	if err := d.check(i); err != nil {
		return err
	}
	if k < 1 {
		return ErrInvalidSetCount
	}

	ex := &d.Exercises[i]
	if k <= len(ex.Sets) {
		ex.Sets = ex.Sets[:k]
	} else {
		template := defaultSet(0)
		if len(ex.Sets) > 0 {
			template.Reps = ex.Sets[0].Reps
			template.Weight = ex.Sets[0].Weight
		}
		for len(ex.Sets) < k {
			ex.Sets = append(ex.Sets, template)
		}
	}
	renumberSets(ex.Sets)
	return nil
}

// SetRepsAll overwrites the reps of every set of exercise i.
func (d *Draft) SetRepsAll(i, reps int) error {
	if err := d.check(i); err != nil {
		return err
	}
	if reps < 0 {
		return ErrInvalidValue
	}
	for j := range d.Exercises[i].Sets {
		d.Exercises[i].Sets[j].Reps = reps
	}
	return nil
}

// SetWeightAll overwrites the weight of every set of exercise i.
func (d *Draft) SetWeightAll(i int, weight float64) error {
	if err := d.check(i); err != nil {
		return err
	}
	if !validWeight(weight) {
		return ErrInvalidValue
	}
	for j := range d.Exercises[i].Sets {
		d.Exercises[i].Sets[j].Weight = weight
	}
	return nil
}

// Move relocates the exercise at from to position to and renumbers.
func (d *Draft) Move(from, to int) error {
	if err := d.check(from); err != nil {
		return err
	}
	if err := d.check(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	moved := d.Exercises[from]
	rest := append(d.Exercises[:from:from], d.Exercises[from+1:]...)
	d.Exercises = append(rest[:to:to], append([]ExerciseConfig{moved}, rest[to:]...)...)
	d.renumber()
	return nil
}

// Sync reconciles the draft with the exercises currently selected: configs
// of deselected exercises are dropped, newly selected ones are appended with
// default sets.
func (d *Draft) Sync(selection []domain.ExerciseRef) {
	selected := make(map[string]bool, len(selection))
	for _, ref := range selection {
		selected[ref.ID] = true
	}

	kept := d.Exercises[:0:0]
	present := make(map[string]bool, len(d.Exercises))
	for _, ex := range d.Exercises {
		if selected[ex.ExerciseID] {
			kept = append(kept, ex)
			present[ex.ExerciseID] = true
		}
	}
	d.Exercises = kept

	for _, ref := range selection {
		if present[ref.ID] {
			continue
		}
		present[ref.ID] = true
		d.Add(ref)
	}
	d.renumber()
}

// Normalize prepares the draft for commit. Exercises without an id are
// dropped, empty set lists get one default set, numbering is made
// contiguous and every value is validated.
func (d *Draft) Normalize() error {
	valid := d.Exercises[:0:0]
	for _, ex := range d.Exercises {
		if ex.ExerciseID != "" {
			valid = append(valid, ex)
		}
	}
	if len(valid) == 0 {
		return ErrEmptyDraft
	}

	for i := range valid {
		ex := &valid[i]
		if len(ex.Sets) == 0 {
			ex.Sets = []SetConfig{defaultSet(1)}
		}
		for j := range ex.Sets {
			set := &ex.Sets[j]
			if set.Reps < 0 || !validWeight(set.Weight) {
				return fmt.Errorf("%w: exercise %d set %d", ErrInvalidValue, i+1, j+1)
			}
			if set.IntensityType == "" {
				set.IntensityType = domain.DefaultIntensityType
			}
		}
	}

	d.Exercises = valid
	d.renumber()
	return nil
}

// WorkoutExercises converts the draft into workout rows, summary fields included.
func (d *Draft) WorkoutExercises() []domain.WorkoutExercise {
	rows := make([]domain.WorkoutExercise, 0, len(d.Exercises))
	for _, ex := range d.Exercises {
		we := domain.WorkoutExercise{
			ExerciseID: ex.ExerciseID,
			Order:      ex.Order,
			Exercise:   &domain.ExerciseRef{ID: ex.ExerciseID, Name: ex.Name, TargetMuscle: ex.TargetMuscle},
			Sets:       make([]domain.WorkoutSet, 0, len(ex.Sets)),
		}
		for _, s := range ex.Sets {
			we.Sets = append(we.Sets, domain.WorkoutSet{
				SetNumber:     s.SetNumber,
				Reps:          s.Reps,
				Weight:        s.Weight,
				IntensityType: s.IntensityType,
				Notes:         s.Notes,
			})
		}
		we.Summarize()
		rows = append(rows, we)
	}
	return rows
}

// TemplateExercises flattens the draft into template rows.
func (d *Draft) TemplateExercises() []domain.TemplateExercise {
	rows := make([]domain.TemplateExercise, 0, len(d.Exercises))
	for i, ex := range d.Exercises {
		reps := domain.DefaultTemplateReps
		if len(ex.Sets) > 0 {
			reps = ex.Sets[0].Reps
		}
		rows = append(rows, domain.TemplateExercise{
			ExerciseID: ex.ExerciseID,
			Sets:       domain.Target(len(ex.Sets)),
			Reps:       domain.Target(reps),
			Order:      i,
			Exercise:   &domain.ExerciseRef{ID: ex.ExerciseID, Name: ex.Name, TargetMuscle: ex.TargetMuscle},
		})
	}
	return rows
}

func (d *Draft) check(i int) error {
	if i < 0 || i >= len(d.Exercises) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return nil
}

func (d *Draft) renumber() {
	for i := range d.Exercises {
		d.Exercises[i].Order = i
		renumberSets(d.Exercises[i].Sets)
	}
}

func renumberSets(sets []SetConfig) {
	for i := range sets {
		sets[i].SetNumber = i + 1
	}
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsNaN(w) && !math.IsInf(w, 0)
}
