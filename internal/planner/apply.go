package planner

import (
	"errors"
	"fmt"

	"alcyxob/liftlog/internal/domain"
)

var ErrUnknownOp = errors.New("unknown draft operation")

// OpType names one editing step of the plan builder.
type OpType string

const (
	OpAdd       OpType = "add"
	OpRemove    OpType = "remove"
	OpSetCount  OpType = "set_count"
	OpSetReps   OpType = "set_reps"
	OpSetWeight OpType = "set_weight"
	OpMove      OpType = "move"
	OpSync      OpType = "sync"
	OpNormalize OpType = "normalize"
)

// Op is a serializable edit. Only the fields its Type reads are used.
type Op struct {
	Type      OpType               `json:"type"`
	Index     int                  `json:"index"`
	To        int                  `json:"to"`
	Count     int                  `json:"count"`
	Reps      int                  `json:"reps"`
	Weight    float64              `json:"weight"`
	Exercise  *domain.ExerciseRef  `json:"exercise,omitempty"`
	Selection []domain.ExerciseRef `json:"selection,omitempty"`
}

// Apply runs op against d.
func (d *Draft) Apply(op Op) error {
	switch op.Type {
	case OpAdd:
		if op.Exercise == nil || op.Exercise.ID == "" {
			return fmt.Errorf("%w: add needs an exercise", ErrUnknownOp)
		}
		d.Add(*op.Exercise)
		return nil
	case OpRemove:
		return d.Remove(op.Index)
	case OpSetCount:
		return d.SetCount(op.Index, op.Count)
	case OpSetReps:
		return d.SetRepsAll(op.Index, op.Reps)
	case OpSetWeight:
		return d.SetWeightAll(op.Index, op.Weight)
	case OpMove:
		return d.Move(op.Index, op.To)
	case OpSync:
		d.Sync(op.Selection)
		return nil
	case OpNormalize:
		return d.Normalize()
	}
	return fmt.Errorf("%w: %q", ErrUnknownOp, op.Type)
}
