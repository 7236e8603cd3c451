package service

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/metrics"
	"alcyxob/liftlog/internal/planner"
	"alcyxob/liftlog/internal/repository"

	log "github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrAmbiguousImport  = errors.New("only one of importTemplate, importWorkout and editTemplate may be given")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidMode      = errors.New("unknown draft mode")
	ErrMissingSource    = errors.New("draft mode requires a source id")
)

// DraftSource carries the plan builder's import parameters. At most one is set.
type DraftSource struct {
	ImportTemplate string
	ImportWorkout  string
	EditTemplate   string
}

// CommitRequest is a finished draft. Selection, when not nil, lists the
// exercise ids selected in the builder at commit time.
type CommitRequest struct {
	Draft     planner.Draft `json:"draft"`
	Selection []string      `json:"selection"`
}

// CommitResult names what was written and where the client goes next.
type CommitResult struct {
	WorkoutID  string `json:"workoutId,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
	Redirect   string `json:"redirect"`
}

type PlanService interface {
	// Draft builds the initial builder state for the given import parameters.
	Draft(ctx context.Context, userID string, src DraftSource) (*planner.Draft, error)
	// Apply runs one builder edit on draft. Exercise refs in op are replaced
	// by the catalog's own entries.
	Apply(ctx context.Context, userID string, draft planner.Draft, op planner.Op) (*planner.Draft, error)
	Commit(ctx context.Context, userID string, req CommitRequest) (*CommitResult, error)
}

type planService struct {
	workoutRepo  repository.WorkoutRepository
	templateRepo repository.TemplateRepository
	exercises    ExerciseService
	metrics      *metrics.Manager
	today        Clock
}

func NewPlanService(
	workoutRepo repository.WorkoutRepository,
	templateRepo repository.TemplateRepository,
	exercises ExerciseService,
	metricsManager *metrics.Manager,
	today Clock,
) PlanService {
	return &planService{
		workoutRepo:  workoutRepo,
		templateRepo: templateRepo,
		exercises:    exercises,
		metrics:      metricsManager,
		today:        today,
	}
}

func (s *planService) Draft(ctx context.Context, userID string, src DraftSource) (*planner.Draft, error) {
	given := 0
	for _, v := range []string{src.ImportTemplate, src.ImportWorkout, src.EditTemplate} {
		if v != "" {
			given++
		}
	}
	if given > 1 {
		return nil, ErrAmbiguousImport
	}

	switch {
	case src.ImportTemplate != "":
		t, err := s.templateRepo.GetByID(ctx, userID, src.ImportTemplate)
		if err != nil {
			return nil, mapRepoErr(err, ErrTemplateNotFound)
		}
		return planner.FromTemplate(t, planner.ModeImportTemplate, s.today()), nil
	case src.EditTemplate != "":
		t, err := s.templateRepo.GetByID(ctx, userID, src.EditTemplate)
		if err != nil {
			return nil, mapRepoErr(err, ErrTemplateNotFound)
		}
		return planner.FromTemplate(t, planner.ModeEditTemplate, s.today()), nil
	case src.ImportWorkout != "":
		w, err := s.workoutRepo.GetByID(ctx, userID, src.ImportWorkout)
		if err != nil {
			return nil, mapRepoErr(err, ErrWorkoutNotFound)
		}
		return planner.FromWorkout(w), nil
	}
	return planner.New(s.today()), nil
}

func (s *planService) Apply(ctx context.Context, userID string, draft planner.Draft, op planner.Op) (*planner.Draft, error) {
	var ids []string
	if op.Exercise != nil {
		ids = append(ids, op.Exercise.ID)
	}
	for _, ref := range op.Selection {
		ids = append(ids, ref.ID)
	}
	if len(ids) > 0 {
		refs, err := s.exercises.Resolve(ctx, userID, ids)
		if err != nil {
			return nil, unknownRefs(err)
		}
		if op.Exercise != nil {
			op.Exercise, refs = &refs[0], refs[1:]
		}
		if op.Selection != nil {
			op.Selection = refs
		}
	}

	if err := draft.Apply(op); err != nil {
		return nil, err
	}
	return &draft, nil
}

// Commit saves the draft as one unit of work according to its mode.
func (s *planService) Commit(ctx context.Context, userID string, req CommitRequest) (*CommitResult, error) {
	draft := req.Draft
	if draft.Mode == "" {
		draft.Mode = planner.ModeNew
	}
	if !draft.Mode.Valid() {
		return nil, ErrInvalidMode
	}
	if draft.Mode != planner.ModeNew && draft.SourceID == "" {
		return nil, ErrMissingSource
	}

	if draft.Mode.Reconciles() && req.Selection != nil {
		refs, err := s.exercises.Resolve(ctx, userID, req.Selection)
		if err != nil {
			return nil, unknownRefs(err)
		}
		draft.Sync(refs)
	}
	if err := draft.Normalize(); err != nil {
		return nil, err
	}

	if !draft.Date.IsZero() {
		if _, err := domain.ParseDate(draft.Date.String()); err != nil {
			return nil, errors.Join(ErrInvalidInput, err)
		}
	}

	result, err := s.commit(ctx, userID, &draft)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"userID": userID, "mode": draft.Mode}).Warn("plan commit failed")
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsCommitted.WithLabelValues(string(draft.Mode)).Inc()
	}
	return result, nil
}

// commit writes the validated draft. A draft without a date keeps the date
// of the workout it edits and is planned for today otherwise.
func (s *planService) commit(ctx context.Context, userID string, draft *planner.Draft) (*CommitResult, error) {
	date := draft.Date
	if date.IsZero() && draft.Mode != planner.ModeImportWorkout {
		date = s.today()
	}

	switch draft.Mode {
	case planner.ModeEditTemplate:
		err := s.templateRepo.ReplaceExercises(ctx, userID, draft.SourceID, draft.TemplateExercises())
		if err != nil {
			return nil, mapRepoErr(err, ErrTemplateNotFound)
		}
		return &CommitResult{TemplateID: draft.SourceID, Redirect: "/templates"}, nil

	case planner.ModeImportWorkout:
		if date.IsZero() {
			existing, err := s.workoutRepo.GetByID(ctx, userID, draft.SourceID)
			if err != nil {
				return nil, mapRepoErr(err, ErrWorkoutNotFound)
			}
			date = existing.Date
		}
		err := s.workoutRepo.ReplaceExercises(ctx, userID, draft.SourceID, date, draft.WorkoutExercises())
		if err != nil {
			return nil, mapRepoErr(err, ErrWorkoutNotFound)
		}
		return &CommitResult{WorkoutID: draft.SourceID, Redirect: workoutRedirect(draft.SourceID)}, nil
	}

	w := &domain.Workout{
		UserID:    userID,
		Date:      date,
		Status:    domain.StatusScheduled,
		Exercises: draft.WorkoutExercises(),
	}
	if draft.Mode == planner.ModeImportTemplate {
		source := draft.SourceID
		w.TemplateID = &source
	}
	id, err := s.workoutRepo.Create(ctx, w)
	if err != nil {
		return nil, mapRepoErr(err, ErrWorkoutNotFound)
	}
	return &CommitResult{WorkoutID: id, Redirect: workoutRedirect(id)}, nil
}

// unknownRefs reports exercise ids outside the user's catalog as bad input.
func unknownRefs(err error) error {
	if errors.Is(err, ErrExerciseNotFound) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}

func workoutRedirect(id string) string {
	return fmt.Sprintf("/workout/%s", id)
}
