package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setDoc is a stored set. The workout id is denormalized so a workout's sets
// can be scoped and cascaded without a join.
type setDoc struct {
	domain.WorkoutSet `bson:",inline"`
	WorkoutID         string `bson:"workoutId"`
}

// exerciseRow is a workout exercise with its catalog entry joined by $lookup.
type exerciseRow struct {
	domain.WorkoutExercise `bson:",inline"`
	Lookup                 []domain.ExerciseRef `bson:"exercise"`
}

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	db        *mongo.Database
	workouts  *mongo.Collection
	exercises *mongo.Collection
	sets      *mongo.Collection
	catalog   *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		db:        db,
		workouts:  db.Collection(workoutCollectionName),
		exercises: db.Collection(workoutExerciseCollectionName),
		sets:      db.Collection(workoutSetCollectionName),
		catalog:   db.Collection(exerciseCollectionName),
	}
}

// Create inserts the workout, its exercises and their sets in one transaction.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (string, error) {
	if workout.UserID == "" || workout.Date.IsZero() {
		return "", errors.New("workout requires a user and a date")
	}

	id := uuid.NewString()
	exercises := cloneExercises(workout.Exercises)
	if err := repository.PrepareWorkoutRows(id, exercises); err != nil {
		return "", err
	}

	stored := *workout
	stored.ID = id
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	err := withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		if err := checkCatalog(sc, r.catalog, workout.UserID, workoutExerciseIDs(exercises)); err != nil {
			return err
		}
		if _, err := r.workouts.InsertOne(sc, stored); err != nil {
			return err
		}
		return r.insertRows(sc, id, exercises)
	})
	if err != nil {
		return "", err
	}

	*workout = stored
	workout.Exercises = exercises
	return id, nil
}

// GetByID retrieves a single workout of the user with everything nested in it.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, userID, id string) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.workouts.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	list := []domain.Workout{workout}
	if err := r.attachExercises(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *mongoWorkoutRepository) List(ctx context.Context, userID string, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	query := bson.M{"userId": userID}
	switch filter.Status {
	case domain.StatusScheduled:
		query["$or"] = bson.A{
			bson.M{"status": domain.StatusScheduled},
			bson.M{"status": nil, "date": bson.M{"$gte": filter.Today}},
		}
	case domain.StatusCompleted:
		query["$or"] = bson.A{
			bson.M{"status": domain.StatusCompleted},
			bson.M{"status": nil, "date": bson.M{"$lt": filter.Today}},
		}
	}

	direction := 1
	if filter.Order == repository.Descending {
		direction = -1
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: direction}, {Key: "createdAt", Value: 1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.workouts.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err := r.attachExercises(ctx, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// ReplaceExercises updates the date and swaps the exercise list in one transaction.
func (r *mongoWorkoutRepository) ReplaceExercises(ctx context.Context, userID, id string, date domain.Date, exercises []domain.WorkoutExercise) error {
	rows := cloneExercises(exercises)
	if err := repository.PrepareWorkoutRows(id, rows); err != nil {
		return err
	}

	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		set := bson.M{"updatedAt": time.Now().UTC()}
		if !date.IsZero() {
			set["date"] = date
		}
		res, err := r.workouts.UpdateOne(sc, bson.M{"_id": id, "userId": userID}, bson.M{"$set": set})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return repository.ErrNotFound
		}
		if err := checkCatalog(sc, r.catalog, userID, workoutExerciseIDs(rows)); err != nil {
			return err
		}
		if err := r.deleteRows(sc, id); err != nil {
			return err
		}
		return r.insertRows(sc, id, rows)
	})
}

func (r *mongoWorkoutRepository) UpdateStatus(ctx context.Context, userID, id string, status domain.WorkoutStatus) error {
	res, err := r.workouts.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SaveSets upserts the sets by id and applies the date and status in one transaction.
func (r *mongoWorkoutRepository) SaveSets(ctx context.Context, userID, id string, update repository.SetsUpdate) error {
	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		set := bson.M{"updatedAt": time.Now().UTC()}
		if update.Date != nil {
			set["date"] = *update.Date
		}
		if update.Status != nil {
			set["status"] = *update.Status
		}
		res, err := r.workouts.UpdateOne(sc, bson.M{"_id": id, "userId": userID}, bson.M{"$set": set})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return repository.ErrNotFound
		}

		exerciseIDs, err := r.exerciseIDs(sc, id)
		if err != nil {
			return err
		}
		existing, err := r.setParents(sc, id)
		if err != nil {
			return err
		}
		sets, err := repository.PrepareSetUpserts(existing, exerciseIDs, update.Sets)
		if err != nil {
			return err
		}

		for _, s := range sets {
			// the workoutId guard keeps a foreign set id from being hijacked
			_, err := r.sets.ReplaceOne(sc,
				bson.M{"_id": s.ID, "workoutId": id},
				setDoc{WorkoutSet: s, WorkoutID: id},
				options.Replace().SetUpsert(true),
			)
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: set %s belongs to another workout", repository.ErrNotFound, s.ID)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the workout and cascades to its exercises and sets.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, userID, id string) error {
	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		res, err := r.workouts.DeleteOne(sc, bson.M{"_id": id, "userId": userID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return r.deleteRows(sc, id)
	})
}

func (r *mongoWorkoutRepository) insertRows(ctx context.Context, workoutID string, exercises []domain.WorkoutExercise) error {
	if len(exercises) == 0 {
		return nil
	}
	exerciseDocs := make([]interface{}, 0, len(exercises))
	var setDocs []interface{}
	for _, we := range exercises {
		exerciseDocs = append(exerciseDocs, we)
		for _, s := range we.Sets {
			setDocs = append(setDocs, setDoc{WorkoutSet: s, WorkoutID: workoutID})
		}
	}
	if _, err := r.exercises.InsertMany(ctx, exerciseDocs); err != nil {
		return err
	}
	if len(setDocs) > 0 {
		if _, err := r.sets.InsertMany(ctx, setDocs); err != nil {
			return err
		}
	}
	return nil
}

func (r *mongoWorkoutRepository) deleteRows(ctx context.Context, workoutID string) error {
	if _, err := r.sets.DeleteMany(ctx, bson.M{"workoutId": workoutID}); err != nil {
		return err
	}
	if _, err := r.exercises.DeleteMany(ctx, bson.M{"workoutId": workoutID}); err != nil {
		return err
	}
	return nil
}

func (r *mongoWorkoutRepository) exerciseIDs(ctx context.Context, workoutID string) (map[string]bool, error) {
	ids, err := r.exercises.Distinct(ctx, "_id", bson.M{"workoutId": workoutID})
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if s, ok := id.(string); ok {
			out[s] = true
		}
	}
	return out, nil
}

func (r *mongoWorkoutRepository) setParents(ctx context.Context, workoutID string) (map[string]string, error) {
	cursor, err := r.sets.Find(ctx, bson.M{"workoutId": workoutID},
		options.Find().SetProjection(bson.M{"_id": 1, "workoutExerciseId": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []setDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(docs))
	for _, d := range docs {
		out[d.ID] = d.WorkoutExerciseID
	}
	return out, nil
}

// attachExercises loads the exercises (with their catalog entry) and sets of
// every workout in place.
func (r *mongoWorkoutRepository) attachExercises(ctx context.Context, workouts []domain.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	ids := make([]string, len(workouts))
	for i := range workouts {
		ids[i] = workouts[i].ID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"workoutId": bson.M{"$in": ids}}}},
		{{Key: "$sort", Value: bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         exerciseCollectionName,
			"localField":   "exerciseId",
			"foreignField": "_id",
			"as":           "exercise",
		}}},
	}
	cursor, err := r.exercises.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	var rows []exerciseRow
	if err := cursor.All(ctx, &rows); err != nil {
		return err
	}

	setCursor, err := r.sets.Find(ctx, bson.M{"workoutId": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	var sets []setDoc
	if err := setCursor.All(ctx, &sets); err != nil {
		return err
	}

	setsByExercise := make(map[string][]domain.WorkoutSet)
	for _, s := range sets {
		setsByExercise[s.WorkoutExerciseID] = append(setsByExercise[s.WorkoutExerciseID], s.WorkoutSet)
	}
	byWorkout := make(map[string][]domain.WorkoutExercise)
	for _, row := range rows {
		we := row.WorkoutExercise
		we.Exercise = repository.ToOne(row.Lookup)
		we.Sets = setsByExercise[we.ID]
		byWorkout[we.WorkoutID] = append(byWorkout[we.WorkoutID], we)
	}
	for i := range workouts {
		workouts[i].Exercises = byWorkout[workouts[i].ID]
	}
	return nil
}

// checkCatalog fails with ErrInvalid unless every id names an exercise visible to the user.
func checkCatalog(ctx context.Context, catalog *mongo.Collection, userID string, ids []string) error {
	unique := make(map[string]struct{}, len(ids))
	list := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := unique[id]; !ok {
			unique[id] = struct{}{}
			list = append(list, id)
		}
	}
	if len(list) == 0 {
		return nil
	}
	n, err := catalog.CountDocuments(ctx, bson.M{
		"_id": bson.M{"$in": list},
		"$or": bson.A{
			bson.M{"userId": bson.M{"$exists": false}},
			bson.M{"userId": userID},
		},
	})
	if err != nil {
		return err
	}
	if n != int64(len(list)) {
		return fmt.Errorf("%w: unknown exercise in list", repository.ErrInvalid)
	}
	return nil
}

func workoutExerciseIDs(rows []domain.WorkoutExercise) []string {
	ids := make([]string, len(rows))
	for i, we := range rows {
		ids[i] = we.ExerciseID
	}
	return ids
}

func cloneExercises(in []domain.WorkoutExercise) []domain.WorkoutExercise {
	out := make([]domain.WorkoutExercise, len(in))
	for i, we := range in {
		we.Sets = append([]domain.WorkoutSet(nil), we.Sets...)
		out[i] = we
	}
	return out
}

// EnsureWorkoutIndexes creates the indexes of the workout collections.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) {
	createIndexes(ctx, db.Collection(workoutCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}}},
	})
	createIndexes(ctx, db.Collection(workoutExerciseCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}}},
	})
	createIndexes(ctx, db.Collection(workoutSetCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "workoutId", Value: 1}}},
		{Keys: bson.D{{Key: "workoutExerciseId", Value: 1}, {Key: "setNumber", Value: 1}}},
	})
}
