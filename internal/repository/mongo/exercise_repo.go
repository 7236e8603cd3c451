package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (string, error) {
	if exercise.Name == "" {
		return "", errors.New("exercise name is required")
	}

	exercise.ID = uuid.NewString()
	exercise.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return "", err
	}
	return exercise.ID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// ListVisible returns the shared catalog and the user's custom exercises, sorted by name.
func (r *mongoExerciseRepository) ListVisible(ctx context.Context, userID string) ([]domain.Exercise, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"userId": bson.M{"$exists": false}},
		bson.M{"userId": userID},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Seed upserts shared catalog entries keyed by lower-cased name, leaving existing ones untouched.
func (r *mongoExerciseRepository) Seed(ctx context.Context, exercises []domain.Exercise) (int, error) {
	added := 0
	now := time.Now().UTC()
	for _, e := range exercises {
		if e.Name == "" {
			continue
		}
		filter := bson.M{"nameKey": strings.ToLower(e.Name), "userId": bson.M{"$exists": false}}
		update := bson.M{"$setOnInsert": bson.M{
			"_id":          uuid.NewString(),
			"name":         e.Name,
			"nameKey":      strings.ToLower(e.Name),
			"targetMuscle": e.TargetMuscle,
			"isCustom":     false,
			"createdAt":    now,
		}}
		res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			return added, err
		}
		if res.UpsertedCount > 0 {
			added++
		}
	}
	return added, nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
		{
			// one shared entry per name
			Keys: bson.D{{Key: "nameKey", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"nameKey": bson.M{"$exists": true}}),
		},
	})
}
