package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type templateExerciseRow struct {
	domain.TemplateExercise `bson:",inline"`
	Lookup                  []domain.ExerciseRef `bson:"exercise"`
}

// mongoTemplateRepository implements repository.TemplateRepository
type mongoTemplateRepository struct {
	db        *mongo.Database
	templates *mongo.Collection
	exercises *mongo.Collection
	catalog   *mongo.Collection
}

// NewMongoTemplateRepository creates a new Template repository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		db:        db,
		templates: db.Collection(templateCollectionName),
		exercises: db.Collection(templateExerciseCollectionName),
		catalog:   db.Collection(exerciseCollectionName),
	}
}

// Create inserts the template and its rows in one transaction.
func (r *mongoTemplateRepository) Create(ctx context.Context, template *domain.Template) (string, error) {
	if template.UserID == "" || strings.TrimSpace(template.Name) == "" {
		return "", errors.New("template requires a user and a name")
	}

	id := uuid.NewString()
	rows := append([]domain.TemplateExercise(nil), template.Exercises...)
	if err := repository.PrepareTemplateRows(id, rows); err != nil {
		return "", err
	}

	stored := *template
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()

	err := withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		if err := checkCatalog(sc, r.catalog, template.UserID, templateExerciseIDs(rows)); err != nil {
			return err
		}
		if _, err := r.templates.InsertOne(sc, stored); err != nil {
			return err
		}
		return r.insertRows(sc, rows)
	})
	if err != nil {
		return "", err
	}

	*template = stored
	template.Exercises = rows
	return id, nil
}

// GetByID retrieves a single template of the user, exercises included.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, userID, id string) (*domain.Template, error) {
	var template domain.Template
	err := r.templates.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	list := []domain.Template{template}
	if err := r.attachExercises(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List retrieves the user's templates sorted by name.
func (r *mongoTemplateRepository) List(ctx context.Context, userID string) ([]domain.Template, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.templates.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []domain.Template{}
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err := r.attachExercises(ctx, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// ReplaceExercises swaps the template's rows in one transaction.
func (r *mongoTemplateRepository) ReplaceExercises(ctx context.Context, userID, id string, exercises []domain.TemplateExercise) error {
	rows := append([]domain.TemplateExercise(nil), exercises...)
	if err := repository.PrepareTemplateRows(id, rows); err != nil {
		return err
	}

	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		n, err := r.templates.CountDocuments(sc, bson.M{"_id": id, "userId": userID})
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		if err := checkCatalog(sc, r.catalog, userID, templateExerciseIDs(rows)); err != nil {
			return err
		}
		if _, err := r.exercises.DeleteMany(sc, bson.M{"templateId": id}); err != nil {
			return err
		}
		return r.insertRows(sc, rows)
	})
}

// Delete removes the template, its rows and the links workouts keep to it.
func (r *mongoTemplateRepository) Rename(ctx context.Context, userID, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: template name is required", repository.ErrInvalid)
	}
	res, err := r.templates.UpdateOne(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTemplateRepository) Delete(ctx context.Context, userID, id string) error {
	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		res, err := r.templates.DeleteOne(sc, bson.M{"_id": id, "userId": userID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		if _, err := r.exercises.DeleteMany(sc, bson.M{"templateId": id}); err != nil {
			return err
		}
		_, err = r.db.Collection(workoutCollectionName).UpdateMany(sc,
			bson.M{"userId": userID, "templateId": id},
			bson.M{"$unset": bson.M{"templateId": ""}},
		)
		return err
	})
}

func (r *mongoTemplateRepository) insertRows(ctx context.Context, rows []domain.TemplateExercise) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]interface{}, len(rows))
	for i, row := range rows {
		docs[i] = row
	}
	_, err := r.exercises.InsertMany(ctx, docs)
	return err
}

func (r *mongoTemplateRepository) attachExercises(ctx context.Context, templates []domain.Template) error {
	if len(templates) == 0 {
		return nil
	}
	ids := make([]string, len(templates))
	for i := range templates {
		ids[i] = templates[i].ID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"templateId": bson.M{"$in": ids}}}},
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
	var rows []templateExerciseRow
	if err := cursor.All(ctx, &rows); err != nil {
		return err
	}

	byTemplate := make(map[string][]domain.TemplateExercise)
	for _, row := range rows {
		te := row.TemplateExercise
		te.Exercise = repository.ToOne(row.Lookup)
		byTemplate[te.TemplateID] = append(byTemplate[te.TemplateID], te)
	}
	for i := range templates {
		templates[i].Exercises = byTemplate[templates[i].ID]
	}
	return nil
}

func templateExerciseIDs(rows []domain.TemplateExercise) []string {
	ids := make([]string, len(rows))
	for i, te := range rows {
		ids[i] = te.ExerciseID
	}
	return ids
}

// EnsureTemplateIndexes creates the indexes of the template collections.
func EnsureTemplateIndexes(ctx context.Context, db *mongo.Database) {
	createIndexes(ctx, db.Collection(templateCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "name", Value: 1}}},
	})
	createIndexes(ctx, db.Collection(templateExerciseCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "templateId", Value: 1}, {Key: "order", Value: 1}}},
	})
}
