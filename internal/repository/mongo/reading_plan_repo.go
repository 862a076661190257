// internal/repository/mongo/reading_plan_repo.go
package mongo

import (
	"context"
	"errors"
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/repository"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const readingPlanCollectionName = "reading_plans"

// mongoReadingPlanRepository implements repository.ReadingPlanRepository
type mongoReadingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoReadingPlanRepository creates a new ReadingPlan repository.
func NewMongoReadingPlanRepository(db *mongo.Database) repository.ReadingPlanRepository {
	return &mongoReadingPlanRepository{
		collection: db.Collection(readingPlanCollectionName),
	}
}

// Create inserts a new reading plan at version 1.
func (r *mongoReadingPlanRepository) Create(ctx context.Context, plan *domain.ReadingPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires userId and name")
	}
	plan.ID = primitive.NewObjectID()
	plan.Version = 1
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single reading plan by its ID.
func (r *mongoReadingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ReadingPlan, error) {
	var plan domain.ReadingPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByUserID retrieves all plans owned by a user, newest first.
func (r *mongoReadingPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ReadingPlan, error) {
	plans := []domain.ReadingPlan{}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update writes the scheduling state of the plan. The filter pins the version
// the caller read, so two concurrent writers cannot both succeed.
func (r *mongoReadingPlanRepository) Update(ctx context.Context, plan *domain.ReadingPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("reading plan ID is required for update")
	}

	now := time.Now().UTC()
	filter := bson.M{"_id": plan.ID, "version": plan.Version}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":                  plan.Name,
			"chaptersList":          plan.ChaptersList,
			"totalChapters":         plan.TotalChapters,
			"plan":                  plan.Plan,
			"allowedDays":           plan.AllowedDays,
			"startDate":             plan.StartDate,
			"endDate":               plan.EndDate,
			"currentDay":            plan.CurrentDay,
			"readLog":               plan.ReadLog,
			"recalculationBaseDay":  plan.RecalculationBaseDay,
			"recalculationBaseDate": plan.RecalculationBaseDate,
			"recalculationHistory":  plan.RecalculationHistory,
			"updatedAt":             now,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the plan is gone or someone else wrote first.
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": plan.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	plan.Version++
	plan.UpdatedAt = now
	return nil
}

// Delete removes a plan owned by userID.
func (r *mongoReadingPlanRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if id == primitive.NilObjectID || userID == primitive.NilObjectID {
		return errors.New("plan ID and user ID are required for deletion")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureReadingPlanIndexes creates necessary indexes. Call during startup.
func EnsureReadingPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Listing a reader's plans, newest first
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
