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

const backupCollectionName = "plan_backups"

// mongoBackupRepository implements repository.BackupRepository
type mongoBackupRepository struct {
	collection *mongo.Collection
}

// NewMongoBackupRepository creates a new backup metadata repository backed by MongoDB.
func NewMongoBackupRepository(db *mongo.Database) repository.BackupRepository {
	return &mongoBackupRepository{
		collection: db.Collection(backupCollectionName),
	}
}

// Create inserts backup metadata into the database.
func (r *mongoBackupRepository) Create(ctx context.Context, backup *domain.PlanBackup) (primitive.ObjectID, error) {
	if backup.PlanID == primitive.NilObjectID ||
		backup.UserID == primitive.NilObjectID ||
		backup.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("backup requires planId, userId, and s3ObjectKey")
	}

	backup.ID = primitive.NewObjectID()
	backup.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, backup)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves backup metadata by its ID.
func (r *mongoBackupRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanBackup, error) {
	var backup domain.PlanBackup
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&backup)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &backup, nil
}

// GetByPlanID lists the backups of a plan, newest first.
func (r *mongoBackupRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanBackup, error) {
	backups := []domain.PlanBackup{}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &backups); err != nil {
		return nil, err
	}
	return backups, nil
}

// Delete removes backup metadata. The S3 object is deleted by the caller.
func (r *mongoBackupRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrDeleteFailed
	}
	return nil
}

// EnsureBackupIndexes creates necessary indexes for the backups collection.
func EnsureBackupIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "s3ObjectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
