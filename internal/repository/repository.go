package repository

import (
	"context"
	"fernnog/reading-plan/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("version conflict")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ReadingPlanRepository defines the interface for interacting with reading plans.
type ReadingPlanRepository interface {
	Create(ctx context.Context, plan *domain.ReadingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ReadingPlan, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ReadingPlan, error)
	// Update replaces the plan only if the stored version still equals
	// plan.Version, and bumps the version. A stale write gets ErrConflict.
	Update(ctx context.Context, plan *domain.ReadingPlan) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// BackupRepository defines the interface for plan backup metadata.
type BackupRepository interface {
	Create(ctx context.Context, backup *domain.PlanBackup) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanBackup, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanBackup, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
