package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanBackup stores metadata about a JSON snapshot of a reading plan.
// The snapshot itself lives in S3.
type PlanBackup struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID      primitive.ObjectID `bson:"planId" json:"planId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // Internal use only
	PlanVersion int64              `bson:"planVersion" json:"planVersion"`
	Size        int64              `bson:"size" json:"size"` // Snapshot size in bytes
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
