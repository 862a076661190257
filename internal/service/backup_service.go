package service

import (
	"context"
	"encoding/json"
	"errors"
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/repository"
	"fernnog/reading-plan/internal/storage"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrBackupUnavailable  = errors.New("plan backups are not configured")
	ErrBackupNotFound     = errors.New("backup not found")
	ErrBackupAccessDenied = errors.New("backup belongs to another user")
	ErrDownloadURLError   = errors.New("failed to generate download URL")
)

// BackupResult is a stored backup plus a temporary link to download it.
type BackupResult struct {
	domain.PlanBackup
	DownloadURL string `json:"downloadUrl"`
}

type BackupService interface {
	BackupPlan(ctx context.Context, userID, planID primitive.ObjectID) (*BackupResult, error)
	ListBackups(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.PlanBackup, error)
	GetBackup(ctx context.Context, userID, backupID primitive.ObjectID) (*BackupResult, error)
	DeleteBackup(ctx context.Context, userID, backupID primitive.ObjectID) error
	// DeletePlan removes a plan together with all of its backups.
	DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error
}

// backupService implements BackupService. A nil store disables backups.
type backupService struct {
	plans     ReadingPlanService
	backups   repository.BackupRepository
	store     storage.ObjectStorage
	urlExpiry time.Duration
}

// NewBackupService creates a new instance of backupService.
func NewBackupService(plans ReadingPlanService, backups repository.BackupRepository, store storage.ObjectStorage, urlExpiry time.Duration) BackupService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &backupService{plans: plans, backups: backups, store: store, urlExpiry: urlExpiry}
}

// BackupPlan writes a JSON snapshot of the plan to object storage and
// records its metadata.
func (s *backupService) BackupPlan(ctx context.Context, userID, planID primitive.ObjectID) (*BackupResult, error) {
	if s.store == nil {
		return nil, ErrBackupUnavailable
	}
	plan, err := s.plans.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode plan snapshot: %w", err)
	}
	objectKey := path.Join("backups", userID.Hex(), planID.Hex(), uuid.NewString()+".json")
	if err := s.store.PutObject(ctx, objectKey, body, "application/json"); err != nil {
		return nil, err
	}

	backup := &domain.PlanBackup{
		PlanID:      planID,
		UserID:      userID,
		S3ObjectKey: objectKey,
		PlanVersion: plan.Version,
		Size:        int64(len(body)),
	}
	backupID, err := s.backups.Create(ctx, backup)
	if err != nil {
		// Don't leave an orphaned object behind.
		if delErr := s.store.DeleteObject(ctx, objectKey); delErr != nil {
			log.Printf("WARN: Orphaned backup object %s: %v", objectKey, delErr)
		}
		return nil, err
	}
	backup.ID = backupID
	log.Printf("INFO: Backed up plan %s (version %d) to %s", planID.Hex(), plan.Version, objectKey)

	return s.withURL(ctx, backup)
}

// ListBackups lists the backups of a plan owned by userID.
func (s *backupService) ListBackups(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.PlanBackup, error) {
	if _, err := s.plans.GetPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	return s.backups.GetByPlanID(ctx, planID)
}

// GetBackup returns a backup with a fresh download URL.
func (s *backupService) GetBackup(ctx context.Context, userID, backupID primitive.ObjectID) (*BackupResult, error) {
	if s.store == nil {
		return nil, ErrBackupUnavailable
	}
	backup, err := s.ownedBackup(ctx, userID, backupID)
	if err != nil {
		return nil, err
	}
	return s.withURL(ctx, backup)
}

// DeleteBackup removes the stored object and its metadata.
func (s *backupService) DeleteBackup(ctx context.Context, userID, backupID primitive.ObjectID) error {
	if s.store == nil {
		return ErrBackupUnavailable
	}
	backup, err := s.ownedBackup(ctx, userID, backupID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteObject(ctx, backup.S3ObjectKey); err != nil {
		return err
	}
	return s.backups.Delete(ctx, backupID)
}

// DeletePlan removes every backup of the plan, then the plan itself. Without
// object storage the metadata rows are still removed and the objects are
// logged as orphaned.
func (s *backupService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	if _, err := s.plans.GetPlan(ctx, userID, planID); err != nil {
		return err
	}
	backups, err := s.backups.GetByPlanID(ctx, planID)
	if err != nil {
		return err
	}
	for _, backup := range backups {
		if s.store == nil {
			log.Printf("WARN: Backups disabled, leaving object %s of deleted plan %s", backup.S3ObjectKey, planID.Hex())
		} else if err := s.store.DeleteObject(ctx, backup.S3ObjectKey); err != nil {
			return err
		}
		if err := s.backups.Delete(ctx, backup.ID); err != nil {
			return err
		}
	}
	if len(backups) > 0 {
		log.Printf("INFO: Removed %d backups of plan %s", len(backups), planID.Hex())
	}
	return s.plans.DeletePlan(ctx, userID, planID)
}

func (s *backupService) ownedBackup(ctx context.Context, userID, backupID primitive.ObjectID) (*domain.PlanBackup, error) {
	backup, err := s.backups.GetByID(ctx, backupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}
	if backup.UserID != userID {
		return nil, ErrBackupAccessDenied
	}
	return backup, nil
}

func (s *backupService) withURL(ctx context.Context, backup *domain.PlanBackup) (*BackupResult, error) {
	url, err := s.store.GeneratePresignedDownloadURL(ctx, backup.S3ObjectKey, s.urlExpiry)
	if err != nil {
		return nil, ErrDownloadURLError
	}
	return &BackupResult{PlanBackup: *backup, DownloadURL: url}, nil
}
