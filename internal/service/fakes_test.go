package service

import (
	"context"
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/repository"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *u
	return &found, nil
}

// fakePlanRepo keeps deep copies so callers cannot alias stored plans.
type fakePlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*domain.ReadingPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[primitive.ObjectID]*domain.ReadingPlan{}}
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *domain.ReadingPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	plan.Version = 1
	plan.CreatedAt = time.Now().UTC()
	r.plans[plan.ID] = plan.Clone()
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ReadingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *fakePlanRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ReadingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ReadingPlan{}
	for _, p := range r.plans {
		if p.UserID == userID {
			out = append(out, *p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, plan *domain.ReadingPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != plan.Version {
		return repository.ErrConflict
	}
	plan.Version++
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type fakeBackupRepo struct {
	mu      sync.Mutex
	backups map[primitive.ObjectID]domain.PlanBackup
}

func newFakeBackupRepo() *fakeBackupRepo {
	return &fakeBackupRepo{backups: map[primitive.ObjectID]domain.PlanBackup{}}
}

func (r *fakeBackupRepo) Create(ctx context.Context, backup *domain.PlanBackup) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	backup.ID = primitive.NewObjectID()
	r.backups[backup.ID] = *backup
	return backup.ID, nil
}

func (r *fakeBackupRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanBackup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.backups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBackupRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanBackup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PlanBackup{}
	for _, b := range r.backups {
		if b.PlanID == planID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBackupRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backups[id]; !ok {
		return repository.ErrDeleteFailed
	}
	delete(r.backups, id)
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) PutObject(ctx context.Context, objectKey string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = append([]byte(nil), body...)
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/" + objectKey + "?expires=" + expires.String(), nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey)
	return nil
}
