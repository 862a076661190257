package service

import (
	"context"
	"errors"
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/readingplan"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)

func newTestPlanService(repo *fakePlanRepo) *readingPlanService {
	return newReadingPlanService(repo, 2, func() time.Time { return fixedNow })
}

func genesisSpec() readingplan.PlanSpec {
	return readingplan.PlanSpec{
		Name:           "Genesis",
		CreationMethod: readingplan.MethodInterval,
		StartBook:      "Genesis",
		StartChapter:   1,
		EndBook:        "Genesis",
		EndChapter:     10,
		DurationMethod: readingplan.DurationChaptersPerDay,
		ChaptersPerDay: 1,
		StartDate:      "2024-01-01",
	}
}

func TestCreatePlan(t *testing.T) {
	svc := newTestPlanService(newFakePlanRepo())
	userID := primitive.NewObjectID()

	spec := genesisSpec()
	spec.DurationMethod = ""
	spec.ChaptersPerDay = 0
	plan, diags, err := svc.CreatePlan(context.Background(), userID, spec)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if plan.ID.IsZero() || plan.UserID != userID || plan.Version != 1 {
		t.Errorf("stored plan metadata: id=%v user=%v version=%d", plan.ID, plan.UserID, plan.Version)
	}
	// Default pace of 2 chapters per session.
	if plan.LastOrdinal() != 5 {
		t.Errorf("expected 5 sessions, got %d", plan.LastOrdinal())
	}

	spec = genesisSpec()
	spec.StartDate = ""
	plan, _, err = svc.CreatePlan(context.Background(), userID, spec)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.StartDate != "2024-01-04" {
		t.Errorf("start date should default to the clock, got %s", plan.StartDate)
	}
}

func TestCreatePlanDiagnosticsAndErrors(t *testing.T) {
	svc := newTestPlanService(newFakePlanRepo())
	userID := primitive.NewObjectID()

	_, diags, err := svc.CreatePlan(context.Background(), userID, readingplan.PlanSpec{
		Name:           "Psalms",
		CreationMethod: readingplan.MethodSelection,
		ChapterText:    "Salmos 1-3; Nowhere 4",
		DurationMethod: readingplan.DurationDays,
		Days:           3,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if len(diags) != 1 {
		t.Errorf("expected one diagnostic, got %v", diags)
	}

	if _, _, err := svc.CreatePlan(context.Background(), userID, readingplan.PlanSpec{Name: "  "}); !errors.Is(err, ErrPlanNameRequired) {
		t.Errorf("blank name: got %v", err)
	}
	spec := genesisSpec()
	spec.EndChapter = 99
	if _, _, err := svc.CreatePlan(context.Background(), userID, spec); err == nil {
		t.Error("expected an invalid range error")
	}
}

func TestGetPlanOwnership(t *testing.T) {
	svc := newTestPlanService(newFakePlanRepo())
	owner := primitive.NewObjectID()
	plan, _, err := svc.CreatePlan(context.Background(), owner, genesisSpec())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	if _, err := svc.GetPlan(context.Background(), primitive.NewObjectID(), plan.ID); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("foreign user: got %v", err)
	}
	if _, err := svc.GetPlan(context.Background(), owner, primitive.NewObjectID()); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("missing plan: got %v", err)
	}
	if err := svc.DeletePlan(context.Background(), primitive.NewObjectID(), plan.ID); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("foreign delete: got %v", err)
	}

	plans, err := svc.ListPlans(context.Background(), owner)
	if err != nil || len(plans) != 1 {
		t.Fatalf("ListPlans: %d plans, err %v", len(plans), err)
	}

	if err := svc.DeletePlan(context.Background(), owner, plan.ID); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if _, err := svc.GetPlan(context.Background(), owner, plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("deleted plan: got %v", err)
	}
}

func TestApplyCommandPersists(t *testing.T) {
	repo := newFakePlanRepo()
	svc := newTestPlanService(repo)
	userID := primitive.NewObjectID()
	plan, _, err := svc.CreatePlan(context.Background(), userID, genesisSpec())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	out, err := svc.ApplyCommand(context.Background(), userID, plan.ID, readingplan.MarkSessionRead{})
	if err != nil {
		t.Fatalf("ApplyCommand: %v", err)
	}
	if got := out.Plan.ReadLog["2024-01-04"]; len(got) != 1 || got[0] != "Genesis 1" {
		t.Errorf("read log should use today's date, got %v", out.Plan.ReadLog)
	}

	out, err = svc.ApplyCommand(context.Background(), userID, plan.ID, readingplan.RecalculateToDate{TargetEndDate: "2024-01-06"})
	if err != nil {
		t.Fatalf("ApplyCommand: %v", err)
	}
	if out.Event == nil || !out.Event.RecalculatedAt.Equal(fixedNow) {
		t.Errorf("event should be stamped with the clock: %+v", out.Event)
	}

	stored, err := repo.GetByID(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Version != 3 {
		t.Errorf("version: got %d, want 3", stored.Version)
	}
	if stored.CurrentDay != 2 || stored.EndDate != "2024-01-06" {
		t.Errorf("stored plan: currentDay=%d endDate=%s", stored.CurrentDay, stored.EndDate)
	}
	if len(stored.RecalculationHistory) != 1 || stored.RecalculationHistory[0].Kind != domain.RecalcTargetDate {
		t.Errorf("history: %+v", stored.RecalculationHistory)
	}
	if stored.RecalculationBaseDate == nil || *stored.RecalculationBaseDate != "2024-01-04" {
		t.Errorf("base date: %v", stored.RecalculationBaseDate)
	}

	if _, err := svc.ApplyCommand(context.Background(), userID, plan.ID, readingplan.RecalculateToDate{TargetEndDate: "2024-01-01"}); !errors.Is(err, readingplan.ErrTargetUnreachable) {
		t.Errorf("unreachable target: got %v", err)
	}
}

// racingPlanRepo lets another writer update the plan just before each Update.
type racingPlanRepo struct {
	*fakePlanRepo
}

func (r racingPlanRepo) Update(ctx context.Context, plan *domain.ReadingPlan) error {
	other := plan.Clone()
	if err := r.fakePlanRepo.Update(ctx, other); err != nil {
		return err
	}
	return r.fakePlanRepo.Update(ctx, plan)
}

func TestApplyCommandConflict(t *testing.T) {
	inner := newFakePlanRepo()
	svc := newReadingPlanService(racingPlanRepo{inner}, 1, func() time.Time { return fixedNow })
	userID := primitive.NewObjectID()
	plan, _, err := svc.CreatePlan(context.Background(), userID, genesisSpec())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	if _, err := svc.ApplyCommand(context.Background(), userID, plan.ID, readingplan.MarkSessionRead{}); !errors.Is(err, ErrPlanConflict) {
		t.Errorf("expected ErrPlanConflict, got %v", err)
	}
}

func TestPreviewAndProgress(t *testing.T) {
	svc := newTestPlanService(newFakePlanRepo())
	userID := primitive.NewObjectID()
	plan, _, err := svc.CreatePlan(context.Background(), userID, genesisSpec())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	date, err := svc.PreviewPace(context.Background(), userID, plan.ID, 5)
	if err != nil || date != "2024-01-05" {
		t.Errorf("PreviewPace: %s %v", date, err)
	}
	if _, err := svc.PreviewPace(context.Background(), userID, plan.ID, 0); !errors.Is(err, readingplan.ErrInvalidInput) {
		t.Errorf("zero pace: got %v", err)
	}

	p, err := svc.GetProgress(context.Background(), userID, plan.ID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if p.OverdueSessions != 3 || p.NextSessionDate != "2024-01-01" || p.ChaptersRead != 0 {
		t.Errorf("progress: %+v", p)
	}

	sessions, err := svc.GetSchedule(context.Background(), userID, plan.ID)
	if err != nil || len(sessions) != 10 {
		t.Fatalf("GetSchedule: %d sessions, err %v", len(sessions), err)
	}
}
