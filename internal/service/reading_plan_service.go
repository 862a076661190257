package service

import (
	"context"
	"errors"
	"fernnog/reading-plan/internal/calendar"
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/readingplan"
	"fernnog/reading-plan/internal/repository"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("reading plan not found")
	ErrPlanAccessDenied = errors.New("reading plan belongs to another user")
	ErrPlanConflict     = errors.New("reading plan was changed by another request")
	ErrPlanNameRequired = errors.New("reading plan name is required")
)

type ReadingPlanService interface {
	// CreatePlan builds and stores a new plan. The returned diagnostics list
	// the parts of the chapter text that were skipped.
	CreatePlan(ctx context.Context, userID primitive.ObjectID, spec readingplan.PlanSpec) (*domain.ReadingPlan, []string, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.ReadingPlan, error)
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.ReadingPlan, error)
	DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error

	// ApplyCommand runs cmd against the stored plan and persists the result.
	ApplyCommand(ctx context.Context, userID, planID primitive.ObjectID, cmd readingplan.Command) (*readingplan.Outcome, error)
	PreviewPace(ctx context.Context, userID, planID primitive.ObjectID, pace float64) (string, error)

	GetSchedule(ctx context.Context, userID, planID primitive.ObjectID) ([]readingplan.Session, error)
	GetProgress(ctx context.Context, userID, planID primitive.ObjectID) (*readingplan.Progress, error)
}

// readingPlanService implements ReadingPlanService.
type readingPlanService struct {
	planRepo    repository.ReadingPlanRepository
	defaultPace int
	now         func() time.Time
}

// NewReadingPlanService creates a new instance of readingPlanService.
// defaultPace is used for chapters-per-day plans that name no pace.
func NewReadingPlanService(planRepo repository.ReadingPlanRepository, defaultPace int) ReadingPlanService {
	return newReadingPlanService(planRepo, defaultPace, time.Now)
}

func newReadingPlanService(planRepo repository.ReadingPlanRepository, defaultPace int, now func() time.Time) *readingPlanService {
	if defaultPace <= 0 {
		defaultPace = 1
	}
	return &readingPlanService{planRepo: planRepo, defaultPace: defaultPace, now: now}
}

func (s *readingPlanService) today() string {
	return calendar.Today(s.now())
}

// CreatePlan builds a plan from spec and saves it for userID.
func (s *readingPlanService) CreatePlan(ctx context.Context, userID primitive.ObjectID, spec readingplan.PlanSpec) (*domain.ReadingPlan, []string, error) {
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		return nil, nil, ErrPlanNameRequired
	}
	if spec.DurationMethod == "" {
		spec.DurationMethod = readingplan.DurationChaptersPerDay
	}
	if spec.DurationMethod == readingplan.DurationChaptersPerDay && spec.ChaptersPerDay == 0 {
		spec.ChaptersPerDay = s.defaultPace
	}

	plan, diagnostics, err := readingplan.BuildPlan(spec, s.today())
	if err != nil {
		return nil, diagnostics, err
	}
	for _, d := range diagnostics {
		log.Printf("INFO: Plan %q for user %s: %s", spec.Name, userID.Hex(), d)
	}

	plan.UserID = userID
	plan.Name = spec.Name
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		log.Printf("ERROR: Failed to save plan for user %s: %v", userID.Hex(), err)
		return nil, diagnostics, err
	}
	plan.ID = planID
	return plan, diagnostics, nil
}

// GetPlan returns a plan after checking that userID owns it.
func (s *readingPlanService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.ReadingPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

// ListPlans returns every plan userID owns, newest first.
func (s *readingPlanService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.ReadingPlan, error) {
	return s.planRepo.GetByUserID(ctx, userID)
}

// DeletePlan removes a plan owned by userID.
func (s *readingPlanService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	if _, err := s.GetPlan(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	log.Printf("INFO: Deleted plan %s of user %s", planID.Hex(), userID.Hex())
	return nil
}

// ApplyCommand loads the plan, applies cmd and writes the new plan back.
// Missing dates in cmd default to today. A concurrent write to the same plan
// makes this call fail with ErrPlanConflict.
func (s *readingPlanService) ApplyCommand(ctx context.Context, userID, planID primitive.ObjectID, cmd readingplan.Command) (*readingplan.Outcome, error) {
	plan, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if drift := readingplan.Drift(plan); len(drift) > 0 {
		log.Printf("WARN: Plan %s: %d chapters before day %d are missing from the read log: %v",
			planID.Hex(), len(drift), plan.CurrentDay, drift)
	}

	outcome, err := readingplan.Apply(plan, s.withToday(cmd))
	if err != nil {
		return nil, err
	}

	if outcome.Event != nil {
		outcome.Event.RecalculatedAt = s.now().UTC()
		outcome.Plan.RecalculationHistory = append(outcome.Plan.RecalculationHistory, *outcome.Event)
		log.Printf("INFO: Plan %s recalculated (%s) from day %d: %s -> %s",
			planID.Hex(), outcome.Event.Kind, outcome.Event.FromDay, outcome.Event.PreviousEndDate, outcome.Event.NewEndDate)
	}

	if err := s.planRepo.Update(ctx, outcome.Plan); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrPlanConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPlanNotFound
		}
		log.Printf("ERROR: Failed to update plan %s: %v", planID.Hex(), err)
		return nil, err
	}
	return outcome, nil
}

func (s *readingPlanService) withToday(cmd readingplan.Command) readingplan.Command {
	today := s.today()
	switch c := cmd.(type) {
	case readingplan.MarkSessionRead:
		if c.Date == "" {
			c.Date = today
		}
		return c
	case readingplan.RecalculateToDate:
		if c.Today == "" {
			c.Today = today
		}
		return c
	case readingplan.RecalculateToPace:
		if c.Today == "" {
			c.Today = today
		}
		return c
	}
	return cmd
}

// PreviewPace returns the end date reading pace chapters per session from
// today would give, without changing the plan.
func (s *readingPlanService) PreviewPace(ctx context.Context, userID, planID primitive.ObjectID, pace float64) (string, error) {
	plan, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return "", err
	}
	if pace <= 0 {
		return "", readingplan.ErrInvalidInput
	}
	date, ok := readingplan.PaceToTargetEndDate(plan, pace, s.today())
	if !ok {
		return "", readingplan.ErrTargetUnreachable
	}
	return date, nil
}

// GetSchedule lists the dated sessions of a plan.
func (s *readingPlanService) GetSchedule(ctx context.Context, userID, planID primitive.ObjectID) ([]readingplan.Session, error) {
	plan, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	return readingplan.Sessions(plan), nil
}

// GetProgress summarises a plan as of today.
func (s *readingPlanService) GetProgress(ctx context.Context, userID, planID primitive.ObjectID) (*readingplan.Progress, error) {
	plan, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	p := readingplan.Summarize(plan, s.today())
	return &p, nil
}
