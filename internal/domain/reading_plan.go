// internal/domain/reading_plan.go
package domain

import (
	"fernnog/reading-plan/internal/calendar"
	"slices"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Schedule maps a reading-day ordinal ("1", "2", ...) to the chapters of
// that session. Keys are strings to match the stored document shape.
type Schedule map[string][]string

// Session returns the chapters assigned to ordinal.
func (s Schedule) Session(ordinal int) ([]string, bool) {
	chapters, ok := s[strconv.Itoa(ordinal)]
	return chapters, ok
}

// Set assigns chapters to ordinal.
func (s Schedule) Set(ordinal int, chapters []string) {
	s[strconv.Itoa(ordinal)] = chapters
}

// LastOrdinal returns the highest ordinal key, or 0 for an empty schedule.
func (s Schedule) LastOrdinal() int {
	last := 0
	for k := range s {
		if n, err := strconv.Atoi(k); err == nil && n > last {
			last = n
		}
	}
	return last
}

// Clone returns a deep copy. Empty sessions stay empty lists, not nil.
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for k, v := range s {
		out[k] = slices.Clone(v)
	}
	return out
}

// ReadLog maps a YYYY-MM-DD date to the chapters actually read that day.
type ReadLog map[string][]string

// Clone returns a deep copy.
func (l ReadLog) Clone() ReadLog {
	out := make(ReadLog, len(l))
	for k, v := range l {
		out[k] = slices.Clone(v)
	}
	return out
}

// ReadSet flattens the log into the set of chapters read so far.
func (l ReadLog) ReadSet() map[string]bool {
	set := make(map[string]bool)
	for _, chapters := range l {
		for _, c := range chapters {
			set[c] = true
		}
	}
	return set
}

// RecalculationKind says what the reader asked for when recalculating.
type RecalculationKind string

const (
	RecalcTargetDate RecalculationKind = "target-date"
	RecalcPace       RecalculationKind = "pace"
)

// RecalculationEvent is one entry of a plan's audit trail.
type RecalculationEvent struct {
	RecalculatedAt  time.Time         `bson:"recalculatedAt" json:"recalculatedAt"`
	Kind            RecalculationKind `bson:"kind" json:"kind"`
	FromDay         int               `bson:"fromDay" json:"fromDay"`
	PreviousEndDate string            `bson:"previousEndDate" json:"previousEndDate"`
	NewEndDate      string            `bson:"newEndDate" json:"newEndDate"`
	NewPace         float64           `bson:"newPace" json:"newPace"`
}

// ReadingPlan is the stored reading plan document. The scheduling fields
// keep the document shape shared with the other clients of the store.
type ReadingPlan struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"userId" json:"userId"` // Owner
	Name    string             `bson:"name" json:"name"`
	Version int64              `bson:"version" json:"version"` // Bumped on every update

	ChaptersList          []string             `bson:"chaptersList" json:"chaptersList"`
	TotalChapters         int                  `bson:"totalChapters" json:"totalChapters"`
	Plan                  Schedule             `bson:"plan" json:"plan"`
	AllowedDays           []int                `bson:"allowedDays" json:"allowedDays"`
	StartDate             string               `bson:"startDate" json:"startDate"`
	EndDate               string               `bson:"endDate" json:"endDate"`
	CurrentDay            int                  `bson:"currentDay" json:"currentDay"`
	ReadLog               ReadLog              `bson:"readLog" json:"readLog"`
	RecalculationBaseDay  *int                 `bson:"recalculationBaseDay" json:"recalculationBaseDay"`
	RecalculationBaseDate *string              `bson:"recalculationBaseDate" json:"recalculationBaseDate"`
	RecalculationHistory  []RecalculationEvent `bson:"recalculationHistory" json:"recalculationHistory"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LastOrdinal is the final reading-day ordinal of the schedule.
func (p *ReadingPlan) LastOrdinal() int {
	return p.Plan.LastOrdinal()
}

// IsCompleted reports whether currentDay has moved past the last session.
func (p *ReadingPlan) IsCompleted() bool {
	return p.CurrentDay > p.LastOrdinal()
}

// Anchors returns the dating anchors used to resolve ordinals to dates.
func (p *ReadingPlan) Anchors() calendar.Anchors {
	a := calendar.Anchors{StartDate: p.StartDate, AllowedDays: p.AllowedDays}
	if p.RecalculationBaseDay != nil && p.RecalculationBaseDate != nil {
		a.BaseDay = *p.RecalculationBaseDay
		a.BaseDate = *p.RecalculationBaseDate
	}
	return a
}

// DateOf returns the calendar date of a plan ordinal.
func (p *ReadingPlan) DateOf(ordinal int) (string, bool) {
	return calendar.EffectiveDateForPlanDay(p.Anchors(), ordinal)
}

// Clone returns a deep copy of the plan.
func (p *ReadingPlan) Clone() *ReadingPlan {
	c := *p
	c.ChaptersList = slices.Clone(p.ChaptersList)
	c.AllowedDays = slices.Clone(p.AllowedDays)
	c.Plan = p.Plan.Clone()
	c.ReadLog = p.ReadLog.Clone()
	c.RecalculationHistory = slices.Clone(p.RecalculationHistory)
	if p.RecalculationBaseDay != nil {
		day := *p.RecalculationBaseDay
		c.RecalculationBaseDay = &day
	}
	if p.RecalculationBaseDate != nil {
		date := *p.RecalculationBaseDate
		c.RecalculationBaseDate = &date
	}
	return &c
}

// PlanState is the lifecycle state of a plan: Active, Recalculated or Completed.
type PlanState interface {
	planState()
	Name() string
}

// Active is a plan in progress that was never recalculated.
type Active struct{}

// Recalculated is a plan in progress whose later sessions are dated from BaseDate.
type Recalculated struct {
	BaseDay  int
	BaseDate string
}

// Completed is a plan whose currentDay is past the last session.
type Completed struct{}

func (Active) planState()       {}
func (Recalculated) planState() {}
func (Completed) planState()    {}

func (Active) Name() string       { return "active" }
func (Recalculated) Name() string { return "recalculated" }
func (Completed) Name() string    { return "completed" }

// State derives the lifecycle state from the stored fields.
func (p *ReadingPlan) State() PlanState {
	if p.IsCompleted() {
		return Completed{}
	}
	if p.RecalculationBaseDay != nil && p.RecalculationBaseDate != nil {
		return Recalculated{BaseDay: *p.RecalculationBaseDay, BaseDate: *p.RecalculationBaseDate}
	}
	return Active{}
}
