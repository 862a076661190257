// internal/readingplan/progress.go
package readingplan

import (
	"fernnog/reading-plan/internal/domain"
	"math"
)

// Progress summarises where a reader stands on a given day.
type Progress struct {
	State           string  `json:"state" yaml:"state"`
	CurrentDay      int     `json:"currentDay" yaml:"currentDay"`
	TotalDays       int     `json:"totalDays" yaml:"totalDays"`
	ChaptersRead    int     `json:"chaptersRead" yaml:"chaptersRead"`
	TotalChapters   int     `json:"totalChapters" yaml:"totalChapters"`
	Percent         float64 `json:"percent" yaml:"percent"`
	NextSessionDate string  `json:"nextSessionDate,omitempty" yaml:"nextSessionDate,omitempty"`
	OverdueSessions int     `json:"overdueSessions" yaml:"overdueSessions"`
	EndDate         string  `json:"endDate" yaml:"endDate"`
}

// Summarize computes progress as of today. Sessions from currentDay onward
// whose date is before today count as overdue.
func Summarize(plan *domain.ReadingPlan, today string) Progress {
	p := Progress{
		State:         plan.State().Name(),
		CurrentDay:    plan.CurrentDay,
		TotalDays:     plan.LastOrdinal(),
		TotalChapters: len(plan.ChaptersList),
		EndDate:       plan.EndDate,
	}

	read := plan.ReadLog.ReadSet()
	for _, c := range plan.ChaptersList {
		if read[c] {
			p.ChaptersRead++
		}
	}
	if p.TotalChapters > 0 {
		p.Percent = math.Round(float64(p.ChaptersRead)*1000/float64(p.TotalChapters)) / 10
	}

	if plan.IsCompleted() {
		return p
	}
	if date, ok := plan.DateOf(plan.CurrentDay); ok {
		p.NextSessionDate = date
	}
	for o := plan.CurrentDay; o <= p.TotalDays; o++ {
		date, ok := plan.DateOf(o)
		if !ok || date >= today {
			break
		}
		p.OverdueSessions++
	}
	return p
}

// Session is one dated reading session of a plan.
type Session struct {
	Ordinal  int      `json:"ordinal" yaml:"ordinal"`
	Date     string   `json:"date" yaml:"date"`
	Chapters []string `json:"chapters" yaml:"chapters"`
	Read     bool     `json:"read" yaml:"read"`
}

// Sessions lists every session in ordinal order with its effective date.
// Sessions that cannot be dated get an empty Date.
func Sessions(plan *domain.ReadingPlan) []Session {
	last := plan.LastOrdinal()
	out := make([]Session, 0, last)
	for o := 1; o <= last; o++ {
		chapters, ok := plan.Plan.Session(o)
		if !ok {
			continue
		}
		date, _ := plan.DateOf(o)
		out = append(out, Session{
			Ordinal:  o,
			Date:     date,
			Chapters: append([]string{}, chapters...),
			Read:     o < plan.CurrentDay,
		})
	}
	return out
}
