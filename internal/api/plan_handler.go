// internal/api/plan_handler.go
package api

import (
	"errors"
	"fernnog/reading-plan/internal/bible"
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/readingplan"
	"fernnog/reading-plan/internal/service"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanHandler struct {
	planService   service.ReadingPlanService
	backupService service.BackupService
}

func NewPlanHandler(planService service.ReadingPlanService, backupService service.BackupService) *PlanHandler {
	return &PlanHandler{planService: planService, backupService: backupService}
}

// --- DTOs ---

type CreatePlanRequest struct {
	Name           string   `json:"name" binding:"required"`
	CreationMethod string   `json:"creationMethod" binding:"required,oneof=interval selection"`
	StartBook      string   `json:"startBook"`
	StartChapter   int      `json:"startChapter"`
	EndBook        string   `json:"endBook"`
	EndChapter     int      `json:"endChapter"`
	Books          []string `json:"books"`
	ChapterText    string   `json:"chapterText"`
	DurationMethod string   `json:"durationMethod" binding:"omitempty,oneof=days end-date chapters-per-day"`
	Days           int      `json:"days" binding:"omitempty,min=1"`
	EndDate        string   `json:"endDate"`
	ChaptersPerDay int      `json:"chaptersPerDay" binding:"omitempty,min=1"`
	StartDate      string   `json:"startDate"`
	AllowedDays    []int    `json:"allowedDays" binding:"omitempty,dive,min=0,max=6"`
}

func (r CreatePlanRequest) toSpec() readingplan.PlanSpec {
	return readingplan.PlanSpec{
		Name:           r.Name,
		CreationMethod: readingplan.CreationMethod(r.CreationMethod),
		StartBook:      r.StartBook,
		StartChapter:   r.StartChapter,
		EndBook:        r.EndBook,
		EndChapter:     r.EndChapter,
		Books:          r.Books,
		ChapterText:    r.ChapterText,
		DurationMethod: readingplan.DurationMethod(r.DurationMethod),
		Days:           r.Days,
		EndDate:        r.EndDate,
		ChaptersPerDay: r.ChaptersPerDay,
		StartDate:      r.StartDate,
		AllowedDays:    r.AllowedDays,
	}
}

type MarkReadRequest struct {
	Date string `json:"date"` // defaults to today
}

// RecalculateRequest takes exactly one of TargetEndDate or Pace.
type RecalculateRequest struct {
	TargetEndDate string   `json:"targetEndDate"`
	Pace          *float64 `json:"pace" binding:"omitempty,gt=0"`
}

type PlanResponse struct {
	ID                    string                      `json:"id"`
	UserID                string                      `json:"userId"`
	Name                  string                      `json:"name"`
	Version               int64                       `json:"version"`
	State                 string                      `json:"state"`
	ChaptersList          []string                    `json:"chaptersList"`
	TotalChapters         int                         `json:"totalChapters"`
	Plan                  domain.Schedule             `json:"plan"`
	AllowedDays           []int                       `json:"allowedDays"`
	StartDate             string                      `json:"startDate"`
	EndDate               string                      `json:"endDate"`
	CurrentDay            int                         `json:"currentDay"`
	ReadLog               domain.ReadLog              `json:"readLog"`
	RecalculationBaseDay  *int                        `json:"recalculationBaseDay"`
	RecalculationBaseDate *string                     `json:"recalculationBaseDate"`
	RecalculationHistory  []domain.RecalculationEvent `json:"recalculationHistory"`
	CreatedAt             time.Time                   `json:"createdAt"`
	UpdatedAt             time.Time                   `json:"updatedAt"`
}

// PlanSummaryResponse is the list view of a plan.
type PlanSummaryResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	State      string    `json:"state"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	CurrentDay int       `json:"currentDay"`
	TotalDays  int       `json:"totalDays"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreatePlanResponse struct {
	Plan        PlanResponse `json:"plan"`
	Diagnostics []string     `json:"diagnostics"`
}

type MarkReadResponse struct {
	Plan         PlanResponse `json:"plan"`
	ChaptersRead []string     `json:"chaptersRead"`
}

type RecalculateResponse struct {
	Plan    PlanResponse               `json:"plan"`
	NewPace float64                    `json:"newPace"`
	Event   *domain.RecalculationEvent `json:"event,omitempty"`
}

type PacePreviewResponse struct {
	Pace    float64 `json:"pace"`
	EndDate string  `json:"endDate"`
}

func MapPlanToResponse(p *domain.ReadingPlan) PlanResponse {
	resp := PlanResponse{
		ID:                    p.ID.Hex(),
		UserID:                p.UserID.Hex(),
		Name:                  p.Name,
		Version:               p.Version,
		State:                 p.State().Name(),
		ChaptersList:          p.ChaptersList,
		TotalChapters:         p.TotalChapters,
		Plan:                  p.Plan,
		AllowedDays:           p.AllowedDays,
		StartDate:             p.StartDate,
		EndDate:               p.EndDate,
		CurrentDay:            p.CurrentDay,
		ReadLog:               p.ReadLog,
		RecalculationBaseDay:  p.RecalculationBaseDay,
		RecalculationBaseDate: p.RecalculationBaseDate,
		RecalculationHistory:  p.RecalculationHistory,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
	if resp.AllowedDays == nil {
		resp.AllowedDays = []int{}
	}
	if resp.ReadLog == nil {
		resp.ReadLog = domain.ReadLog{}
	}
	if resp.RecalculationHistory == nil {
		resp.RecalculationHistory = []domain.RecalculationEvent{}
	}
	return resp
}

func MapPlansToSummaries(plans []domain.ReadingPlan) []PlanSummaryResponse {
	out := make([]PlanSummaryResponse, len(plans))
	for i := range plans {
		p := &plans[i]
		out[i] = PlanSummaryResponse{
			ID:         p.ID.Hex(),
			Name:       p.Name,
			State:      p.State().Name(),
			StartDate:  p.StartDate,
			EndDate:    p.EndDate,
			CurrentDay: p.CurrentDay,
			TotalDays:  p.LastOrdinal(),
			CreatedAt:  p.CreatedAt,
		}
	}
	return out
}

// abortWithPlanError maps service and scheduling errors to HTTP statuses.
func abortWithPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrBackupNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied), errors.Is(err, service.ErrBackupAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrBackupUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, readingplan.ErrTargetUnreachable), errors.Is(err, readingplan.ErrPlanCompleted):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, readingplan.ErrInvalidInput),
		errors.Is(err, readingplan.ErrDuration),
		errors.Is(err, readingplan.ErrEmptyPlan),
		errors.Is(err, bible.ErrInvalidRange),
		errors.Is(err, service.ErrPlanNameRequired):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// --- Handler Methods ---

// CreatePlan godoc
// @Summary Create a reading plan
// @Description Builds a plan from a chapter range or a book/text selection and a duration.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planRequest body CreatePlanRequest true "Plan details"
// @Success 201 {object} CreatePlanResponse "Plan created, with skipped input listed in diagnostics"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plan, diagnostics, err := h.planService.CreatePlan(c.Request.Context(), userID, req.toSpec())
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	if diagnostics == nil {
		diagnostics = []string{}
	}
	c.JSON(http.StatusCreated, CreatePlanResponse{Plan: MapPlanToResponse(plan), Diagnostics: diagnostics})
}

// ListPlans godoc
// @Summary List my reading plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PlanSummaryResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlansToSummaries(plans))
}

// ListPlansForUser godoc
// @Summary List another user's reading plans (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ObjectID Hex"
// @Success 200 {array} PlanSummaryResponse
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Router /admin/users/{userId}/plans [get]
func (h *PlanHandler) ListPlansForUser(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlansToSummaries(plans))
}

// GetPlan godoc
// @Summary Get a reading plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Success 200 {object} PlanResponse
// @Failure 403 {object} gin.H "Plan belongs to another user"
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, planID, ok := h.ids(c)
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// DeletePlan godoc
// @Summary Delete a reading plan
// @Description Deletes the plan and all of its backups.
// @Tags Plans
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Plan belongs to another user"
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{planId} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, planID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.backupService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkRead godoc
// @Summary Mark the current session as read
// @Description Records the chapters of the current session in the read log and advances the plan.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Param body body MarkReadRequest false "Reading date (defaults to today)"
// @Success 200 {object} MarkReadResponse
// @Failure 409 {object} gin.H "Plan changed concurrently"
// @Failure 422 {object} gin.H "Plan already completed"
// @Router /plans/{planId}/read [post]
func (h *PlanHandler) MarkRead(c *gin.Context) {
	userID, planID, ok := h.ids(c)
	if !ok {
		return
	}
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	out, err := h.planService.ApplyCommand(c.Request.Context(), userID, planID, readingplan.MarkSessionRead{Date: req.Date})
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	chapters := out.ChaptersRead
	if chapters == nil {
		chapters = []string{}
	}
	c.JSON(http.StatusOK, MarkReadResponse{Plan: MapPlanToResponse(out.Plan), ChaptersRead: chapters})
}

// Recalculate godoc
// @Summary Recalculate the rest of a plan
// @Description Spreads the unread chapters from today up to a target end date or at a new pace.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Param body body RecalculateRequest true "Either targetEndDate or pace"
// @Success 200 {object} RecalculateResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Plan changed concurrently"
// @Failure 422 {object} gin.H "No reading day left before the target"
// @Router /plans/{planId}/recalculate [post]
func (h *PlanHandler) Recalculate(c *gin.Context) {
	userID, planID, ok := h.ids(c)
	if !ok {
		return
	}
	var req RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var cmd readingplan.Command
	switch {
	case req.TargetEndDate != "" && req.Pace == nil:
		cmd = readingplan.RecalculateToDate{TargetEndDate: req.TargetEndDate}
	case req.TargetEndDate == "" && req.Pace != nil:
		cmd = readingplan.RecalculateToPace{Pace: *req.Pace}
	default:
		abortWithError(c, http.StatusBadRequest, "Provide exactly one of targetEndDate or pace.")
		return
	}

	out, err := h.planService.ApplyCommand(c.Request.Context(), userID, planID, cmd)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, RecalculateResponse{Plan: MapPlanToResponse(out.Plan), NewPace: out.NewPace, Event: out.Event})
}

// PacePreview godoc
// @Summary Preview the end date for a pace
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Param pace query number true "Chapters per session"
// @Success 200 {object} PacePreviewResponse
// @Failure 400 {object} gin.H "Invalid pace"
// @Router /plans/{planId}/pace-preview [get]
func (h *PlanHandler) PacePreview(c *gin.Context) {
	userID, planID, ok := h.ids(c)
	if !ok {
		return
	}
	pace, err := strconv.ParseFloat(c.Query("pace"), 64)
	if err != nil || pace <= 0 {
		abortWithError(c, http.StatusBadRequest, "Query parameter pace must be a positive number.")
		return
	}

	endDate, err := h.planService.PreviewPace(c.Request.Context(), userID, planID, pace)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, PacePreviewResponse{Pace: pace, EndDate: endDate})
}

// GetSchedule godoc
// @Summary List the dated sessions of a plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Success 200 {array} readingplan.Session
// @Router /plans/{planId}/schedule [get]
func (h *PlanHandler) GetSchedule(c *gin.Context) {
	userID, planID, ok := h.ids(c)
	if !ok {
		return
	}
	sessions, err := h.planService.GetSchedule(c.Request.Context(), userID, planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetProgress godoc
// @Summary Summarise progress on a plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Success 200 {object} readingplan.Progress
// @Router /plans/{planId}/progress [get]
func (h *PlanHandler) GetProgress(c *gin.Context) {
	userID, planID, ok := h.ids(c)
	if !ok {
		return
	}
	progress, err := h.planService.GetProgress(c.Request.Context(), userID, planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *PlanHandler) ids(c *gin.Context) (userID, planID primitive.ObjectID, ok bool) {
	if userID, ok = currentUserID(c); !ok {
		return
	}
	planID, ok = pathObjectID(c, "planId")
	return
}
