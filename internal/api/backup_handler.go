package api

import (
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type BackupHandler struct {
	backupService service.BackupService
}

func NewBackupHandler(backupService service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

type BackupResponse struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"planId"`
	PlanVersion int64     `json:"planVersion"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
}

func MapBackupToResponse(b *domain.PlanBackup) BackupResponse {
	return BackupResponse{
		ID:          b.ID.Hex(),
		PlanID:      b.PlanID.Hex(),
		PlanVersion: b.PlanVersion,
		Size:        b.Size,
		CreatedAt:   b.CreatedAt,
	}
}

func mapBackupResult(r *service.BackupResult) BackupResponse {
	resp := MapBackupToResponse(&r.PlanBackup)
	resp.DownloadURL = r.DownloadURL
	return resp
}

// CreateBackup godoc
// @Summary Back up a plan
// @Description Stores a JSON snapshot of the plan and returns a temporary download URL.
// @Tags Backups
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Success 201 {object} BackupResponse
// @Failure 404 {object} gin.H "Plan not found"
// @Failure 503 {object} gin.H "Backups not configured"
// @Router /plans/{planId}/backups [post]
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	res, err := h.backupService.BackupPlan(c.Request.Context(), userID, planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapBackupResult(res))
}

// ListBackups godoc
// @Summary List the backups of a plan
// @Tags Backups
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ObjectID Hex"
// @Success 200 {array} BackupResponse
// @Router /plans/{planId}/backups [get]
func (h *BackupHandler) ListBackups(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	backups, err := h.backupService.ListBackups(c.Request.Context(), userID, planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	resp := make([]BackupResponse, len(backups))
	for i := range backups {
		resp[i] = MapBackupToResponse(&backups[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetBackup godoc
// @Summary Get a backup with a fresh download URL
// @Tags Backups
// @Produce json
// @Security BearerAuth
// @Param backupId path string true "Backup ObjectID Hex"
// @Success 200 {object} BackupResponse
// @Router /backups/{backupId} [get]
func (h *BackupHandler) GetBackup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	backupID, ok := pathObjectID(c, "backupId")
	if !ok {
		return
	}
	res, err := h.backupService.GetBackup(c.Request.Context(), userID, backupID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapBackupResult(res))
}

// DeleteBackup godoc
// @Summary Delete a backup
// @Tags Backups
// @Security BearerAuth
// @Param backupId path string true "Backup ObjectID Hex"
// @Success 204 "Deleted"
// @Router /backups/{backupId} [delete]
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	backupID, ok := pathObjectID(c, "backupId")
	if !ok {
		return
	}
	if err := h.backupService.DeleteBackup(c.Request.Context(), userID, backupID); err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
