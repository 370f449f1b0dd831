package handlers

import (
	"errors"
	"net/http"

	"mart_inventory/internal/services"
	"mart_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SyncHandler serves the bulk read and bulk replace endpoints.
type SyncHandler struct {
	syncService services.SyncService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(ss services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: ss}
}

// HealthCheck reports liveness and whether the database is reachable.
func (h *SyncHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, h.syncService.Health(c.Request.Context()))
}

// GetAll returns the whole stored snapshot.
func (h *SyncHandler) GetAll(c *gin.Context) {
	data, err := h.syncService.GetAll(c.Request.Context())
	if err != nil {
		h.respondWithServiceError(c, err, "GetAll")
		return
	}
	c.JSON(http.StatusOK, data)
}

// Sync replaces the stored snapshot with the request body.
func (h *SyncHandler) Sync(c *gin.Context) {
	var payload services.SyncPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.LogError(err, "Sync: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.syncService.ReplaceAll(c.Request.Context(), &payload); err != nil {
		h.respondWithServiceError(c, err, "Sync")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SyncHandler) respondWithServiceError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, services.ErrDatabaseUnavailable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeUnavailable, "Database initializing..."))
	case errors.Is(err, services.ErrInvalidSnapshot):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error()))
	default:
		utils.LogError(err, op+": Error from syncService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, err.Error()))
	}
}
