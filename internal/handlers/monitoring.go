package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/visawatch/internal/monitoring"
	"github.com/monocle-dev/visawatch/internal/utils"
)

func (h *Handler) GetMonitoringStatus(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	status, err := h.service.GetMonitoringStatus(ctx.Request.Context(), userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, status)
}

func (h *Handler) CheckAvailability(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, h.service.CheckAvailability(ctx.Request.Context(), userID))
}

func (h *Handler) StartMonitoring(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	if err := h.service.StartMonitoring(ctx.Request.Context(), userID); err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Monitoring started"})
}

func (h *Handler) StopMonitoring(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	if err := h.service.StopMonitoring(ctx.Request.Context(), userID); err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Monitoring stopped"})
}

// GetSettings responds with null until the user saves settings.
func (h *Handler) GetSettings(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	settings, err := h.service.GetSettings(ctx.Request.Context(), userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, settings)
}

func (h *Handler) SaveSettings(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var patch monitoring.SettingsPatch

	if err := ctx.ShouldBindJSON(&patch); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.service.SaveSettings(ctx.Request.Context(), userID, patch)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, settings)
}

func (h *Handler) GetActivityLogs(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	logs, err := h.service.GetActivityLogs(ctx.Request.Context(), userID, utils.QueryLimit(ctx))

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, logs)
}

func (h *Handler) ClearActivityLogs(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	if err := h.service.ClearActivityLogs(ctx.Request.Context(), userID); err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Activity logs cleared"})
}

func (h *Handler) GetSystemStats(ctx *gin.Context) {
	stats, err := h.service.GetSystemStats(ctx.Request.Context())

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
