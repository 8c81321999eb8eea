package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type TestTelegramRequest struct {
	BotToken string `json:"botToken" binding:"required"`
	ChatID   string `json:"chatId" binding:"required"`
}

func (h *Handler) TestEmail(ctx *gin.Context) {
	var req TestEmailRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email address is required"})
		return
	}

	success := h.notifications.TestEmail(ctx.Request.Context(), req.Email)

	message := "Email test failed"
	if success {
		message = "Test email sent"
	}

	ctx.JSON(http.StatusOK, gin.H{"success": success, "message": message})
}

func (h *Handler) TestTelegram(ctx *gin.Context) {
	var req TestTelegramRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Bot token and chat ID are required"})
		return
	}

	success := h.notifications.TestTelegram(ctx.Request.Context(), req.BotToken, req.ChatID)

	message := "Telegram test failed"
	if success {
		message = "Test Telegram message sent"
	}

	ctx.JSON(http.StatusOK, gin.H{"success": success, "message": message})
}
