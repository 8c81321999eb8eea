package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/visawatch/internal/store"
	"github.com/monocle-dev/visawatch/internal/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type LoginUserRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) LoginUser(ctx *gin.Context) {
	if !h.signer.Enabled() {
		ctx.JSON(http.StatusNotImplemented, gin.H{"error": "Token authentication is not configured"})
		return
	}

	var req LoginUserRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.store.GetUserByUsername(ctx.Request.Context(), strings.TrimSpace(req.Username))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
			return
		}
		h.log.Error("failed to fetch user", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.signer.GenerateJWT(user.ID, user.Username)

	if err != nil {
		h.log.Error("failed to generate JWT", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
		},
	})
}

func (h *Handler) Me(ctx *gin.Context) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	user, err := h.store.GetUser(ctx.Request.Context(), userID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
		},
	})
}
