package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/visawatch/internal/auth"
	"github.com/monocle-dev/visawatch/internal/monitoring"
	"github.com/monocle-dev/visawatch/internal/realtime"
	"github.com/monocle-dev/visawatch/internal/store"
	"github.com/monocle-dev/visawatch/internal/utils"
	"go.uber.org/zap"
)

// NotificationTester sends the canned test messages behind the settings page.
type NotificationTester interface {
	TestEmail(ctx context.Context, address string) bool
	TestTelegram(ctx context.Context, botToken, chatID string) bool
}

type Options struct {
	Service        *monitoring.Service
	Store          store.Store
	Notifications  NotificationTester
	Hub            *realtime.Hub
	Signer         *auth.Signer
	Logger         *zap.Logger
	AllowedOrigins []string
}

// Handler serves the dashboard API. All dependencies are injected at startup.
type Handler struct {
	service        *monitoring.Service
	store          store.Store
	notifications  NotificationTester
	hub            *realtime.Hub
	signer         *auth.Signer
	log            *zap.Logger
	allowedOrigins []string
}

func New(opts Options) *Handler {
	h := &Handler{
		service:        opts.Service,
		store:          opts.Store,
		notifications:  opts.Notifications,
		hub:            opts.Hub,
		signer:         opts.Signer,
		log:            opts.Logger,
		allowedOrigins: opts.AllowedOrigins,
	}

	if h.log == nil {
		h.log = zap.NewNop()
	}

	return h
}

func (h *Handler) userID(ctx *gin.Context) (uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}

	return userID, true
}

// fail maps err onto a status code and writes the {error} body.
func (h *Handler) fail(ctx *gin.Context, err error) {
	var validation *monitoring.ValidationError

	switch {
	case errors.As(err, &validation), errors.Is(err, monitoring.ErrNoSettings):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
