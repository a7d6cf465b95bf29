package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/partsboard/internal/auth"
	"github.com/your-org/partsboard/internal/upstream"
	"github.com/your-org/partsboard/pkg/dto"
)

// WorkspaceCloser tears down the dashboard workspace of a session.
type WorkspaceCloser interface {
	Close(id string)
}

type AuthHandler struct {
	svc          *auth.Service
	workspaces   WorkspaceCloser
	cookieSecure bool
}

func NewAuthHandler(svc *auth.Service, workspaces WorkspaceCloser, cookieSecure bool) *AuthHandler {
	return &AuthHandler{svc: svc, workspaces: workspaces, cookieSecure: cookieSecure}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		if errors.Is(err, upstream.ErrUnauthorized) || upstream.IsStatus(err, http.StatusUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		upstreamError(c, err, "login failed")
		return
	}

	auth.SetSessionCookie(c, sess, h.svc.TTL(), h.cookieSecure)
	slog.Info("operator logged in", "session", sess.ID, "user_id", sess.User.ID)

	user := sess.User
	c.JSON(http.StatusOK, dto.SessionResponse{
		SessionID: sess.ID.String(),
		User:      &user,
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout always succeeds: an unknown or stale cookie is simply cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw, err := c.Cookie(auth.CookieName); err == nil {
		if id, err := uuid.Parse(raw); err == nil {
			if err := h.svc.Logout(c.Request.Context(), id); err != nil {
				slog.Warn("delete session failed", "session", id, "error", err)
			}
			h.workspaces.Close(id.String())
		}
	}
	auth.ClearSessionCookie(c, h.cookieSecure)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me reports the operator behind the session cookie.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	user := sess.User
	c.JSON(http.StatusOK, dto.SessionResponse{
		SessionID: sess.ID.String(),
		User:      &user,
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
	})
}
