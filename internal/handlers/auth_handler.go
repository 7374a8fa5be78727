package handlers

import (
	"net/http"

	"gearreport/internal/config"
	"gearreport/internal/middleware"
	"gearreport/internal/observability"
	"gearreport/internal/services"
	contextutils "gearreport/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AuthHandler handles moderator authentication HTTP requests
type AuthHandler struct {
	adminUserService services.AdminUserServiceInterface
	config           *config.Config
	logger           *observability.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(adminUserService services.AdminUserServiceInterface, cfg *config.Config, logger *observability.Logger) *AuthHandler {
	return &AuthHandler{
		adminUserService: adminUserService,
		config:           cfg,
		logger:           logger,
	}
}

// LoginRequest is the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles moderator login requests
func (h *AuthHandler) Login(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "login")
	defer observability.FinishSpan(span, nil)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request body",
			"",
			err,
		))
		return
	}

	span.SetAttributes(
		attribute.String("auth.username", req.Username),
		attribute.Bool("auth.password_provided", req.Password != ""),
	)

	user, err := h.adminUserService.AuthenticateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "Authentication failed", map[string]interface{}{"username": req.Username})
		HandleAppError(c, contextutils.ErrInvalidCredentials)
		return
	}

	if err := h.adminUserService.UpdateLastActive(c.Request.Context(), user.ID); err != nil {
		// Log error but don't fail login
		h.logger.Warn(c.Request.Context(), "Failed to update last active", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
	}

	session := sessions.Default(c)
	session.Set(middleware.AdminUserIDKey, user.ID)
	session.Set(middleware.AdminUsernameKey, user.Username)

	if err := session.Save(); err != nil {
		h.logger.Error(c.Request.Context(), "Failed to save session", err)
		HandleAppError(c, contextutils.WrapError(err, "failed to create session"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// Logout handles moderator logout requests
func (h *AuthHandler) Logout(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "logout")
	defer observability.FinishSpan(span, nil)

	session := sessions.Default(c)
	if username := session.Get(middleware.AdminUsernameKey); username != nil {
		if usernameStr, ok := username.(string); ok {
			span.SetAttributes(attribute.String("auth.username", usernameStr))
		}
	}

	session.Clear()

	if err := session.Save(); err != nil {
		HandleAppError(c, contextutils.WrapError(err, "failed to clear session"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Status returns the current authentication status
func (h *AuthHandler) Status(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "status")
	defer observability.FinishSpan(span, nil)

	session := sessions.Default(c)
	userID := session.Get(middleware.AdminUserIDKey)
	username := session.Get(middleware.AdminUsernameKey)

	userIDInt, idOK := userID.(int)
	usernameStr, nameOK := username.(string)
	if !idOK || !nameOK || usernameStr == "" {
		span.SetAttributes(attribute.Bool("auth.authenticated", false))
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"user":          nil,
		})
		return
	}

	span.SetAttributes(
		attribute.Bool("auth.authenticated", true),
		attribute.String("auth.username", usernameStr),
	)

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":       userIDInt,
			"username": usernameStr,
		},
	})
}
