package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"billed/api/internal/middleware"
	"billed/api/internal/models"
	"billed/api/internal/routes"
	"billed/api/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Type     string `json:"type"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userPayload struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     models.UserRole(req.Type),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, authPayload(result))
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if errors.Is(err, service.ErrUserSuspended) {
			c.JSON(http.StatusForbidden, gin.H{"error": "account suspended"})
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur 500"})
		return
	}

	c.JSON(http.StatusOK, authPayload(result))
}

func (h HandlerSet) Logout(c *gin.Context) {
	sessionID := c.GetString(middleware.CtxSessionID)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur 500"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect": routes.LoginPath})
}

// authPayload shapes a login/register result: the token, the serialized
// user record the client keeps, and where navigation should land.
func authPayload(result service.AuthResult) gin.H {
	home, _ := routes.Lookup(routes.Home(result.User.Role))
	return gin.H{
		"accessToken": result.AccessToken,
		"user": userPayload{
			Email: result.User.Email,
			Type:  string(result.User.Role),
		},
		"redirect": home.Path,
	}
}
