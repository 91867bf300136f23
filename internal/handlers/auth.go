package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/mathsoc-club/backend/internal/auth"
	"github.com/mathsoc-club/backend/internal/middleware"
	"github.com/mathsoc-club/backend/internal/models"
	"github.com/mathsoc-club/backend/pkg/errors"
	"github.com/mathsoc-club/backend/pkg/metrics"
	"github.com/mathsoc-club/backend/pkg/response"
)

// AuthHandler manages the admin login flow.
type AuthHandler struct {
	db  *gorm.DB
	jwt *iauth.JWTService
}

func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwt}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		response.Error(c, errors.NewBadRequest("username is required"))
		return
	}

	var user models.User
	err := h.db.WithContext(requestContext(c)).
		Where("username = ?", req.Username).
		Take(&user).Error
	if err != nil || !iauth.CheckPassword(user.PasswordHash, req.Password) {
		// Normalise lookup and password failures to 401
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"is_admin": user.IsAdmin,
		},
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	value, ok := c.Get(middleware.CtxClaimsKey)
	claims, valid := value.(*iauth.Claims)
	if !ok || !valid {
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":       claims.UserID,
		"username": claims.Username,
		"is_admin": claims.IsAdmin,
	})
}
