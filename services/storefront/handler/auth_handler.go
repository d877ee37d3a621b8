package handler

import (
	"net/http"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/models"
	"auction-storefront/services/common"
	"auction-storefront/services/storefront/helpers"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// signedIn returns the current user or writes a 401
func signedIn(c *gin.Context, handlerName string) (*models.User, bool) {
	user, ok := common.CurrentUser(c)
	if !ok {
		common.RespondError(c, handlerName, biddingerrors.ErrUnauthorized, map[string]any{"path": c.Request.URL.Path})
		return nil, false
	}
	return user, true
}

// RegisterHandler handles POST /auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "RegisterHandler", err)
		return
	}

	session, err := h.service.Register(req.Name, req.Email, req.Password)
	if err != nil {
		common.RespondError(c, "RegisterHandler", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewSessionResponse(session), "account created")
	common.LogSuccess("RegisterHandler", "account created", map[string]any{"user_id": session.User.UserID})
}

// LoginHandler handles POST /auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		common.RespondError(c, "LoginHandler", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewSessionResponse(session), "signed in")
	common.LogSuccess("LoginHandler", "signed in", map[string]any{"user_id": session.User.UserID})
}

// LogoutHandler handles POST /auth/logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	token := common.BearerToken(c)
	if token == "" {
		common.RespondError(c, "LogoutHandler", biddingerrors.ErrUnauthorized, nil)
		return
	}

	if err := h.service.Logout(token); err != nil {
		common.RespondError(c, "LogoutHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "signed out")
}

// MeHandler handles GET /auth/me
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, ok := signedIn(c, "MeHandler")
	if !ok {
		return
	}
	utils.JSONResponse(c, http.StatusOK, user, "current user retrieved successfully")
}
