package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gopher-classifieds/internal/app"
	"gopher-classifieds/internal/transport/http/middleware"
	"gopher-classifieds/internal/transport/http/response"
)

const defaultRedirect = "/index"

type AuthHandler struct {
	authService *app.AuthService
	cookieName  string
}

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

func NewAuthHandler(authService *app.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName}
}

// Register creates the account and sends the user to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	var req app.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		response.Invalid(c, app.BindErrors(err), gin.H{"form": gin.H{"username": req.Username, "email": req.Email}})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		if verrs, ok := app.AsValidationErrors(err); ok {
			response.Invalid(c, verrs, gin.H{"form": gin.H{"username": req.Username, "email": req.Email}})
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "register failed")
		return
	}

	response.Message(c, "registered, please log in", gin.H{
		"redirect": "/login",
		"user":     userView(user.ID, user.Username, user.Email),
	})
}

// LoginPage tells an already signed-in caller where to go.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentUserID(c) != 0 {
		response.OK(c, gin.H{"authenticated": true, "redirect": defaultRedirect})
		return
	}
	response.OK(c, gin.H{"authenticated": false, "next": safeNext(c.Query("next"))})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "username and password are required")
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, result.Token, maxAge, "/", "", false, true)

	response.OK(c, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"redirect":   safeNext(req.Next),
		"user":       userView(result.User.ID, result.User.Username, result.User.Email),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "logout failed")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	response.OK(c, gin.H{"redirect": defaultRedirect})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch current user failed")
		return
	}
	if user == nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found")
		return
	}

	response.OK(c, userView(user.ID, user.Username, user.Email))
}

// safeNext only follows local paths so a crafted link cannot bounce the user
// to another site after login.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return defaultRedirect
	}
	return next
}

func userView(id uint, username, email string) gin.H {
	return gin.H{
		"id":       id,
		"username": username,
		"email":    email,
	}
}
