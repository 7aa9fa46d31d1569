package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/service"
	"peerlearn.app/server/internal/session"
	"peerlearn.app/server/pkg/response"
	"peerlearn.app/server/pkg/validator"
)

type AuthHandler struct {
	authService service.AuthService
	cookieTTL   time.Duration
	secure      bool
}

func NewAuthHandler(authService service.AuthService, cookieTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieTTL:   cookieTTL,
		secure:      secure,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.SessionToken)
	c.JSON(http.StatusOK, gin.H{
		"data":        result,
		"redirect_to": "/dashboard",
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(session.CookieName)
	if token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			response.Error(c, err)
			return
		}
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "redirect_to": "/auth/login"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	account, err := h.authService.CurrentAccount(c.Request.Context(), accountID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Email verified. You can sign in now.",
		"redirect_to": "/auth/login",
	})
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.authService.GoogleLoginURL())
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state and code are required"})
		return
	}

	result, err := h.authService.GoogleCallback(c.Request.Context(), state, code)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.SessionToken)
	c.Redirect(http.StatusTemporaryRedirect, "/dashboard")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(h.cookieTTL.Seconds()), "/", "", h.secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", h.secure, true)
}
