package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/metrics"
	"peerlearn.app/server/internal/service"
	"peerlearn.app/server/internal/signup"
	"peerlearn.app/server/pkg/apperror"
	"peerlearn.app/server/pkg/response"
	"peerlearn.app/server/pkg/validator"
)

// FlowCookieName tracks an in-progress signup across requests.
const FlowCookieName = "pl_signup"

type SignupHandler struct {
	signupService service.SignupService
	flowTTL       time.Duration
	secure        bool
}

func NewSignupHandler(signupService service.SignupService, flowTTL time.Duration, secure bool) *SignupHandler {
	return &SignupHandler{
		signupService: signupService,
		flowTTL:       flowTTL,
		secure:        secure,
	}
}

// Start creates a fresh flow at stage one and hands back its cookie.
func (h *SignupHandler) Start(c *gin.Context) {
	flow, err := h.signupService.Start(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setFlowCookie(c, flow.ID)
	c.JSON(http.StatusOK, gin.H{"data": flow})
}

// Identity submits stage one. No account exists after this call.
func (h *SignupHandler) Identity(c *gin.Context) {
	var input service.IdentityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	flowID, _ := c.Cookie(FlowCookieName)
	flow, err := h.signupService.SubmitIdentity(c.Request.Context(), flowID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setFlowCookie(c, flow.ID)
	c.JSON(http.StatusOK, gin.H{"data": flow})
}

// Back returns to stage one keeping everything already entered.
func (h *SignupHandler) Back(c *gin.Context) {
	flowID, err := h.flowID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	flow, err := h.signupService.Back(c.Request.Context(), flowID)
	if err != nil {
		h.flowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": flow})
}

func (h *SignupHandler) State(c *gin.Context) {
	flowID, err := h.flowID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	flow, err := h.signupService.State(c.Request.Context(), flowID)
	if err != nil {
		h.flowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": flow})
}

// Complete submits stage two and commits the account and profile.
func (h *SignupHandler) Complete(c *gin.Context) {
	var input service.AcademicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	flowID, err := h.flowID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.signupService.Complete(c.Request.Context(), flowID, input)
	if err != nil {
		h.flowError(c, err)
		return
	}

	metrics.SignupsCompleted.Inc()
	h.clearFlowCookie(c)
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (h *SignupHandler) flowID(c *gin.Context) (string, error) {
	flowID, err := c.Cookie(FlowCookieName)
	if err != nil || flowID == "" {
		return "", fmt.Errorf("no signup in progress: %w", apperror.ErrBadRequest)
	}
	return flowID, nil
}

func (h *SignupHandler) flowError(c *gin.Context, err error) {
	if errors.Is(err, signup.ErrFlowNotFound) {
		h.clearFlowCookie(c)
		c.JSON(http.StatusNotFound, gin.H{"error": "signup flow expired, please start over"})
		return
	}
	response.Error(c, err)
}

func (h *SignupHandler) setFlowCookie(c *gin.Context, flowID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlowCookieName, flowID, int(h.flowTTL.Seconds()), "/", "", h.secure, true)
}

func (h *SignupHandler) clearFlowCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlowCookieName, "", -1, "/", "", h.secure, true)
}
