package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/service"
	"peerlearn.app/server/pkg/response"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	profileService   service.ProfileService
}

func NewDashboardHandler(dashboardService service.DashboardService, profileService service.ProfileService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		profileService:   profileService,
	}
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), accountID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	// visiting the dashboard counts as activity
	_ = h.profileService.TouchLastActive(c.Request.Context(), accountID.String())

	c.JSON(http.StatusOK, gin.H{"data": dashboard})
}
