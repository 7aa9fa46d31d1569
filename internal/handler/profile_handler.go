package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/service"
	"peerlearn.app/server/pkg/response"
	"peerlearn.app/server/pkg/validator"
)

const maxAvatarSize = 5 << 20 // 5 MB

type ProfileHandler struct {
	profileService service.ProfileService
	searchService  service.SearchService
}

func NewProfileHandler(profileService service.ProfileService, searchService service.SearchService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		searchService:  searchService,
	}
}

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), accountID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input service.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), accountID.String(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	if fileHeader.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar must be smaller than 5MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	profile, err := h.profileService.UploadAvatar(c.Request.Context(), accountID.String(), file, fileHeader.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// SearchPeers is the discovery endpoint behind the dashboard's peer finder.
func (h *ProfileHandler) SearchPeers(c *gin.Context) {
	var params service.PeerSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	hits, err := h.searchService.SearchPeers(params)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": hits})
}
