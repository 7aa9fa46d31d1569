package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/service"
	"peerlearn.app/server/pkg/response"
	"peerlearn.app/server/pkg/validator"
)

type StudyRoomHandler struct {
	roomService service.StudyRoomService
}

func NewStudyRoomHandler(roomService service.StudyRoomService) *StudyRoomHandler {
	return &StudyRoomHandler{roomService: roomService}
}

func (h *StudyRoomHandler) CreateRoom(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input service.CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), accountID.String(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": room})
}

func (h *StudyRoomHandler) GetRoom(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), accountID.String(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": room})
}

func (h *StudyRoomHandler) ListUpcoming(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	rooms, err := h.roomService.ListUpcoming(c.Request.Context(), accountID.String(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

func (h *StudyRoomHandler) ListMine(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	rooms, err := h.roomService.ListMine(c.Request.Context(), accountID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

func (h *StudyRoomHandler) CancelRoom(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.roomService.CancelRoom(c.Request.Context(), accountID.String(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room cancelled"})
}
