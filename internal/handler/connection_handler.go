package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/service"
	"peerlearn.app/server/pkg/response"
	"peerlearn.app/server/pkg/validator"
)

type ConnectionHandler struct {
	connectionService service.ConnectionService
}

func NewConnectionHandler(connectionService service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

type requestConnectionInput struct {
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
}

func (h *ConnectionHandler) RequestConnection(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input requestConnectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	conn, err := h.connectionService.RequestConnection(c.Request.Context(), accountID.String(), input.ReceiverID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": conn})
}

func (h *ConnectionHandler) AcceptConnection(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.connectionService.AcceptConnection(c.Request.Context(), accountID.String(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conn})
}

func (h *ConnectionHandler) DeclineConnection(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.connectionService.DeclineConnection(c.Request.Context(), accountID.String(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conn})
}

func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	conns, err := h.connectionService.ListConnections(c.Request.Context(), accountID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conns})
}
