package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"peerlearn.app/server/internal/service"
	"peerlearn.app/server/pkg/response"
	"peerlearn.app/server/pkg/validator"
)

type NoteHandler struct {
	noteService service.NoteService
}

func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input service.CreateNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	note, err := h.noteService.CreateNote(c.Request.Context(), accountID.String(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": note})
}

func (h *NoteHandler) GetNote(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, err := h.noteService.GetNote(c.Request.Context(), accountID.String(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}

func (h *NoteHandler) ListNotes(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	notes, err := h.noteService.ListNotes(c.Request.Context(), accountID.String(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notes})
}

func (h *NoteHandler) ListMine(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	notes, err := h.noteService.ListMine(c.Request.Context(), accountID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notes})
}

func (h *NoteHandler) Download(c *gin.Context) {
	accountID, err := response.GetAccountID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, err := h.noteService.Download(c.Request.Context(), accountID.String(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": note})
}
