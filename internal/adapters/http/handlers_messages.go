package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
)

func (h *Handler) listMessages(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	msgs, err := h.Orch.Feed(code, currentUser(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": code, "messages": msgs})
}

type sendRequest struct {
	Message string             `json:"message"`
	File    *domain.Attachment `json:"file"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, core.ErrValidation)
		return
	}
	sent, err := h.Orch.Send(currentUser(c).ID, domain.RoomCode(c.Param("code")), req.Message, req.File)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"index": sent.Index, "message": sent.Message})
}

func (h *Handler) deleteMessage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: index %q", core.ErrValidation, c.Param("index")))
		return
	}
	ts, err := strconv.ParseFloat(c.Query("timestamp"), 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: timestamp required", core.ErrValidation))
		return
	}
	if err := h.Orch.DeleteMessage(c.Request.Context(), currentUser(c).ID, domain.RoomCode(c.Param("code")), index, ts); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
