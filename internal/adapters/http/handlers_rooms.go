package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
)

type createSessionRequest struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// createSession issues a guest identity. An empty name gets a tripcode.
func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, core.ErrValidation)
			return
		}
	}
	u, err := domain.NewUser(req.DisplayName, req.Avatar)
	if err != nil {
		abortWithError(c, err)
		return
	}
	token, err := h.Issuer.Issue(*u)
	if err != nil {
		abortWithError(c, err)
		return
	}
	user := h.Orch.Users.Upsert(*u)

	sess := sessions.Default(c)
	sess.Set(sessionTokenKey, token)
	if err := sess.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	log.Info().Str("module", "adapters.http").Str("user", string(user.ID)).Msg("guest session issued")
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func (h *Handler) whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *Handler) listPublicRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Orch.ListPublicRooms()})
}

func (h *Handler) searchRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Orch.SearchPublicRooms(c.Query("q"))})
}

type createRoomRequest struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Public bool   `json:"public"`
}

func (h *Handler) createRoom(c *gin.Context) {
	var req createRoomRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, core.ErrValidation)
			return
		}
	}
	view, err := h.Orch.CreateRoom(domain.RoomCode(req.Code), req.Title, req.Public, currentUser(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) getRoom(c *gin.Context) {
	view, err := h.Orch.GetRoom(domain.RoomCode(c.Param("code")), currentUser(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) openPrivateRoom(c *gin.Context) {
	view, err := h.Orch.OpenPrivateRoom(currentUser(c).ID, domain.UserID(c.Param("userId")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) recentChats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chats": h.Orch.RecentChats(currentUser(c).ID)})
}

func (h *Handler) notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.Orch.Notifications(currentUser(c).ID)})
}

func (h *Handler) markNotificationsSeen(c *gin.Context) {
	if err := h.Orch.MarkNotificationsSeen(currentUser(c).ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
