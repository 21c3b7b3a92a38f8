package signal

import (
	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
)

func (ctl *SignalWSController) handleWhoAmI(cl *client) {
	resp := struct {
		Type        string           `json:"type"`
		ID          domain.UserID    `json:"id"`
		DisplayName string           `json:"display_name"`
		Room        domain.RoomCode  `json:"room"`
		Title       string           `json:"title,omitempty"`
		Online      []core.MemberDTO `json:"online,omitempty"`
	}{
		Type:        "whoami",
		ID:          cl.user.ID,
		DisplayName: cl.user.DisplayName,
		Room:        cl.room,
	}
	if view, err := ctl.Orch.GetRoom(cl.room, cl.user.ID); err == nil {
		resp.Title = view.Title
		resp.Online = view.Online
	}
	ctl.sendJSON(cl.conn, resp)
}
