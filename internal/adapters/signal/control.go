package signal

import (
	"errors"

	"github.com/dkeye/Punk/internal/core"
)

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	case errors.Is(err, core.ErrConflict):
		return "conflict"
	case errors.Is(err, core.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, core.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, core.ErrValidation):
		return "invalid"
	default:
		return "internal"
	}
}

func errorFrame(err error) map[string]any {
	return map[string]any{
		"type":  "error",
		"error": errorCode(err),
	}
}
