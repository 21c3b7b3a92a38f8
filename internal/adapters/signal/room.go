package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Punk/internal/domain"
	"github.com/dkeye/Punk/internal/metrics"
	"github.com/rs/zerolog/log"
)

// handleMessage drops invalid or rate-limited sends without telling the
// sender; a successful send comes back through the room broadcast.
func (ctl *SignalWSController) handleMessage(cl *client, data []byte) {
	var p struct {
		Message string             `json:"message"`
		File    *domain.Attachment `json:"file,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad message payload")
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(cl.user.ID) {
		metrics.RateLimitHits.Inc()
		log.Debug().Str("module", "signal").Str("sid", string(cl.sid)).Msg("send rate limited")
		return
	}
	if _, err := ctl.Orch.Send(cl.user.ID, cl.room, p.Message, p.File); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(cl.sid)).Msg("send dropped")
	}
}

func (ctl *SignalWSController) handleDelete(ctx context.Context, cl *client, data []byte) {
	var p struct {
		Index     *int     `json:"index"`
		Timestamp *float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Index == nil || p.Timestamp == nil {
		ctl.sendJSON(cl.conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}
	if err := ctl.Orch.DeleteMessage(ctx, cl.user.ID, cl.room, *p.Index, *p.Timestamp); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(cl.sid)).Int("index", *p.Index).Msg("delete refused")
		frame := errorFrame(err)
		frame["index"] = *p.Index
		ctl.sendJSON(cl.conn, frame)
	}
}
