package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/aristath/skusim/internal/modules/presentation"
	"github.com/aristath/skusim/internal/modules/projection"
)

const liveWriteTimeout = 5 * time.Second

// LiveReply is sent back for every input message on the live socket.
// Exactly one of View or Error is set.
type LiveReply struct {
	ID     string             `json:"id,omitempty"`
	View   *presentation.View `json:"view,omitempty"`
	Error  string             `json:"error,omitempty"`
	Fields map[string]string  `json:"fields,omitempty"`
}

// HandleLive handles GET /api/projection/live
//
// Every text message is a complete projection input; each one is answered with a freshly
// computed view, so a form can recompute on every parameter change.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	// Hijacked connections inherit the server's read/write deadlines.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to accept live connection")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected shutdown")
	conn.SetReadLimit(maxBodyBytes)

	h.log.Info().Str("remote", r.RemoteAddr).Msg("Live projection session opened")

	ctx := r.Context()
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				h.log.Info().Msg("Live projection session closed")
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if !errors.Is(err, context.Canceled) {
				h.log.Warn().Err(err).Msg("Live projection read failed")
			}
			return
		}

		if msgType != websocket.MessageText {
			if err := h.writeLive(ctx, conn, LiveReply{Error: "Only text messages are supported"}); err != nil {
				return
			}
			continue
		}

		if err := h.writeLive(ctx, conn, h.liveReply(data)); err != nil {
			h.log.Warn().Err(err).Msg("Live projection write failed")
			return
		}
	}
}

func (h *Handler) liveReply(data []byte) LiveReply {
	in, err := parseInput(data)
	if err != nil {
		return LiveReply{Error: "Invalid input message"}
	}

	if err := projection.Validate(in); err != nil {
		reply := LiveReply{Error: err.Error()}
		var verr *projection.ValidationError
		if errors.As(err, &verr) {
			reply.Fields = verr.Fields
		}
		return reply
	}

	id, res := h.compute(in)
	view := presentation.BuildView(in, res)
	return LiveReply{ID: id, View: &view}
}

func (h *Handler) writeLive(ctx context.Context, conn *websocket.Conn, reply LiveReply) error {
	payload, err := json.Marshal(reply)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, liveWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, payload)
}
