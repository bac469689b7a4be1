// Package ws is the live draft assistant. A client streams complete draft
// snapshots during a real draft and gets a full recommendation back per
// frame; nothing is kept between frames, so a dropped connection loses
// nothing.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/draftlab/mlbb-draft-backend/internal/engine"
	"github.com/draftlab/mlbb-draft-backend/internal/pool"
	"github.com/draftlab/mlbb-draft-backend/pkg/types"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 3 * time.Second
	frameBudget  = 250 * time.Millisecond
)

type Handler struct {
	eng   *engine.Engine
	store *pool.Store
	log   *zap.Logger
}

func NewHandler(eng *engine.Engine, store *pool.Store, log *zap.Logger) *Handler {
	return &Handler{eng: eng, store: store, log: log}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	for {
		ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
		_, data, err := conn.Read(ctx)
		cancel()
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			h.send(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
			continue
		}
		h.send(r.Context(), conn, h.dispatch(r.Context(), &cm))
	}
}

func (h *Handler) dispatch(ctx context.Context, cm *types.ClientMessage) types.ServerMessage {
	// Snapshot-at-entry per frame, same as the HTTP surface.
	snap := h.store.Snapshot()

	switch cm.Type {
	case "Recommend":
		if cm.Recommend == nil {
			return types.ServerMessage{Type: "Error", Error: "missing recommend payload"}
		}
		fctx, cancel := context.WithTimeout(ctx, frameBudget)
		defer cancel()
		rec, err := h.eng.Recommend(fctx, snap,
			engine.StateFromRequest(cm.Recommend),
			engine.LookaheadFromRequest(cm.Recommend.Lookahead))
		if err != nil {
			return types.ServerMessage{Type: "Error", Error: err.Error()}
		}
		return envelope("Recommendation", rec)

	case "Assign":
		if cm.Assign == nil {
			return types.ServerMessage{Type: "Error", Error: "missing assign payload"}
		}
		assignment, err := h.eng.AssignHeroes(snap, engine.HeroesFromAssignRequest(cm.Assign))
		if err != nil {
			return types.ServerMessage{Type: "Error", Error: err.Error()}
		}
		return envelope("Assignment", assignment)

	default:
		return types.ServerMessage{Type: "Error", Error: "unknown type"}
	}
}

func envelope(kind string, payload any) types.ServerMessage {
	raw, err := json.Marshal(payload)
	if err != nil {
		return types.ServerMessage{Type: "Error", Error: "encode failed"}
	}
	return types.ServerMessage{Type: kind, Payload: raw}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, payload); err != nil {
		h.log.Debug("ws write failed", zap.Error(err))
	}
}
