package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"viral-reward/internal/core/port"
)

const writeWait = 10 * time.Second

// liveFrame is pushed on connect and after every relevant change. Data
// holds the full current result, so a client never has to merge deltas.
type liveFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handleLiveSubmissions streams the result of the submissions query with
// the same filter as GET /submissions.
func (h *Handler) handleLiveSubmissions(w http.ResponseWriter, r *http.Request) {
	f, err := submissionFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor := actorFrom(r.Context())
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.svc.WatchSubmissions(ctx, actor, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.serveLive(ctx, cancel, w, r, sub, func(ctx context.Context) (any, error) {
		subs, err := h.svc.ListSubmissions(ctx, actor, f)
		if err != nil {
			return nil, err
		}
		return toSubmissionsResp(subs), nil
	})
}

// handleLiveAccount streams the caller's account, balance included.
func (h *Handler) handleLiveAccount(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.svc.WatchAccount(ctx, actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.serveLive(ctx, cancel, w, r, sub, func(ctx context.Context) (any, error) {
		acc, err := h.svc.GetAccount(ctx, actor)
		if err != nil {
			return nil, err
		}
		return toAccountResp(acc), nil
	})
}

// serveLive upgrades the connection, sends a snapshot and then a fresh one
// each time sub fires. It returns when the client goes away, ctx ends or
// the subscription closes.
func (h *Handler) serveLive(
	ctx context.Context,
	cancel context.CancelFunc,
	w http.ResponseWriter,
	r *http.Request,
	sub port.Subscription,
	snapshot func(context.Context) (any, error),
) {
	defer sub.Close()

	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	// The read side only serves control frames; it also notices the
	// client leaving.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(2 * h.ping))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * h.ping))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() bool {
		data, err := snapshot(ctx)
		if err != nil {
			status, body := publicError(err)
			if status == http.StatusInternalServerError {
				h.logger.Error("live snapshot failed", slog.Any("error", err))
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteJSON(liveFrame{Type: "error", Data: body})
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(liveFrame{Type: "snapshot", Data: data}) == nil
	}
	if !push() {
		return
	}

	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case _, ok := <-sub.Changes():
			if !ok || !push() {
				return
			}
		}
	}
}

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(h.origins, origin) || slices.Contains(h.origins, "*")
		},
	}
}
