/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Seednode/sketchbook/games"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxClientFrame = 512
)

// CheckOrigin is left nil so gorilla rejects cross-origin upgrades.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type socketMessage struct {
	Type string `json:"type"`
	*games.Snapshot
	Message string `json:"message,omitempty"`
}

// serveSocket streams a snapshot of the room, plus the caller's task, every
// time the room changes. The stream is read-only; actions go through the API.
func (sb *sketchbook) serveSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uid, ok := sb.player(w, r)
	if !ok {
		return
	}
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	rooms, err := sb.games.Subscribe(ctx, code)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logf(sb.cfg, "SOCKET", "Upgrade failed for %s: %v", realIP(r), err)
		return
	}
	defer conn.Close()

	logf(sb.cfg, "SOCKET", "%s watching room %s", uid, code)

	go readPump(conn, cancel)

	sb.writePump(ctx, conn, rooms, uid)

	logf(sb.cfg, "SOCKET", "%s left room %s", uid, code)
}

// readPump discards client frames and keeps the pong deadline fresh. Any read
// error ends the session.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxClientFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (sb *sketchbook) writePump(ctx context.Context, conn *websocket.Conn, rooms <-chan games.Room, uid string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case room, ok := <-rooms:
			if !ok {
				return
			}

			msg := socketMessage{Type: "snapshot"}

			snap, err := sb.games.Snapshot(ctx, room, uid)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				sb.cfg.log.Warn().Err(err).Str("room", room.RoomID).Str("uid", uid).Msg("snapshot failed")
				msg = socketMessage{Type: "error", Message: "could not load your task, retrying on next update"}
			} else {
				msg.Snapshot = &snap
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
