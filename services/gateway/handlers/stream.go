// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
	"github.com/antigravity/edge-gateway/services/gateway/observability"
	"github.com/antigravity/edge-gateway/services/gateway/upstream"
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The gateway fronts a local web client; origin policy is
		// enforced by the CORS middleware on the HTTP surface.
		return true
	},
}

// wsFrameWriter adapts a websocket connection to the pacer's frameWriter.
type wsFrameWriter struct {
	conn *websocket.Conn
}

func (w *wsFrameWriter) WriteFrame(frame datatypes.StreamFrame) error {
	return w.conn.WriteJSON(frame)
}

// HandleStream upgrades the connection and runs the streaming session loop.
//
// Each inbound text message is one StreamRequest; the session processes it
// to completion (terminal frame or aborted write) before reading the next,
// so frames from different turns never interleave on one connection. A
// message that fails to decode gets an Error frame and the session keeps
// reading. A close message or transport error ends the loop.
func HandleStream(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("WebSocket upgrade failed", "error", err)
			return
		}
		defer ws.Close()

		connID := uuid.New().String()
		logger := slog.With("conn_id", connID)
		logger.Info("Stream connection established", "remote_addr", ws.RemoteAddr().String())

		if metrics != nil {
			metrics.StreamOpened()
			defer metrics.StreamClosed()
		}

		p := newPacer(client, metrics)
		writer := &wsFrameWriter{conn: ws}

		for {
			msgType, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Warn("Stream connection error", "error", err)
				} else {
					logger.Info("Stream connection closed")
				}
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}

			var req datatypes.StreamRequest
			if err := json.Unmarshal(data, &req); err != nil {
				logger.Warn("Undecodable stream request", "error", err)
				if metrics != nil {
					metrics.RecordError(observability.EndpointStream, observability.ErrorCodeDecodeFailed)
				}
				if werr := writer.WriteFrame(datatypes.ErrorFrame("invalid request: " + err.Error())); werr != nil {
					logger.Debug("Error frame write failed", "error", werr)
					return
				}
				continue
			}

			logger.Info("Stream turn started", "query_len", len(req.Query), "conversation_id", req.ConversationID)
			p.Stream(c.Request.Context(), &req, writer)
			if metrics != nil {
				metrics.RecordRequest(observability.EndpointStream, true)
			}
		}
	}
}
