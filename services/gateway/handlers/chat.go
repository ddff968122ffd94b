// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the gin handlers for the gateway: the unary
// chat endpoint, the WebSocket streaming endpoint, and the pass-through
// proxy routes.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
	"github.com/antigravity/edge-gateway/services/gateway/observability"
	"github.com/antigravity/edge-gateway/services/gateway/upstream"
)

var chatTracer = otel.Tracer("antigravity.gateway.handlers")

// HandleChat serves the unary chat endpoint. It forwards the request to the
// agent service and translates the reply to the client wire shape. Any
// upstream-class failure is absorbed by the fallback policy: the endpoint
// answers 200 whenever the inbound request itself is well-formed, so client
// liveness checks never break on upstream downtime.
func HandleChat(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()

		var req datatypes.ChatRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse chat request", "error", err)
			if metrics != nil {
				metrics.RecordError(observability.EndpointChat, observability.ErrorCodeDecodeFailed)
				metrics.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Warn("Chat request failed validation", "error", err)
			if metrics != nil {
				metrics.RecordError(observability.EndpointChat, observability.ErrorCodeDecodeFailed)
				metrics.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		slog.Info("Chat request", "query_len", len(req.Query), "conversation_id", req.ConversationID)

		start := time.Now()
		reply, err := client.Chat(ctx, &req)
		if metrics != nil {
			metrics.RecordUpstreamLatency("/chat", time.Since(start).Seconds())
		}
		if err != nil {
			// The failure detail stays in the logs; the caller gets the
			// canned fallback body with a 200.
			slog.Warn("Agent service unavailable, using fallback", "error", err)
			span.RecordError(err)
			if metrics != nil {
				metrics.RecordError(observability.EndpointChat, classifyUpstreamError(err))
				metrics.RecordFallback()
				metrics.RecordRequest(observability.EndpointChat, true)
			}
			c.JSON(http.StatusOK, fallbackResponse(&req))
			return
		}

		if metrics != nil {
			metrics.RecordRequest(observability.EndpointChat, true)
		}
		c.JSON(http.StatusOK, translateReply(reply))
	}
}
