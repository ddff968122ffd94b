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
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/antigravity/edge-gateway/services/gateway/observability"
	"github.com/antigravity/edge-gateway/services/gateway/upstream"
)

// Pass-through routes to the agent service. They share one convention:
// upstream transport failures answer 503, undecodable upstream bodies 500.
// Unlike the chat path there is no fallback masking here; callers of these
// routes need to see upstream health.

// actionCatalogue is the static local action listing served by
// GET /api/actions. It describes what the gateway knows how to forward,
// so it never requires an upstream round trip.
type actionCatalogue struct {
	AvailableActions []string `json:"availableActions"`
	EntityTypes      []string `json:"entityTypes"`
	Sources          []string `json:"sources"`
}

var localActions = actionCatalogue{
	AvailableActions: []string{
		"ticket.status.update",
		"ticket.assignee.update",
		"ticket.comment.add",
		"pr.approve",
		"pr.request_changes",
		"pr.merge",
		"alert.acknowledge",
		"alert.resolve",
		"workflow.execute",
	},
	EntityTypes: []string{"ticket", "pr", "alert", "workflow"},
	Sources:     []string{"jira", "github", "pagerduty", "internal"},
}

// HandleListActions serves the static action catalogue.
func HandleListActions() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, localActions)
	}
}

// proxyError maps an upstream client failure onto the shared proxy status
// convention and records it.
func proxyError(c *gin.Context, metrics *observability.GatewayMetrics, route string, err error) {
	upErr, ok := upstream.AsError(err)
	if ok && upErr.Kind == upstream.KindParseFailed {
		slog.Error("Failed to parse upstream response", "route", route, "error", err)
		if metrics != nil {
			metrics.RecordError(observability.EndpointProxy, observability.ErrorCodeParseFailed)
			metrics.RecordRequest(observability.EndpointProxy, false)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse upstream response"})
		return
	}
	slog.Error("Agent service call failed", "route", route, "error", err)
	if metrics != nil {
		metrics.RecordError(observability.EndpointProxy, classifyUpstreamError(err))
		metrics.RecordRequest(observability.EndpointProxy, false)
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "agent service unavailable"})
}

// proxyGet builds a handler forwarding GET {base}{path} with the listed
// query parameters copied through from the inbound request.
func proxyGet(client *upstream.Client, metrics *observability.GatewayMetrics, path string, queryKeys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := url.Values{}
		for _, key := range queryKeys {
			if v := c.Query(key); v != "" {
				query.Set(key, v)
			}
		}

		start := time.Now()
		raw, _, err := client.GetJSON(c.Request.Context(), path, query)
		if metrics != nil {
			metrics.RecordUpstreamLatency(path, time.Since(start).Seconds())
		}
		if err != nil {
			proxyError(c, metrics, path, err)
			return
		}
		if metrics != nil {
			metrics.RecordRequest(observability.EndpointProxy, true)
		}
		c.Data(http.StatusOK, "application/json", raw)
	}
}

// proxyPost builds a handler forwarding a JSON body to POST {base}{path}.
func proxyPost(client *upstream.Client, metrics *observability.GatewayMetrics, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body json.RawMessage
		if err := c.BindJSON(&body); err != nil {
			slog.Warn("Undecodable proxy request body", "route", path, "error", err)
			if metrics != nil {
				metrics.RecordError(observability.EndpointProxy, observability.ErrorCodeDecodeFailed)
				metrics.RecordRequest(observability.EndpointProxy, false)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		start := time.Now()
		raw, _, err := client.PostJSON(c.Request.Context(), path, body)
		if metrics != nil {
			metrics.RecordUpstreamLatency(path, time.Since(start).Seconds())
		}
		if err != nil {
			proxyError(c, metrics, path, err)
			return
		}
		if metrics != nil {
			metrics.RecordRequest(observability.EndpointProxy, true)
		}
		c.Data(http.StatusOK, "application/json", raw)
	}
}

// HandleExecuteAction forwards action write-backs to POST {base}/action.
func HandleExecuteAction(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	return proxyPost(client, metrics, "/action")
}

// HandleListTools forwards tool discovery to GET {base}/tools.
func HandleListTools(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	return proxyGet(client, metrics, "/tools", "userId", "projectId")
}

// HandleExecuteTool forwards tool execution to POST {base}/tools/execute.
func HandleExecuteTool(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	return proxyPost(client, metrics, "/tools/execute")
}

// HandleListProjects forwards to GET {base}/projects.
func HandleListProjects(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	return proxyGet(client, metrics, "/projects")
}

// HandleGetProject forwards a project lookup, passing an upstream 404
// through to the caller instead of collapsing it into 503.
func HandleGetProject(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := "/projects/" + c.Param("id")

		start := time.Now()
		raw, _, err := client.GetJSON(c.Request.Context(), path, nil)
		if metrics != nil {
			metrics.RecordUpstreamLatency("/projects/:id", time.Since(start).Seconds())
		}
		if err != nil {
			if upErr, ok := upstream.AsError(err); ok &&
				upErr.Kind == upstream.KindBadStatus && upErr.Status == http.StatusNotFound {
				if metrics != nil {
					metrics.RecordRequest(observability.EndpointProxy, false)
				}
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			proxyError(c, metrics, "/projects/:id", err)
			return
		}
		if metrics != nil {
			metrics.RecordRequest(observability.EndpointProxy, true)
		}
		c.Data(http.StatusOK, "application/json", raw)
	}
}

// HandleListEndpoints forwards endpoint listing; projectId is mandatory.
func HandleListEndpoints(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	forward := proxyGet(client, metrics, "/endpoints", "projectId")
	return func(c *gin.Context) {
		if c.Query("projectId") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "projectId is required"})
			return
		}
		forward(c)
	}
}

// HandleBrainSearch forwards knowledge search to POST {base}/brain/search.
func HandleBrainSearch(client *upstream.Client, metrics *observability.GatewayMetrics) gin.HandlerFunc {
	return proxyPost(client, metrics, "/brain/search")
}
