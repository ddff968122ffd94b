// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/antigravity/edge-gateway/services/gateway/handlers"
	"github.com/antigravity/edge-gateway/services/gateway/observability"
	"github.com/antigravity/edge-gateway/services/gateway/upstream"
)

// SetupRoutes registers every gateway endpoint on the router. The upstream
// client is shared across all handlers so connection pooling works.
func SetupRoutes(router *gin.Engine, client *upstream.Client, metrics *observability.GatewayMetrics) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/ws/agent/stream", handlers.HandleStream(client, metrics))

	api := router.Group("/api")
	{
		api.POST("/agent/chat", handlers.HandleChat(client, metrics))

		api.GET("/actions", handlers.HandleListActions())
		api.POST("/actions", handlers.HandleExecuteAction(client, metrics))

		api.GET("/tools", handlers.HandleListTools(client, metrics))
		api.POST("/tools/execute", handlers.HandleExecuteTool(client, metrics))

		api.GET("/projects", handlers.HandleListProjects(client, metrics))
		api.GET("/projects/:id", handlers.HandleGetProject(client, metrics))
		api.GET("/endpoints", handlers.HandleListEndpoints(client, metrics))

		api.POST("/brain/search", handlers.HandleBrainSearch(client, metrics))
	}
}
