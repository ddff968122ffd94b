// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the gateway.
//
// Metrics cover unary requests, streaming turns, frame emission, upstream
// call latency, and fallback activations. They are exposed on /metrics and
// all operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "gateway"

// Endpoint labels metrics by the inbound surface that produced them.
type Endpoint string

const (
	// EndpointChat is the unary POST /api/agent/chat endpoint.
	EndpointChat Endpoint = "chat"

	// EndpointStream is the WebSocket /ws/agent/stream endpoint.
	EndpointStream Endpoint = "stream"

	// EndpointProxy covers the pass-through action/tool/project routes.
	EndpointProxy Endpoint = "proxy"
)

// ErrorCode categorizes failures for the errors_total counter.
type ErrorCode string

const (
	// ErrorCodeUpstreamUnreachable indicates the agent service was down.
	ErrorCodeUpstreamUnreachable ErrorCode = "upstream_unreachable"

	// ErrorCodeTimeout indicates the upstream call exceeded its deadline.
	ErrorCodeTimeout ErrorCode = "timeout"

	// ErrorCodeBadStatus indicates a non-2xx upstream response.
	ErrorCodeBadStatus ErrorCode = "bad_status"

	// ErrorCodeParseFailed indicates an undecodable upstream body.
	ErrorCodeParseFailed ErrorCode = "parse_failed"

	// ErrorCodeDecodeFailed indicates a malformed inbound request or frame.
	ErrorCodeDecodeFailed ErrorCode = "decode_failed"

	// ErrorCodeClientDisconnect indicates the client went away mid-turn.
	ErrorCodeClientDisconnect ErrorCode = "client_disconnect"
)

// GatewayMetrics holds all Prometheus collectors for the gateway.
// Initialize once at startup via InitMetrics().
type GatewayMetrics struct {
	// RequestsTotal counts requests by endpoint and status (success, error).
	RequestsTotal *prometheus.CounterVec

	// ErrorsTotal counts failures by endpoint and error code.
	ErrorsTotal *prometheus.CounterVec

	// FramesTotal counts emitted stream frames by type.
	FramesTotal *prometheus.CounterVec

	// ActiveStreams tracks currently open WebSocket connections.
	ActiveStreams prometheus.Gauge

	// UpstreamRequestSeconds measures upstream call latency by route.
	UpstreamRequestSeconds *prometheus.HistogramVec

	// FallbacksTotal counts unary responses served by the fallback policy.
	FallbacksTotal prometheus.Counter

	// ClientDisconnectsTotal counts mid-turn client disconnections.
	ClientDisconnectsTotal prometheus.Counter
}

// DefaultMetrics is the singleton instance used by the handlers.
// Nil until InitMetrics() runs, so unit tests that don't care about
// metrics can skip initialization.
var DefaultMetrics *GatewayMetrics

// InitMetrics registers all collectors on the default registry and sets
// DefaultMetrics. Call once at startup; calling twice panics on duplicate
// registration.
func InitMetrics() *GatewayMetrics {
	DefaultMetrics = newMetrics(prometheus.DefaultRegisterer)
	return DefaultMetrics
}

// newMetrics builds a GatewayMetrics against the given registerer.
// Tests pass an isolated registry to avoid global state.
func newMetrics(reg prometheus.Registerer) *GatewayMetrics {
	factory := promauto.With(reg)
	return &GatewayMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "Total requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "errors_total",
				Help:      "Total failures by endpoint and error code",
			},
			[]string{"endpoint", "error_code"},
		),
		FramesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "frames_total",
				Help:      "Total stream frames emitted by frame type",
			},
			[]string{"type"},
		),
		ActiveStreams: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "active_streams",
				Help:      "Number of currently open streaming connections",
			},
		),
		UpstreamRequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_request_seconds",
				Help:      "Upstream agent service call latency by route",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"route"},
		),
		FallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "fallbacks_total",
				Help:      "Unary chat responses served by the fallback policy",
			},
		),
		ClientDisconnectsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "client_disconnects_total",
				Help:      "Clients that disconnected before their turn completed",
			},
		),
	}
}

// RecordRequest increments the request counter for an endpoint.
func (m *GatewayMetrics) RecordRequest(endpoint Endpoint, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// RecordError increments the error counter for an endpoint.
func (m *GatewayMetrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// RecordFrame increments the frame counter for one emitted frame type.
func (m *GatewayMetrics) RecordFrame(frameType string) {
	m.FramesTotal.WithLabelValues(frameType).Inc()
}

// StreamOpened increments the active stream gauge.
func (m *GatewayMetrics) StreamOpened() {
	m.ActiveStreams.Inc()
}

// StreamClosed decrements the active stream gauge.
func (m *GatewayMetrics) StreamClosed() {
	m.ActiveStreams.Dec()
}

// RecordUpstreamLatency observes one upstream call duration.
func (m *GatewayMetrics) RecordUpstreamLatency(route string, seconds float64) {
	m.UpstreamRequestSeconds.WithLabelValues(route).Observe(seconds)
}

// RecordFallback counts one fallback-policy response.
func (m *GatewayMetrics) RecordFallback() {
	m.FallbacksTotal.Inc()
}

// RecordClientDisconnect counts one mid-turn disconnect.
func (m *GatewayMetrics) RecordClientDisconnect() {
	m.ClientDisconnectsTotal.Inc()
}
