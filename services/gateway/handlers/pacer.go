// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
	"github.com/antigravity/edge-gateway/services/gateway/observability"
	"github.com/antigravity/edge-gateway/services/gateway/upstream"
)

// reasoningPacingDelay separates the staged reasoning frames.
const reasoningPacingDelay = 200 * time.Millisecond

// stagedReasoning is the fixed sequence of reasoning frames emitted before
// any content. The upstream reply carries only plain text at this point, so
// the gateway simulates staged thinking with canned steps.
var stagedReasoning = []datatypes.ReasoningStep{
	{Step: 1, Type: "analysis", Content: "Analyzing your request..."},
	{Step: 2, Type: "retrieval", Content: "Retrieving relevant context..."},
	{Step: 3, Type: "synthesis", Content: "Synthesizing response..."},
}

// frameWriter is the single-frame send surface the pacer drives. The
// WebSocket session implements it; tests substitute an in-memory recorder.
type frameWriter interface {
	WriteFrame(frame datatypes.StreamFrame) error
}

// pacer turns one non-streaming upstream reply into a paced frame sequence.
// sleep is injectable so tests run without real delays.
type pacer struct {
	client  upstreamChatter
	metrics *observability.GatewayMetrics
	sleep   func(time.Duration)
}

// upstreamChatter is the slice of the upstream client the pacer needs.
type upstreamChatter interface {
	Chat(ctx context.Context, req *datatypes.ChatRequest) (*datatypes.ChatReply, error)
}

func newPacer(client upstreamChatter, metrics *observability.GatewayMetrics) *pacer {
	return &pacer{client: client, metrics: metrics, sleep: time.Sleep}
}

// Stream drives one complete turn onto w: either a single Error frame when
// the upstream call fails, or the full Reasoning -> Delta -> Done sequence.
// A failed write aborts the turn immediately; no further frames are sent.
func (p *pacer) Stream(ctx context.Context, req *datatypes.StreamRequest, w frameWriter) {
	reply, err := p.client.Chat(ctx, req)
	if err != nil {
		slog.Warn("Upstream chat failed on stream path", "error", err)
		p.recordUpstreamError(err)
		p.send(w, datatypes.ErrorFrame(err.Error()))
		return
	}

	for _, step := range stagedReasoning {
		if !p.send(w, datatypes.ReasoningFrame(step)) {
			return
		}
		p.sleep(reasoningPacingDelay)
	}

	words := strings.Fields(reply.Response)
	for i, word := range words {
		delta := word
		if i > 0 {
			delta = " " + word
		}
		if !p.send(w, datatypes.DeltaFrame(delta)) {
			return
		}
		p.sleep(time.Duration(30+(i%50)) * time.Millisecond)
	}

	p.send(w, datatypes.DoneFrame())
}

// send writes one frame and records it. Returns false when the client is
// gone so the caller can abandon the turn.
func (p *pacer) send(w frameWriter, frame datatypes.StreamFrame) bool {
	if err := w.WriteFrame(frame); err != nil {
		slog.Debug("Frame write failed, aborting turn", "type", frame.Type, "error", err)
		if p.metrics != nil {
			p.metrics.RecordClientDisconnect()
			p.metrics.RecordError(observability.EndpointStream, observability.ErrorCodeClientDisconnect)
		}
		return false
	}
	if p.metrics != nil {
		p.metrics.RecordFrame(frame.Type)
	}
	return true
}

func (p *pacer) recordUpstreamError(err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordError(observability.EndpointStream, classifyUpstreamError(err))
}

// classifyUpstreamError maps an upstream failure onto a metrics error code.
func classifyUpstreamError(err error) observability.ErrorCode {
	upErr, ok := upstream.AsError(err)
	if !ok {
		return observability.ErrorCodeUpstreamUnreachable
	}
	switch upErr.Kind {
	case upstream.KindTimeout:
		return observability.ErrorCodeTimeout
	case upstream.KindBadStatus:
		return observability.ErrorCodeBadStatus
	case upstream.KindParseFailed:
		return observability.ErrorCodeParseFailed
	default:
		return observability.ErrorCodeUpstreamUnreachable
	}
}
