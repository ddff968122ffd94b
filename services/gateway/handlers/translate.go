// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"fmt"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
)

// fallbackDurationMs is the nominal duration reported on the synthesized
// reasoning step when the upstream is unavailable.
const fallbackDurationMs int64 = 100

// translateReply converts an upstream reply into the wire shape served to
// web clients. Reasoning is always present (an empty list rather than null),
// while artifacts and citations are omitted entirely when empty to keep the
// payload compact.
func translateReply(reply *datatypes.ChatReply) datatypes.WireChatResponse {
	reasoning := reply.Reasoning
	if reasoning == nil {
		reasoning = []datatypes.ReasoningStep{}
	}

	out := datatypes.WireChatResponse{
		Response:  reply.Response,
		Reasoning: reasoning,
	}
	if len(reply.Artifacts) > 0 {
		out.Artifacts = reply.Artifacts
	}
	if len(reply.Citations) > 0 {
		out.Citations = reply.Citations
	}
	return out
}

// fallbackResponse builds the canned reply served on the unary chat path
// when the upstream agent service cannot produce an answer. The caller
// always gets HTTP 200 with this body so that gateway availability is
// independent of upstream health. The upstream failure is logged by the
// caller, never surfaced here.
func fallbackResponse(req *datatypes.ChatRequest) datatypes.WireChatResponse {
	duration := fallbackDurationMs
	return datatypes.WireChatResponse{
		Response: fmt.Sprintf("Processing query: %s", req.Query),
		Reasoning: []datatypes.ReasoningStep{
			{
				Step:       1,
				Type:       "analysis",
				Content:    "Analyzing your request...",
				DurationMs: &duration,
			},
		},
	}
}
