// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// WebSocket frame types for the streaming endpoint.
//
// Each inbound text frame carries one StreamRequest JSON document; each
// outbound text frame carries one StreamFrame JSON document. A turn is the
// outbound frame sequence produced for one inbound request, ending with
// exactly one terminal frame (done or error).

package datatypes

// Frame type discriminator values.
const (
	FrameReasoning = "reasoning"
	FrameDelta     = "delta"
	FrameArtifact  = "artifact"
	FrameDone      = "done"
	FrameError     = "error"
)

// StreamRequest is the request document carried in one inbound WebSocket
// text frame. It is the ChatRequest shape; the gateway translates it into
// the upstream call unchanged.
type StreamRequest = ChatRequest

// StreamFrame is a tagged union discriminated by Type. Exactly one payload
// field is populated per variant:
//
//	reasoning → Step
//	delta     → Delta
//	artifact  → Artifact
//	error     → Message
//	done      → (no payload)
type StreamFrame struct {
	Type     string         `json:"type"`
	Step     *ReasoningStep `json:"step,omitempty"`
	Delta    string         `json:"delta,omitempty"`
	Artifact *Artifact      `json:"artifact,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// IsTerminal reports whether the frame ends a turn.
func (f StreamFrame) IsTerminal() bool {
	return f.Type == FrameDone || f.Type == FrameError
}

// ReasoningFrame builds a reasoning frame for one step.
func ReasoningFrame(step ReasoningStep) StreamFrame {
	return StreamFrame{Type: FrameReasoning, Step: &step}
}

// DeltaFrame builds a delta frame carrying one text fragment.
func DeltaFrame(text string) StreamFrame {
	return StreamFrame{Type: FrameDelta, Delta: text}
}

// ArtifactFrame builds an artifact frame carrying partial artifact content.
func ArtifactFrame(artifact Artifact) StreamFrame {
	return StreamFrame{Type: FrameArtifact, Artifact: &artifact}
}

// DoneFrame builds the terminal success frame.
func DoneFrame() StreamFrame {
	return StreamFrame{Type: FrameDone}
}

// ErrorFrame builds the terminal failure frame.
func ErrorFrame(message string) StreamFrame {
	return StreamFrame{Type: FrameError, Message: message}
}
