// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides wire shapes for the edge gateway.
//
// This file contains the chat request/reply types shared between the
// inbound HTTP API and the upstream agent service. The JSON field names
// are part of the upstream contract and must not be changed. For the
// WebSocket frame types, see stream.go.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxMessageContentBytes is the maximum size of a single history message
	// or attached-file content.
	MaxMessageContentBytes = 32 * 1024 // 32KB

	// MaxHistoryMessages is the maximum number of history entries accepted
	// in a single request.
	MaxHistoryMessages = 100
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// chatValidate is the validator instance for chat datatypes.
// Initialized in init() with custom validators.
var chatValidate *validator.Validate

func init() {
	chatValidate = validator.New()
	_ = chatValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes checks byte length (not rune count) so oversized payloads
// are rejected regardless of encoding.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxMessageContentBytes
}

// =============================================================================
// Request Types
// =============================================================================

// HistoryMessage is one (role, content) pair of prior conversation.
// Order is caller-supplied, oldest first, and preserved end to end.
type HistoryMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"maxbytes"`
}

// AttachedFile is a file the client attached to a chat request. The upstream
// agent embeds the content into the prompt; the gateway only relays it.
type AttachedFile struct {
	Name     string `json:"name"`
	FileType string `json:"type"`
	Content  string `json:"content" validate:"maxbytes"`
}

// ChatRequest is the inbound chat request body. The same shape is forwarded
// verbatim to the upstream agent service's POST /chat endpoint.
//
// Query is required and non-empty. All identifier and selector fields are
// optional; History is ordered oldest first.
type ChatRequest struct {
	Query           string           `json:"query" validate:"required"`
	ConversationID  string           `json:"conversation_id"`
	ContextEntities []string         `json:"context_entities,omitempty"`
	SessionID       *string          `json:"session_id,omitempty"`
	Provider        *string          `json:"provider,omitempty"`
	Model           *string          `json:"model,omitempty"`
	UserID          *string          `json:"userId,omitempty"`
	ProjectID       *string          `json:"projectId,omitempty"`
	History         []HistoryMessage `json:"history,omitempty" validate:"max=100,dive"`
	AttachedFiles   []AttachedFile   `json:"attachedFiles,omitempty" validate:"dive"`
}

// Validate validates the ChatRequest fields using the shared validator.
// Call after binding the JSON body.
func (r *ChatRequest) Validate() error {
	return chatValidate.Struct(r)
}

// =============================================================================
// Upstream Reply Types
// =============================================================================

// ReasoningStep is one step of the agent's reasoning trace. Step indices
// start at 1 and increase monotonically.
type ReasoningStep struct {
	Step       int    `json:"step"`
	Type       string `json:"type"`
	Content    string `json:"content"`
	DurationMs *int64 `json:"duration_ms,omitempty"`
}

// Artifact is a generated artifact (code block, document, diagram source)
// attached to a reply.
type Artifact struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Language *string `json:"language,omitempty"`
}

// ChatReply is the upstream agent service's response body. Reasoning,
// Artifacts and Citations may be absent or null in the upstream JSON and
// decode to nil; consumers treat nil as empty.
type ChatReply struct {
	Response  string          `json:"response"`
	Reasoning []ReasoningStep `json:"reasoning"`
	Artifacts []Artifact      `json:"artifacts"`
	Citations []string        `json:"citations"`
}

// =============================================================================
// Outbound Wire Types
// =============================================================================

// WireChatResponse is the gateway's unary chat response shape.
//
// Artifacts and Citations are omitted entirely when empty, never emitted as
// null or []. Clients rely on field absence meaning "no content"; keep the
// omitempty tags. Reasoning is always present, even when empty.
type WireChatResponse struct {
	Response  string          `json:"response"`
	Reasoning []ReasoningStep `json:"reasoning"`
	Artifacts []Artifact      `json:"artifacts,omitempty"`
	Citations []string        `json:"citations,omitempty"`
}
