// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamFrame_Constructors(t *testing.T) {
	step := ReasoningStep{Step: 2, Type: "retrieval", Content: "looking"}
	frame := ReasoningFrame(step)
	assert.Equal(t, FrameReasoning, frame.Type)
	require.NotNil(t, frame.Step)
	assert.Equal(t, 2, frame.Step.Step)

	frame = DeltaFrame(" word")
	assert.Equal(t, FrameDelta, frame.Type)
	assert.Equal(t, " word", frame.Delta)

	frame = ArtifactFrame(Artifact{ID: "a1", Type: "code"})
	assert.Equal(t, FrameArtifact, frame.Type)
	require.NotNil(t, frame.Artifact)
	assert.Equal(t, "a1", frame.Artifact.ID)

	assert.Equal(t, FrameDone, DoneFrame().Type)

	frame = ErrorFrame("upstream down")
	assert.Equal(t, FrameError, frame.Type)
	assert.Equal(t, "upstream down", frame.Message)
}

func TestStreamFrame_IsTerminal(t *testing.T) {
	assert.True(t, DoneFrame().IsTerminal())
	assert.True(t, ErrorFrame("x").IsTerminal())
	assert.False(t, DeltaFrame("x").IsTerminal())
	assert.False(t, ReasoningFrame(ReasoningStep{}).IsTerminal())
	assert.False(t, ArtifactFrame(Artifact{}).IsTerminal())
}

func TestStreamFrame_WireShape(t *testing.T) {
	// Only the discriminator and the variant's payload appear on the wire.
	data, err := json.Marshal(DoneFrame())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"done"}`, string(data))

	data, err = json.Marshal(DeltaFrame(" your"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"delta","delta":" your"}`, string(data))

	data, err = json.Marshal(ErrorFrame("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"boom"}`, string(data))
}
