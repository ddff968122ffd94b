// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
	"github.com/antigravity/edge-gateway/services/gateway/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newChatRouter wires the unary chat handler against the given upstream URL.
func newChatRouter(upstreamURL string) *gin.Engine {
	client := upstream.New(upstreamURL, 2*time.Second, nil)
	r := gin.New()
	r.POST("/api/agent/chat", HandleChat(client, nil))
	return r
}

func postChat(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/agent/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleChat_Success(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)
		var req datatypes.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Query)

		json.NewEncoder(w).Encode(datatypes.ChatReply{
			Response: "hi there",
			Reasoning: []datatypes.ReasoningStep{
				{Step: 1, Type: "analysis", Content: "looked at it"},
			},
		})
	}))
	defer agent.Close()

	w := postChat(t, newChatRouter(agent.URL), `{"query":"hello","conversation_id":"c1"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.WireChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hi there", resp.Response)
	require.Len(t, resp.Reasoning, 1)
	assert.Equal(t, "analysis", resp.Reasoning[0].Type)
}

func TestHandleChat_FallbackOnUnreachableUpstream(t *testing.T) {
	// Port 1 refuses connections.
	w := postChat(t, newChatRouter("http://127.0.0.1:1"), `{"query":"what is up","conversation_id":"c1"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.WireChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Processing query: what is up", resp.Response)
	require.Len(t, resp.Reasoning, 1)
	assert.Equal(t, 1, resp.Reasoning[0].Step)
}

func TestHandleChat_FallbackOnBadStatus(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer agent.Close()

	w := postChat(t, newChatRouter(agent.URL), `{"query":"q","conversation_id":"c1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Processing query: q")
}

func TestHandleChat_FallbackOnMalformedUpstreamBody(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer agent.Close()

	w := postChat(t, newChatRouter(agent.URL), `{"query":"q","conversation_id":"c1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Processing query: q")
}

func TestHandleChat_MalformedBodyRejected(t *testing.T) {
	w := postChat(t, newChatRouter("http://127.0.0.1:1"), `{"query": nope`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChat_MissingQueryRejected(t *testing.T) {
	w := postChat(t, newChatRouter("http://127.0.0.1:1"), `{"conversation_id":"c1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChat_FallbackWireShape(t *testing.T) {
	w := postChat(t, newChatRouter("http://127.0.0.1:1"), `{"query":"q","conversation_id":"c1"}`)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Contains(t, m, "response")
	assert.Contains(t, m, "reasoning")
	assert.NotContains(t, m, "artifacts")
	assert.NotContains(t, m, "citations")
}
