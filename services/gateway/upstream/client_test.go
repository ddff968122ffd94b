// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// See the LICENSE.txt file for the full license text.

package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
)

func TestChat_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req datatypes.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Query)

		json.NewEncoder(w).Encode(datatypes.ChatReply{Response: "hi"})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	reply, err := client.Chat(context.Background(), &datatypes.ChatRequest{Query: "hello", ConversationID: "c1"})

	require.NoError(t, err)
	assert.Equal(t, "hi", reply.Response)
}

func TestChat_ConnectionRefused(t *testing.T) {
	client := New("http://127.0.0.1:1", time.Second, nil)

	_, err := client.Chat(context.Background(), &datatypes.ChatRequest{Query: "q"})

	require.Error(t, err)
	upErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindConnectionFailed, upErr.Kind)
}

func TestChat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(srv.URL, 20*time.Millisecond, nil)
	_, err := client.Chat(context.Background(), &datatypes.ChatRequest{Query: "q"})

	require.Error(t, err)
	upErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, upErr.Kind)
}

func TestChat_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	_, err := client.Chat(context.Background(), &datatypes.ChatRequest{Query: "q"})

	require.Error(t, err)
	upErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindBadStatus, upErr.Kind)
	assert.Equal(t, http.StatusBadGateway, upErr.Status)
}

func TestChat_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not json"))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	_, err := client.Chat(context.Background(), &datatypes.ChatRequest{Query: "q"})

	require.Error(t, err)
	upErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindParseFailed, upErr.Kind)
}

func TestGetJSON_ForwardsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tools", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("projectId"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	query := url.Values{}
	query.Set("projectId", "p1")
	raw, status, err := client.GetJSON(context.Background(), "/tools", query)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestGetJSON_NotFoundCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	_, _, err := client.GetJSON(context.Background(), "/projects/p-missing", nil)

	require.Error(t, err)
	upErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindBadStatus, upErr.Kind)
	assert.Equal(t, http.StatusNotFound, upErr.Status)
}

func TestPostJSON_RawBodyRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "search me", body["query"])
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, nil)
	raw, _, err := client.PostJSON(context.Background(), "/brain/search",
		json.RawMessage(`{"query":"search me"}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(raw))
}

func TestNew_Defaults(t *testing.T) {
	client := New("http://agent:9000/", 0, nil)

	assert.Equal(t, "http://agent:9000", client.BaseURL())
}

func TestErrorString(t *testing.T) {
	cases := []struct {
		err  Error
		want string
	}{
		{Error{Kind: KindConnectionFailed, Detail: "refused"}, "connection error: refused"},
		{Error{Kind: KindTimeout, Detail: "deadline"}, "request timed out"},
		{Error{Kind: KindBadStatus, Status: 502, Detail: "upstream returned status 502"}, "service returned status 502"},
		{Error{Kind: KindParseFailed, Detail: "eof"}, "parse error: eof"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}
