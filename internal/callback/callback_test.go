package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"acsWorker/internal/automation"
)

func TestNotify_PostsResult(t *testing.T) {
	var got map[string]any
	var runKey, contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/webhook/3ds-result", r.URL.Path)
		runKey = r.Header.Get("X-Run-Key")
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(time.Second, zap.NewNop())
	err := n.Notify(context.Background(), srv.URL+"/webhook/3ds-result", automation.Result{
		Success:    true,
		SessionID:  "S1",
		RunKey:     "run-1",
		ResultCode: automation.CodeOK,
	})

	require.NoError(t, err)
	assert.Equal(t, "run-1", runKey)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "S1", got["sessionId"])
}

func TestNotify_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "workflow not active", http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(time.Second, zap.NewNop()).Notify(context.Background(), srv.URL, automation.Result{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "workflow not active")
}

func TestNotify_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(time.Second, zap.NewNop()).Notify(context.Background(), url, automation.Result{})
	assert.Error(t, err)
}

func TestNotify_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := New(50*time.Millisecond, zap.NewNop()).Notify(context.Background(), srv.URL, automation.Result{})
	assert.Error(t, err)
}
