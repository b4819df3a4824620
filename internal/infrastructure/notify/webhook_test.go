package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestWebhook_Publish(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var e Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		received <- e
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL, time.Second, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	hook.Publish(ctx, "submission.verified", map[string]int{"id": 42})
	cancel()
	hook.Wait()

	select {
	case e := <-received:
		assert.Equal(t, "submission.verified", e.Type)
		assert.Equal(t, map[string]any{"id": float64(42)}, e.Payload)
	default:
		t.Fatal("event was not delivered")
	}
}

func TestWebhook_Publish_FailureIsSwallowed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL, time.Second, slog.Default())
	hook.Publish(context.Background(), "submission.verified", nil)
	hook.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestNop_Publish(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop{}.Publish(context.Background(), "x", nil)
	})
}
