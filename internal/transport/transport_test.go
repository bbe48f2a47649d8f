package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"polyclob/internal/logging"
	"polyclob/internal/transport"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *transport.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := transport.New(srv.URL, logging.NewNoop())
	t.Cleanup(c.Close)
	return srv, c
}

func TestGet_ReturnsBodyAndStatus(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/book", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})

	resp, err := c.Get(context.Background(), "/book", nil)
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, 200, resp.Status)
	require.Equal(t, `{"ok":true}`, string(resp.Body))
}

func TestPost_SendsBodyAndHeaders(t *testing.T) {
	var gotBody []byte
	var gotHeader string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Custom")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.WriteHeader(http.StatusCreated)
	})

	resp, err := c.Post(context.Background(), "/order", []byte(`{"a":1}`), map[string]string{"X-Custom": "yes"})
	require.NoError(t, err)
	require.Equal(t, 201, resp.Status)
	require.Equal(t, "yes", gotHeader)
	require.Equal(t, `{"a":1}`, string(gotBody))
}

func TestDelete_CarriesJSONBody(t *testing.T) {
	var method string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.Delete(context.Background(), "/order", []byte(`{"id":"1"}`), nil)
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, method)
}

func TestDo_NonOKResponseIsNotAnError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad"}`))
	})

	resp, err := c.Get(context.Background(), "/book", nil)
	require.NoError(t, err)
	require.False(t, resp.OK())
	require.Equal(t, 400, resp.Status)
}

func TestWarm_MarksConnectionWarmOn2xx(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ok := c.Warm(context.Background(), "/time")
	require.True(t, ok)
	require.True(t, c.GetStats().ConnectionWarm)
}

func TestWarm_TreatsNotFoundAsWarm(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	ok := c.Warm(context.Background(), "/missing")
	require.True(t, ok)
}

func TestGetStats_TracksRequestCountAndLatency(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.Get(context.Background(), "/a", nil)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "/b", nil)
	require.NoError(t, err)

	stats := c.GetStats()
	require.Equal(t, int64(2), stats.TotalRequests)
	require.GreaterOrEqual(t, stats.AvgLatencyMs, 0.0)
}

func TestStartStopHeartbeat_TogglesRunningState(t *testing.T) {
	hits := make(chan struct{}, 8)
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		w.WriteHeader(http.StatusOK)
	})

	c.StartHeartbeat("/ping", 150*time.Millisecond)
	require.True(t, c.IsHeartbeatRunning())

	select {
	case <-hits:
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat never fired")
	}

	c.StopHeartbeat()
	require.False(t, c.IsHeartbeatRunning())
}

func TestGetAsync_DeliversResultToCallback(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	done := make(chan transport.Response, 1)
	c.GetAsync(context.Background(), "/async", nil, func(resp transport.Response, err error) {
		require.NoError(t, err)
		done <- resp
	})

	select {
	case resp := <-done:
		require.True(t, resp.OK())
	case <-time.After(2 * time.Second):
		t.Fatal("async callback never fired")
	}
}

func TestPendingAsyncAndPollAsync_DrainsQueue(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c.PostAsync(context.Background(), "/x", nil, nil, func(transport.Response, error) {})
	c.PollAsync(2 * time.Second)
	require.Equal(t, int64(0), c.PendingAsync())
}
