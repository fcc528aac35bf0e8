package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminal-bench/gridfeed/pkg/circuit"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, Options{
		Attempts: 3,
		Backoff:  time.Millisecond,
	}), &calls
}

func TestFetchOK(t *testing.T) {
	client, calls := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/RealtimeTotals/PUB_RealtimeTotals.xml", r.URL.Path)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Write([]byte("<IMODocument/>"))
	}))

	out := client.Fetch(context.Background(), "/RealtimeTotals/PUB_RealtimeTotals.xml")
	require.Equal(t, OK, out.Status)
	assert.Equal(t, []byte("<IMODocument/>"), out.Body)
	assert.NoError(t, out.Err)
	assert.EqualValues(t, 1, *calls)
}

func TestFetchNotFound(t *testing.T) {
	client, calls := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	out := client.Fetch(context.Background(), "/Adequacy3/PUB_Adequacy3_20260101.xml")
	assert.Equal(t, NotFound, out.Status)
	assert.Nil(t, out.Body)
	assert.NoError(t, out.Err)
	assert.EqualValues(t, 1, *calls, "absence must not be retried")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits int32
	client, calls := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))

	out := client.Fetch(context.Background(), "/x.xml")
	require.Equal(t, OK, out.Status)
	assert.Equal(t, []byte("recovered"), out.Body)
	assert.EqualValues(t, 3, *calls)
}

func TestFetchRetryBudgetExhausted(t *testing.T) {
	client, calls := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	out := client.Fetch(context.Background(), "/x.xml")
	require.Equal(t, Fatal, out.Status)
	assert.ErrorContains(t, out.Err, "retry budget exhausted")
	assert.EqualValues(t, 3, *calls)
}

func TestFetchPermanentClientError(t *testing.T) {
	client, calls := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	out := client.Fetch(context.Background(), "/x.xml")
	require.Equal(t, Fatal, out.Status)
	assert.ErrorContains(t, out.Err, "403")
	assert.EqualValues(t, 1, *calls, "permanent upstream refusals must not be retried")
}

func TestFetchBreakerFailsFast(t *testing.T) {
	client, calls := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	// Two exhausted fetches push the breaker past its failure budget
	// (attempts * 2 consecutive 5xx responses).
	for i := 0; i < 2; i++ {
		out := client.Fetch(context.Background(), "/x.xml")
		assert.Equal(t, Fatal, out.Status)
	}
	assert.EqualValues(t, 6, *calls)

	out := client.Fetch(context.Background(), "/x.xml")
	require.Equal(t, Fatal, out.Status)
	assert.ErrorIs(t, out.Err, circuit.ErrOpen)
	assert.EqualValues(t, 6, *calls, "an open breaker must not touch the upstream")
}

func TestFetchContextCancelledDuringBackoff(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	client.backoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)
	go func() { done <- client.Fetch(ctx, "/x.xml") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case out := <-done:
		require.Equal(t, Fatal, out.Status)
		assert.ErrorIs(t, out.Err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("fetch did not abort on cancellation")
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "not-found", NotFound.String())
	assert.Equal(t, "fatal", Fatal.String())
	assert.Equal(t, "unknown", Status(42).String())
}
