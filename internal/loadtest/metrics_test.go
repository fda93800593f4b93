package loadtest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Record(t *testing.T) {
	t.Parallel()
	c := NewCollector()

	c.recordResult("browse", 200, 20*time.Millisecond)
	c.recordResult("browse", 200, 30*time.Millisecond)
	c.recordResult("browse", 503, 5*time.Millisecond)
	c.recordCheckFailure("browse", "GET /products", "status")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("browse", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("browse", "503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.checkFailuresTotal.WithLabelValues("browse", "GET /products", "status")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.latency))
}

func TestCollector_Serve(t *testing.T) {
	t.Parallel()
	c := NewCollector()
	c.recordResult("browse", 200, 20*time.Millisecond)

	require.NoError(t, c.Start("127.0.0.1:0"))
	defer func() {
		assert.NoError(t, c.Shutdown(context.Background()))
	}()
	require.NotEmpty(t, c.Addr())

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", c.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ekstack_loadtest_requests_total")
	assert.Contains(t, string(body), "ekstack_loadtest_request_duration_seconds_bucket")
}

func TestCollector_StartBadAddr(t *testing.T) {
	t.Parallel()
	c := NewCollector()
	err := c.Start("127.0.0.1:99999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestCollector_ShutdownWithoutStart(t *testing.T) {
	t.Parallel()
	c := NewCollector()
	assert.NoError(t, c.Shutdown(context.Background()))
}
