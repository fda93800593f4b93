package loadtest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes live run metrics on a Prometheus endpoint so long
// runs can be watched from a scrape instead of the final report.
type Collector struct {
	registry *prometheus.Registry
	server   *http.Server
	addr     string

	requestsTotal      *prometheus.CounterVec
	checkFailuresTotal *prometheus.CounterVec
	latency            *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ekstack",
			Subsystem: "loadtest",
			Name:      "requests_total",
			Help:      "Total number of requests by flow and status code",
		},
		[]string{"flow", "code"},
	)

	c.checkFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ekstack",
			Subsystem: "loadtest",
			Name:      "check_failures_total",
			Help:      "Total number of failed response checks by flow, step and check",
		},
		[]string{"flow", "step", "check"},
	)

	c.latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ekstack",
			Subsystem: "loadtest",
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds by flow",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"flow"},
	)

	c.registry.MustRegister(c.requestsTotal, c.checkFailuresTotal, c.latency)
	return c
}

// recordResult records one attack result.
func (c *Collector) recordResult(flow string, code int, latency time.Duration) {
	c.requestsTotal.WithLabelValues(flow, strconv.Itoa(code)).Inc()
	c.latency.WithLabelValues(flow).Observe(latency.Seconds())
}

// recordCheckFailure records one failed response check.
func (c *Collector) recordCheckFailure(flow, step, check string) {
	c.checkFailuresTotal.WithLabelValues(flow, step, check).Inc()
}

// Start serves /metrics on addr in the background until Shutdown. The
// listen error surfaces synchronously so a bad address fails the run
// before the attack starts.
func (c *Collector) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	c.addr = ln.Addr().String()
	c.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = c.server.Serve(ln)
	}()
	return nil
}

// Addr returns the address the endpoint is listening on, or "" before
// Start.
func (c *Collector) Addr() string {
	return c.addr
}

// Shutdown stops the metrics endpoint.
func (c *Collector) Shutdown(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}
