package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "api_requests_total",
		Help:      "Catalog API calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "api_request_duration_seconds",
		Help:      "Catalog API call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

func observe[T any](endpoint string, started time.Time, resp Response[T], err error) {
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	requestsTotal.WithLabelValues(endpoint, outcome(resp.Success, resp.Status, err)).Inc()
}

func outcome(success bool, status int, err error) string {
	switch {
	case err != nil:
		return outcomeError
	case status == 404:
		return outcomeNotFound
	case !success:
		return outcomeFailed
	default:
		return outcomeOK
	}
}
