package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 下载结果
const (
	OutcomeServed             = "served"
	OutcomeRedirected         = "redirected"
	OutcomeUnauthenticated    = "unauthenticated"
	OutcomeInvalidToken       = "invalid_token"
	OutcomeForbidden          = "forbidden"
	OutcomeNotFound           = "not_found"
	OutcomeRateLimited        = "rate_limited"
	OutcomeStorageUnavailable = "storage_unavailable"
	OutcomeError              = "error"
)

var (
	deliveryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_requests_total",
		Help: "Gated delivery requests by terminal outcome.",
	}, []string{"outcome"})

	deliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delivery_request_duration_seconds",
		Help:    "Time spent deciding a gated delivery request, streaming excluded.",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})

	downloadStatsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "delivery_download_stats_pending",
		Help: "Buffered purchase download counters not yet written to the database.",
	})
)
