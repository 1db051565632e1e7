package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	handlerTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frame_handler_time",
			Help:    "request frame handler time.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	dispatchTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frame_dispatch_time",
			Help:    "request frame parse and dispatch time.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	totalFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_frames", Help: "frames dispatched by outcome and reason"},
		[]string{"outcome", "reason"},
	)

	totalFramesFromRole = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_frames_from_role", Help: "request frames from role"},
		[]string{"role"},
	)

	totalFramesToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_frames_to_uri", Help: "request frames to uri"},
		[]string{"code", "uri", "method"},
	)

	totalAdminHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_admin_http_requests", Help: "admin http requests by code, and method"},
		[]string{"code", "method"},
	)
)

func init() {
	prometheus.MustRegister(
		handlerTime,
		dispatchTime,
		totalFrames,
		totalFramesFromRole,
		totalFramesToUri,
		totalAdminHttpRequests,
	)
}
