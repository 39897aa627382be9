package socket

import "github.com/prometheus/client_golang/prometheus"

var (
	liveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forge_live_sessions",
		Help: "Number of open live websocket sessions",
	})

	liveViews = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forge_live_views",
		Help: "Number of views mounted across all live sessions",
	})

	framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_live_frames_total",
			Help: "Inbound live frames by event",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(liveSessions, liveViews, framesReceived)
}
