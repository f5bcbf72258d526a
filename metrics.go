package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rr_http"

type statsExporter struct {
	requests      *prometheus.CounterVec
	badRemoteAddr prometheus.Counter
}

func newStatsExporter() *statsExporter {
	return &statsExporter{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: name,
			Name:      "requests_total",
			Help:      "Requests resolved by the proxy_ip_parser middleware, by source of the client address.",
		}, []string{"source"}),
		badRemoteAddr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: name,
			Name:      "bad_remote_addr_total",
			Help:      "Requests rejected because the peer address could not be parsed.",
		}),
	}
}

func (s *statsExporter) resolved(source IPSource) {
	s.requests.WithLabelValues(string(source)).Inc()
}

func (s *statsExporter) collectors() []prometheus.Collector {
	return []prometheus.Collector{s.requests, s.badRemoteAddr}
}
