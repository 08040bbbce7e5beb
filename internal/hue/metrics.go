package hue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huecmd_bridge_requests_total",
		Help: "The total number of requests sent to the Hue bridge",
	}, []string{"method", "status"})
)
