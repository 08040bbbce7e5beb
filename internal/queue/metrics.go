package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huecmd_queue_messages_received_total",
		Help: "The total number of light command messages received",
	})
	messagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huecmd_queue_messages_deleted_total",
		Help: "The total number of light command messages deleted after processing",
	})
	messagesMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huecmd_queue_messages_malformed_total",
		Help: "The total number of messages that could not be parsed",
	})
)
