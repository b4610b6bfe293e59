package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shift_report"

var (
	NotificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_deliveries_total",
		Help:      "Notification delivery outcomes per channel.",
	}, []string{"channel", "status"})

	NotificationDeliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Time spent delivering one notification per channel.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"channel"})

	DispatchQueueDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_queue_dropped_total",
		Help:      "Notification jobs dropped because the dispatch queue was full or closed.",
	})

	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Requests rejected by the rate limiter.",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Report submissions by outcome.",
	}, []string{"outcome"})

	PhotosDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_dropped_total",
		Help:      "Photos dropped during normalization.",
	})
)

const (
	SUBMISSION_OUTCOME_STORED           = "stored"
	SUBMISSION_OUTCOME_VALIDATION_ERROR = "validation_error"
	SUBMISSION_OUTCOME_UPLOAD_ERROR     = "upload_error"
	SUBMISSION_OUTCOME_STORE_ERROR      = "store_error"
	SUBMISSION_OUTCOME_CANCELLED        = "cancelled"
)
