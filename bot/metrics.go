package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsFetched = promauto.NewCounter(prometheus.CounterOpts{
	Name: "aibot_notifications_fetched",
	Help: "Number of notifications fetched",
})

var mentionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "aibot_mentions_processed",
	Help: "Number of mentions processed, by outcome",
}, []string{"outcome"})

var repliesPosted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "aibot_replies_posted",
	Help: "Number of reply posts published",
})

var aiScore = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "aibot_ai_score",
	Help:    "Distribution of AI-probability scores returned by the detector",
	Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
})

var runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "aibot_run_duration_seconds",
	Help:    "Duration of one notification polling pass",
	Buckets: prometheus.DefBuckets,
})
