package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP and social engagement collectors.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	PostsCreated         *prometheus.CounterVec
	QuotaRejections      prometheus.Counter
	AccessDenied         *prometheus.CounterVec
	CommentsTotal        *prometheus.CounterVec
	LikesTotal           *prometheus.CounterVec
	FollowsTotal         *prometheus.CounterVec
	NotificationsTotal   *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
	RateLimitExceeded    *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide collectors, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics(prometheus.DefaultRegisterer)
	})
	return instance
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		PostsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "posts_created_total",
				Help: "Total number of posts created",
			},
			[]string{"kind"},
		),
		QuotaRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "post_quota_rejections_total",
				Help: "Post creations rejected by the hourly quota",
			},
		),
		AccessDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "visibility_access_denied_total",
				Help: "Read attempts denied by the visibility resolver",
			},
			[]string{"reason"},
		),
		CommentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comments_created_total",
				Help: "Total number of comments and replies created",
			},
			[]string{"kind"},
		),
		LikesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likes_total",
				Help: "Like and unlike actions",
			},
			[]string{"target", "action"},
		),
		FollowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "follows_total",
				Help: "Follow and unfollow actions",
			},
			[]string{"action"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_created_total",
				Help: "Notifications written, by type",
			},
			[]string{"type"},
		),
		NotificationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_failures_total",
				Help: "Notifications that could not be written, by type",
			},
			[]string{"type"},
		),
		RateLimitExceeded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_exceeded_total",
				Help: "Requests rejected by the transport rate limiter",
			},
			[]string{"route"},
		),
	}
}
