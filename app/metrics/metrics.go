// Package metrics holds the Prometheus collectors for the feed service.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"feedapp/app/repositories"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedapp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedapp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedapp_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Domain
	UpvoteToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedapp_upvote_toggles_total",
			Help: "Total number of upvote toggles by resulting state",
		},
		[]string{"direction"}, // "up", "down"
	)

	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedapp_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	TagsLinked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedapp_post_tags_linked_total",
			Help: "Total number of tags linked to new posts",
		},
	)

	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedapp_feed_requests_total",
			Help: "Total number of feed builds by mode",
		},
		[]string{"mode"}, // "global", "personalized", "fallback"
	)

	// Store
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedapp_store_errors_total",
			Help: "Total number of failed data access operations",
		},
		[]string{"operation", "cause"},
	)
)

// RecordHTTPRequest records a finished HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up or down.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordToggle counts an upvote toggle.
func RecordToggle(upvoted bool) {
	if upvoted {
		UpvoteToggles.WithLabelValues("up").Inc()
		return
	}
	UpvoteToggles.WithLabelValues("down").Inc()
}

// RecordPostCreated counts a new post and the tags linked to it.
func RecordPostCreated(tags int) {
	PostsCreated.Inc()
	TagsLinked.Add(float64(tags))
}

// RecordFeed counts a feed build.
func RecordFeed(mode string) {
	FeedRequests.WithLabelValues(mode).Inc()
}

// RecordStoreError counts a failed store call. Errors that are not data
// access errors are ignored.
func RecordStoreError(err error) {
	var dae *repositories.DataAccessError
	if !errors.As(err, &dae) {
		return
	}
	StoreErrors.WithLabelValues(dae.Op, causeLabel(dae.Err)).Inc()
}

func causeLabel(err error) string {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return "not_found"
	case errors.Is(err, repositories.ErrDuplicate):
		return "duplicate"
	default:
		return "other"
	}
}
