package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes used as the "outcome" label
const (
	OutcomeRecommended = "recommended"
	OutcomeNoHistory   = "no_history"
	OutcomeNoNeighbor  = "no_neighbor"
	OutcomeError       = "error"
)

var (
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookstore_recommendation_requests_total",
			Help: "Total number of recommendation computations by outcome",
		},
		[]string{"engine", "outcome"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookstore_recommendation_duration_seconds",
			Help:    "Duration of a full recommendation computation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	SimilarityIndexSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookstore_similarity_index_users",
			Help:    "Number of users with purchases placed in a per-request similarity index",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
	)

	NeighborSimilarity = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookstore_neighbor_similarity",
			Help:    "Jaccard similarity of the selected nearest neighbor",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	RecommendedBooks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookstore_recommended_books",
			Help:    "Number of books returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	LowStockBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookstore_low_stock_books",
			Help: "Number of books at or below the low stock threshold at the last sweep",
		},
	)

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookstore_checkouts_total",
			Help: "Total number of checkout attempts by status",
		},
		[]string{"status"},
	)
)

// RecordRecommendation records the outcome and latency of one computation
func RecordRecommendation(engine, outcome string, duration time.Duration, books int) {
	RecommendationRequests.WithLabelValues(engine, outcome).Inc()
	RecommendationDuration.WithLabelValues(engine).Observe(duration.Seconds())
	if outcome != OutcomeError {
		RecommendedBooks.Observe(float64(books))
	}
}

// RecordIndex records the size of a freshly built similarity index
func RecordIndex(users int) {
	SimilarityIndexSize.Observe(float64(users))
}

// RecordNeighbor records the similarity of the selected neighbor
func RecordNeighbor(similarity float64) {
	NeighborSimilarity.Observe(similarity)
}

// RecordCheckout records a checkout attempt
func RecordCheckout(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	CheckoutsTotal.WithLabelValues(status).Inc()
}
