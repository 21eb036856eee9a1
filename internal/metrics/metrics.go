// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicematch",
		Name:      "decisions_total",
		Help:      "Total number of match decisions by language and outcome",
	}, []string{"language", "decision"})
	similarity = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voicematch",
		Name:      "best_similarity",
		Help:      "Similarity of the best candidate per match attempt",
		Buckets:   []float64{0.2, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
	}, []string{"language"})
	matchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicematch",
		Name:      "match_errors_total",
		Help:      "Total number of match attempts that failed by reason",
	}, []string{"reason"})
	confirmations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicematch",
		Name:      "confirmations_total",
		Help:      "Total number of suggestion confirmations by result",
	}, []string{"result"})
	matchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "voicematch",
		Name:      "match_duration_seconds",
		Help:      "Histogram of match request durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
	})

	questionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "voicematch",
		Name:      "bank_questions",
		Help:      "Current number of questions in the loaded bank",
	})
	bankReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicematch",
		Name:      "bank_reloads_total",
		Help:      "Total number of question bank reloads by result",
	}, []string{"result"})
	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicematch",
		Name:      "candidate_cache_lookups_total",
		Help:      "Candidate set cache lookups by result",
	}, []string{"result"})
	sseClientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "voicematch",
		Name:      "event_clients",
		Help:      "Number of connected event stream clients",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(decisions, similarity, matchErrors, confirmations, matchDuration,
			questionsGauge, bankReloads, cacheLookups, sseClientsGauge)
	})
}

// Match outcome helpers
func ObserveDecision(language, decision string, best float64) {
	decisions.WithLabelValues(language, decision).Inc()
	similarity.WithLabelValues(language).Observe(best)
}
func IncMatchError(reason string)   { matchErrors.WithLabelValues(reason).Inc() }
func IncConfirmation(result string) { confirmations.WithLabelValues(result).Inc() }
func ObserveMatchDuration(d time.Duration) {
	matchDuration.Observe(d.Seconds())
}

// Bank and cache
func SetQuestions(n int)          { questionsGauge.Set(float64(n)) }
func IncBankReload(result string) { bankReloads.WithLabelValues(result).Inc() }
func IncCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// SetEventClients records the number of connected SSE clients.
func SetEventClients(n int) { sseClientsGauge.Set(float64(n)) }
