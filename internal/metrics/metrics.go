package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	httpmetrics "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmiddleware "github.com/slok/go-http-metrics/middleware"
	ginmiddleware "github.com/slok/go-http-metrics/middleware/gin"
)

const (
	chatRequestsMetricName    = "persona_chat_requests_total"
	chatDurationMetricName    = "persona_chat_request_duration_seconds"
	personaLookupsMetricName  = "persona_directory_lookups_total"
	agentGenerationMetricName = "persona_agent_generations_total"
)

var (
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: chatRequestsMetricName,
		Help: "Chat requests handled by the edge, by outcome.",
	}, []string{"outcome"})

	chatDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    chatDurationMetricName,
		Help:    "Wall time of chat requests handled by the edge, by outcome.",
		Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 20, 30, 45, 55, 60},
	}, []string{"outcome"})

	personaLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: personaLookupsMetricName,
		Help: "Persona directory reads, by result.",
	}, []string{"result"})

	agentGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: agentGenerationMetricName,
		Help: "Persona agent model generations, by result.",
	}, []string{"result"})
)

func ObserveChatOutcome(outcome string, elapsed time.Duration) {
	chatRequests.WithLabelValues(outcome).Inc()
	chatDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func ObservePersonaLookup(err error) {
	personaLookups.WithLabelValues(result(err)).Inc()
}

func ObserveAgentGeneration(err error) {
	agentGenerations.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// NewGinMiddleware returns request metrics middleware recording into the
// default prometheus registry. It must be created once per process.
func NewGinMiddleware(prefix string) gin.HandlerFunc {
	mdlw := httpmiddleware.New(httpmiddleware.Config{
		Recorder: httpmetrics.NewRecorder(httpmetrics.Config{Prefix: prefix}),
	})
	return ginmiddleware.Handler("", mdlw)
}
