package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"neuroflight/internal/evo"
)

// Metrics exports per-generation fitness as Prometheus series. A nil
// *Metrics ignores observations.
type Metrics struct {
	gatherer    prometheus.Gatherer
	fitnessMin  prometheus.Gauge
	fitnessMax  prometheus.Gauge
	fitnessAvg  prometheus.Gauge
	generations prometheus.Counter
}

// NewMetrics registers the fitness series on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	return NewMetricsWith(registry, registry)
}

func NewMetricsWith(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		gatherer: gatherer,
		fitnessMin: factory.NewGauge(prometheus.GaugeOpts{
			Name: "neuroflight_fitness_min",
			Help: "Lowest fitness in the last evaluated generation",
		}),
		fitnessMax: factory.NewGauge(prometheus.GaugeOpts{
			Name: "neuroflight_fitness_max",
			Help: "Highest fitness in the last evaluated generation",
		}),
		fitnessAvg: factory.NewGauge(prometheus.GaugeOpts{
			Name: "neuroflight_fitness_average",
			Help: "Mean fitness of the last evaluated generation",
		}),
		generations: factory.NewCounter(prometheus.CounterOpts{
			Name: "neuroflight_generations_total",
			Help: "Generations evaluated since the process started",
		}),
	}
}

func (m *Metrics) Observe(stats evo.Statistics) {
	if m == nil {
		return
	}
	m.fitnessMin.Set(float64(stats.Min))
	m.fitnessMax.Set(float64(stats.Max))
	m.fitnessAvg.Set(float64(stats.Average))
	m.generations.Inc()
}

// Handler serves the registered series in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
