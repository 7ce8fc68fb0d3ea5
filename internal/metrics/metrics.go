package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticksched/internal/sched"
)

// Recorder turns scheduler status events into prometheus metrics.
type Recorder struct {
	Passes     prometheus.Counter
	IdlePasses prometheus.Counter
	Dispatches *prometheus.CounterVec
	LastTick   prometheus.Gauge
	Running    prometheus.Gauge

	byIndex []prometheus.Counter
}

// NewRecorder registers the scheduler metrics on reg. taskNames pre-creates
// one dispatch series per task, in priority order.
func NewRecorder(reg prometheus.Registerer, taskNames []string) *Recorder {
	r := &Recorder{
		Passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ticksched",
			Name:      "passes_total",
			Help:      "Total number of dispatch passes",
		}),
		IdlePasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ticksched",
			Name:      "idle_passes_total",
			Help:      "Total number of passes in which no task was ready",
		}),
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticksched",
				Name:      "dispatch_total",
				Help:      "Total number of task runs by task",
			},
			[]string{"task"},
		),
		LastTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ticksched",
			Name:      "last_tick",
			Help:      "Tick sampled by the most recent pass",
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ticksched",
			Name:      "running",
			Help:      "1 while the dispatch loop runs",
		}),
	}

	r.byIndex = make([]prometheus.Counter, len(taskNames))
	for i, name := range taskNames {
		r.byIndex[i] = r.Dispatches.WithLabelValues(name)
	}

	reg.MustRegister(
		r.Passes,
		r.IdlePasses,
		r.Dispatches,
		r.LastTick,
		r.Running,
	)

	return r
}

func (r *Recorder) Observe(ev sched.StatusEvent) {
	switch ev.Kind {
	case sched.StatusStart:
		r.Running.Set(1)
	case sched.StatusStop:
		r.Running.Set(0)
	case sched.StatusIdle:
		r.Passes.Inc()
		r.IdlePasses.Inc()
		r.LastTick.Set(float64(ev.Tick))
	case sched.StatusDispatch:
		r.Passes.Inc()
		r.LastTick.Set(float64(ev.Tick))
		if ev.Index >= 0 && ev.Index < len(r.byIndex) {
			r.byIndex[ev.Index].Inc()
			return
		}
		r.Dispatches.WithLabelValues(ev.Task).Inc()
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
