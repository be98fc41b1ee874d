// Package telemetry exports simulation progress as Prometheus metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/mat"
)

// Recorder is a chainbinom.Observer that counts recorded steps and exposes the
// latest population of every compartment summed over units. It is safe for use
// by an Ensemble.
type Recorder struct {
	compartments []string
	steps        prometheus.Counter
	runs         prometheus.Counter
	population   *prometheus.GaugeVec
	simTime      prometheus.Gauge
}

func NewRecorder(reg prometheus.Registerer, compartments []string) (*Recorder, error) {
	r := &Recorder{
		compartments: append([]string(nil), compartments...),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainsim_steps_total",
			Help: "Recorded simulation steps across all runs.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainsim_runs_started_total",
			Help: "Simulation runs that recorded their initial state.",
		}),
		population: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chainsim_compartment_population",
			Help: "Population per compartment summed over units at the latest recorded step.",
		}, []string{"compartment"}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chainsim_simulated_time",
			Help: "Simulation time of the latest recorded step.",
		}),
	}

	for _, c := range []prometheus.Collector{r.steps, r.runs, r.population, r.simTime} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) OnStep(step int, t float64, x *mat.Dense) {
	if step == 0 {
		r.runs.Inc()
	}
	r.steps.Inc()
	r.simTime.Set(t)

	for i, name := range r.compartments {
		r.population.WithLabelValues(name).Set(mat.Sum(x.RowView(i)))
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
