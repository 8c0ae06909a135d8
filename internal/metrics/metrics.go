// Package metrics exposes game activity as Prometheus collectors.
//
// Metrics:
//   - tumbletris_pieces_spawned_total{kind}: counter
//   - tumbletris_rest_transitions_total: counter
//   - tumbletris_frame_seconds: histogram
//   - tumbletris_active_blocks: gauge, blocks in the falling piece
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plus3/tumbletris/tetris"
)

const namespace = "tumbletris"

// PiecesSpawnedName is the fully qualified name of the spawn counter.
const PiecesSpawnedName = namespace + "_pieces_spawned_total"

// Recorder implements tetris.Observer.
type Recorder struct {
	registry     *prometheus.Registry
	spawned      *prometheus.CounterVec
	rests        prometheus.Counter
	frameSeconds prometheus.Histogram
	activeBlocks prometheus.Gauge
}

var _ tetris.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pieces_spawned_total",
			Help:      "Pieces spawned, by kind.",
		}, []string{"kind"}),
		rests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rest_transitions_total",
			Help:      "Times the falling piece came to rest.",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_seconds",
			Help:      "Wall time spent simulating one frame.",
			Buckets:   []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066},
		}),
		activeBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_blocks",
			Help:      "Blocks in the falling piece.",
		}),
	}

	r.registry.MustRegister(r.spawned, r.rests, r.frameSeconds, r.activeBlocks)
	return r
}

// Registry returns the registry holding the game collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) PieceSpawned(kind tetris.Kind) {
	r.spawned.WithLabelValues(kind.String()).Inc()
}

func (r *Recorder) PieceRested(tetris.Kind) {
	r.rests.Inc()
}

func (r *Recorder) FrameCompleted(elapsed time.Duration, activeBlocks int) {
	r.frameSeconds.Observe(elapsed.Seconds())
	r.activeBlocks.Set(float64(activeBlocks))
}
