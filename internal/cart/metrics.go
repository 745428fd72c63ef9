package cart

import (
	"github.com/prometheus/client_golang/prometheus"

	"FlashIt/pkg/kit"
)

const (
	opAdd      = "add"
	opRemove   = "remove"
	opUpdate   = "update"
	opClear    = "clear"
	opCheckout = "checkout"

	storageRead  = "read"
	storageWrite = "write"
)

// Metrics counts cart activity. A nil *Metrics records nothing.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	StorageFailures *prometheus.CounterVec
	Reloads         prometheus.Counter
	OpenCarts       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: kit.Namespace,
				Subsystem: "cart",
				Name:      "mutations_total",
				Help:      "Cart operations that changed state",
			},
			[]string{"op"},
		),
		StorageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: kit.Namespace,
				Subsystem: "cart",
				Name:      "storage_failures_total",
				Help:      "Cart slot reads or writes that failed and were recovered locally",
			},
			[]string{"kind"},
		),
		Reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: kit.Namespace,
			Subsystem: "cart",
			Name:      "external_reloads_total",
			Help:      "Carts reloaded after a write from another context",
		}),
		OpenCarts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: kit.Namespace,
			Subsystem: "cart",
			Name:      "open",
			Help:      "Carts currently held by the registry",
		}),
	}

	reg.MustRegister(m.Mutations, m.StorageFailures, m.Reloads, m.OpenCarts)
	return m
}

func (m *Metrics) mutation(op string) {
	if m != nil {
		m.Mutations.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) storageFailure(kind string) {
	if m != nil {
		m.StorageFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) reload() {
	if m != nil {
		m.Reloads.Inc()
	}
}

func (m *Metrics) open(delta float64) {
	if m != nil {
		m.OpenCarts.Add(delta)
	}
}
