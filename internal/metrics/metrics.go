package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goldsure"

type Metrics struct {
	registry *prometheus.Registry

	StockAdded      prometheus.Counter
	StockConsumed   prometheus.Counter
	ConsumeRejected prometheus.Counter
	BillsRecorded   prometheus.Counter
	ReceiptFailures *prometheus.CounterVec
}

// New registers the application counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		StockAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_added_units_total",
			Help:      "Units added through add/restock.",
		}),
		StockConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_consumed_units_total",
			Help:      "Units deducted by successful use_stock requests.",
		}),
		ConsumeRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_consume_rejected_total",
			Help:      "use_stock requests rejected for insufficient stock.",
		}),
		BillsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_recorded_total",
			Help:      "Billing records created.",
		}),
		ReceiptFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_render_failures_total",
			Help:      "Receipt renders that failed, by format.",
		}, []string{"format"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.StockAdded,
		m.StockConsumed,
		m.ConsumeRejected,
		m.BillsRecorded,
		m.ReceiptFailures,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
