package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas Prometheus del servicio, registradas en el registro global
// (expuestas vía /metrics).
var (
	StockMovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Total de asientos registrados en el libro de inventario",
	}, []string{"movement_type"})

	ShipmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipments_total",
		Help: "Total de envíos procesados (created) o deduplicados (replayed)",
	}, []string{"result"})

	SettlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commission_settlements_total",
		Help: "Total de liquidaciones de comisión congeladas",
	})

	ConcurrencyRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipment_concurrency_retries_total",
		Help: "Total de reintentos automáticos por conflicto de concurrencia",
	})

	AlertComputeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_alert_compute_failures_total",
		Help: "Total de cálculos de alertas fallidos por lecturas caídas",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de las peticiones HTTP por ruta y método",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
