package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"TxEnvelope/txn"
)

type metrics struct {
	requests     *prometheus.CounterVec
	transactions *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "txenvelope",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "txenvelope",
			Subsystem: "api",
			Name:      "transactions_total",
			Help:      "Transactions processed by operation and type.",
		}, []string{"op", "type"}),
	}
	reg.MustRegister(m.requests, m.transactions)
	return m
}

func (m *metrics) request(route string, status int) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *metrics) transaction(op string, typ txn.TxType) {
	m.transactions.WithLabelValues(op, typ.String()).Inc()
}
