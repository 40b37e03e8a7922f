package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CandlesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_ingested_total", Help: "Count of candles upserted into the store"},
		[]string{"symbol", "interval"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signal engine verdicts by outcome"},
		[]string{"symbol", "verdict"},
	)
	GuardBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "guard_blocks_total", Help: "Trade candidates blocked by a guard"},
		[]string{"symbol", "guard"},
	)
	PacketsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "packets_total", Help: "Trade packets packaged and audited"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(CandlesIngested, SignalsTotal, GuardBlocksTotal, PacketsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
