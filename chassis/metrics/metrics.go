package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "queuewatch"

var (
	// QueueOperations counts calls into the queue service by outcome.
	QueueOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queue_operations_total",
		Help:      "Calls made to the queue service.",
	}, []string{"operation", "status"})

	// WatchExits counts finished waits by exit reason.
	WatchExits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watch_exits_total",
		Help:      "Finished queue waits by exit reason.",
	}, []string{"reason"})

	// WatchTicks observes how many ticks a wait took.
	WatchTicks = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "watch_ticks",
		Help:      "Number of polling ticks per finished wait.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 60, 300},
	})
)

// ObserveOperation ...
func ObserveOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	QueueOperations.WithLabelValues(operation, status).Inc()
}

// ObserveWatch ...
func ObserveWatch(reason string, ticks int) {
	WatchExits.WithLabelValues(reason).Inc()
	WatchTicks.Observe(float64(ticks))
}

// Router exposes the default registry on /metrics.
func Router() *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	return router
}

// Server is the metrics endpoint bound to addr.
type Server struct {
	srv *http.Server
}

// NewServer ...
func NewServer(addr string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background, listen errors are passed to onError.
func (s *Server) Start(onError func(error)) {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			onError(err)
		}
	}()
}

// Shutdown ...
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
