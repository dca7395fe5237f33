package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "liveadmin_http_requests_total",
		Help: "HTTP requests served, by method and status class.",
	},
	[]string{"method", "class"},
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Metrics counts every served request. Route patterns are deliberately not
// used as a label to keep cardinality flat.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		class := "2xx"
		switch {
		case rec.status >= 500:
			class = "5xx"
		case rec.status >= 400:
			class = "4xx"
		case rec.status >= 300:
			class = "3xx"
		}
		requestsTotal.WithLabelValues(r.Method, class).Inc()
	})
}
