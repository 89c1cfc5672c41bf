// Copyright 2024 go-dataspace
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/urfave/negroni"
)

var metricLabels = []string{"route", "method", "code"}

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "run_access",
			Name:      "http_requests_total",
			Help:      "Number of handled bitstream requests.",
		}, metricLabels,
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "run_access",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of bitstream requests, including the calls to the repository.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
		}, metricLabels,
	)
	responseSize = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: "run_access",
			Name:      "http_response_size_bytes",
			Help:      "Size of bitstream responses.",
		}, metricLabels,
	)
)

// WrapHandlerWithMetrics records the outcome of every request to handler under route.
func WrapHandlerWithMetrics(route string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := negroni.NewResponseWriter(w)
		handler.ServeHTTP(lrw, r)
		labels := prometheus.Labels{
			"route":  route,
			"method": r.Method,
			"code":   strconv.Itoa(lrw.Status()),
		}
		requestsTotal.With(labels).Inc()
		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		responseSize.With(labels).Observe(float64(lrw.Size()))
	})
}
