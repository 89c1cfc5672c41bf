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
	"log/slog"
	"net/http"

	"github.com/go-dataspace/run-access/internal/authforwarder"
	"github.com/go-dataspace/run-access/logging"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sloghttp "github.com/samber/slog-http"
)

// GetRoutes gets all the bitstream access routes.
func GetRoutes(ah *accessHandlers) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /bitstreams/{id}/access", WrapHandlerWithMetrics(
		"access", WrapHandlerWithError(ah.accessHandler)))
	mux.Handle("GET /bitstreams/{id}/download", WrapHandlerWithMetrics(
		"download", WrapHandlerWithError(ah.downloadHandler)))
	mux.Handle("GET /bitstreams/{id}/preview", WrapHandlerWithMetrics(
		"preview", WrapHandlerWithError(ah.previewHandler)))
	mux.Handle("GET /bitstreams/{id}/viewer", WrapHandlerWithMetrics(
		"viewer", WrapHandlerWithError(ah.viewerHandler)))
	mux.Handle("POST /bitstreams/{id}/licence", WrapHandlerWithMetrics(
		"licence", jsonBodyMiddleware(WrapHandlerWithError(ah.licenceHandler))))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// withMiddleware wraps the routes in the access log, the request logger and the
// credential forwarding.
func withMiddleware(logger *slog.Logger, sessionCookie string, h http.Handler) http.Handler {
	return alice.New(
		sloghttp.Recovery,
		sloghttp.New(logger),
		logging.NewMiddleware(logger),
		authforwarder.NewHTTPMiddleware(sessionCookie),
	).Then(h)
}
