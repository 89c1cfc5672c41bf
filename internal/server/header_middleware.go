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
	"fmt"
	"mime"
	"net/http"

	"github.com/go-dataspace/run-access/logging"
)

// jsonBodyMiddleware refuses requests that carry a body that isn't JSON.
func jsonBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				if err := encodeJSON(w, http.StatusUnsupportedMediaType, errorResponse{
					Error: fmt.Sprintf("Unsupported content-type: %s", r.Header.Get("Content-Type")),
				}); err != nil {
					logging.Extract(r.Context()).Error("Error while encoding HTTP error", "err", err)
				}
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
