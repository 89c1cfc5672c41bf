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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-dataspace/run-access/access"
	"github.com/go-dataspace/run-access/logging"
)

// HTTPReturnError is an error that knows how it should be returned over HTTP.
type HTTPReturnError interface {
	error
	StatusCode() int
	Message() string
}

type errorResponse struct {
	Error string `json:"error"`
}

// requestError is returned by handlers when the request itself is wrong.
type requestError struct {
	status  int
	message string
	err     error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *requestError) Unwrap() error   { return e.err }
func (e *requestError) StatusCode() int { return e.status }
func (e *requestError) Message() string { return e.message }

func badRequest(message string, err error) error {
	return &requestError{status: http.StatusBadRequest, message: message, err: err}
}

// WrapHandlerWithError wraps a http handler that returns an error into a more generic http.Handler.
// Errors conforming to HTTPReturnError are returned with their own status and message, the
// access error taxonomy is mapped onto a status, and anything else becomes a generic 500.
func WrapHandlerWithError(h func(w http.ResponseWriter, r *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		logger := logging.Extract(r.Context())
		logger.Error("HTTP handler returned error", "err", err.Error())

		status, message := http.StatusInternalServerError, "Internal Server Error"
		var httpError HTTPReturnError
		switch {
		case errors.As(err, &httpError):
			status, message = httpError.StatusCode(), httpError.Message()
		case errors.Is(err, access.ErrMissingCredential):
			status, message = http.StatusBadRequest, "A passphrase is required to request a licence."
		case errors.Is(err, access.ErrAuthorizationQuery):
			status, message = http.StatusBadGateway, "Could not determine access to the file."
		}
		if err := encodeJSON(w, status, errorResponse{Error: message}); err != nil {
			logger.Error("Error while encoding HTTP error", "err", err)
		}
	})
}

func encodeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
