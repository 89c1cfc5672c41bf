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

// Package authforwarder captures the caller's credentials on incoming requests and
// forwards them on outgoing requests to the repository.
package authforwarder

import (
	"context"
	"net/http"

	"github.com/go-dataspace/run-access/logging"
)

type contextKeyType string

const (
	contextKey contextKeyType = "credentials"

	ForwardedEmailHeader = "X-Forwarded-Email"
	ForwardedUserHeader  = "X-Forwarded-User"
)

// Credentials are what the caller presented to us. None of it is verified here, the
// repository does that when we forward the authorization header.
type Credentials struct {
	Authorization  string
	SessionID      string
	ForwardedEmail string
	ForwardedUser  string
}

// Anonymous returns true if there is nothing to forward.
func (c Credentials) Anonymous() bool {
	return c.Authorization == ""
}

// NewHTTPMiddleware returns a middleware that stores the credentials of the request in its
// context. The session ID is read from the cookie named sessionCookie.
func NewHTTPMiddleware(sessionCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			creds := Credentials{
				Authorization:  req.Header.Get("Authorization"),
				ForwardedEmail: req.Header.Get(ForwardedEmailHeader),
				ForwardedUser:  req.Header.Get(ForwardedUserHeader),
			}
			if c, err := req.Cookie(sessionCookie); err == nil {
				creds.SessionID = c.Value
			}
			req = req.WithContext(Inject(req.Context(), creds))
			next.ServeHTTP(w, req)
		})
	}
}

// Inject stores credentials in the context.
func Inject(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, contextKey, creds)
}

// Extract returns the credentials stored in the context, the zero value is anonymous.
func Extract(ctx context.Context) Credentials {
	ctxVal := ctx.Value(contextKey)
	if ctxVal == nil {
		return Credentials{}
	}
	val, ok := ctxVal.(Credentials)
	if !ok {
		panic("Credentials not of right type")
	}
	return val
}

// AuthRoundTripper adds the authorization header found in the request context to
// outgoing requests.
type AuthRoundTripper struct {
	Proxied http.RoundTripper
}

func (art AuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	logging.Extract(req.Context()).Debug("Doing request", "method", req.Method, "url", req.URL.String())
	creds := Extract(req.Context())
	if !creds.Anonymous() && req.Header.Get("Authorization") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", creds.Authorization)
	}
	proxied := art.Proxied
	if proxied == nil {
		proxied = http.DefaultTransport
	}
	return proxied.RoundTrip(req)
}
