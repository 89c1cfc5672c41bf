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

package access

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

var (
	// ErrMissingCredential is returned when a licence is requested without a passphrase.
	ErrMissingCredential = errors.New("missing credential")
	// ErrIdentityUnavailable is logged when no identity strategy produced a result.
	ErrIdentityUnavailable = errors.New("identity unavailable")
	// ErrTokenDecode is returned when the bearer token payload can't be decoded.
	ErrTokenDecode = errors.New("token decode failure")
	// ErrStrategyUnavailable is returned by an identity strategy that can't work with the
	// given source at all, e.g. because there is no session.
	ErrStrategyUnavailable = errors.New("identity strategy unavailable")
	// ErrAuthorizationQuery is returned when the repository couldn't answer an authorization query.
	ErrAuthorizationQuery = errors.New("authorization query failed")
	// ErrInvalidLicenceRequest is returned when we built a licence request the licence service
	// would reject, it is never sent.
	ErrInvalidLicenceRequest = errors.New("invalid licence request")
)

// SignedURLIssuanceError is returned when no signed URL could be issued for RawURL.
type SignedURLIssuanceError struct {
	RawURL string
	Err    error
}

func (e *SignedURLIssuanceError) Error() string {
	return fmt.Sprintf("could not issue signed URL for %s: %s", e.RawURL, e.Err)
}

func (e *SignedURLIssuanceError) Unwrap() error { return e.Err }

func (e *SignedURLIssuanceError) StatusCode() int { return http.StatusBadGateway }

func (e *SignedURLIssuanceError) Message() string {
	return "Could not authorize the file transfer."
}

// LicenceIssuanceError is returned when the licence service did not hand out a licence.
// These are never retried, a licence request may consume a single-use grant.
type LicenceIssuanceError struct {
	BitstreamID uuid.UUID
	Err         error
}

func (e *LicenceIssuanceError) Error() string {
	return fmt.Sprintf("could not issue licence for %s: %s", e.BitstreamID, e.Err)
}

func (e *LicenceIssuanceError) Unwrap() error { return e.Err }

func (e *LicenceIssuanceError) StatusCode() int { return http.StatusBadGateway }

func (e *LicenceIssuanceError) Message() string {
	return "Could not create the licence, please request it again."
}
