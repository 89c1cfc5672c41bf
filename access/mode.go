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
	"context"
	"fmt"
	"sync"

	"github.com/go-dataspace/run-access/logging"
	"github.com/google/uuid"
)

// Decision is the access mode offered to a user for a bitstream.
type Decision uint

const (
	// Direct links to the download route.
	Direct Decision = iota
	// RequestCopy links to the request-a-copy form of the item.
	RequestCopy
	// Denied is never produced by ResolveMode, which degrades to Direct instead and leaves
	// the refusal to the repository. It exists for callers rendering a decision they got
	// from elsewhere.
	Denied
)

func (d Decision) String() string {
	switch d {
	case Direct:
		return "direct"
	case RequestCopy:
		return "request-copy"
	case Denied:
		return "denied"
	default:
		return fmt.Sprintf("Decision(%d)", uint(d))
	}
}

func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Decision) UnmarshalText(b []byte) error {
	switch string(b) {
	case "direct":
		*d = Direct
	case "request-copy":
		*d = RequestCopy
	case "denied":
		*d = Denied
	default:
		return fmt.Errorf("unknown decision: %s", string(b))
	}
	return nil
}

// AccessCheckResult holds the outcome of the two authorization queries for one user and
// one bitstream. It is never cached.
type AccessCheckResult struct {
	CanDownload     bool
	CanRequestACopy bool
}

// ResolveMode picks the access mode, the first matching rule wins:
//
//  1. canDownload: Direct
//  2. !canDownload && canRequestACopy && hasItemContext: RequestCopy
//  3. anything else: Direct
//
// The last rule means a user with neither affordance still gets the download route, and
// the repository rejects the download. This is deliberate, do not turn it into Denied
// without a product decision.
func ResolveMode(canDownload, canRequestACopy, hasItemContext bool) Decision {
	if canDownload {
		return Direct
	}
	if canRequestACopy && hasItemContext {
		return RequestCopy
	}
	return Direct
}

// Mode is a resolved decision together with what the page needs to render it.
type Mode struct {
	Decision    Decision `json:"decision"`
	CanDownload bool     `json:"canDownload"`
	Href        string   `json:"href"`
}

// ModeResolver gathers the authorization results for a bitstream and resolves the mode.
type ModeResolver struct {
	Authorizer Authorizer
	Endpoints  Endpoints
	// RequestACopy enables the request-a-copy affordance. When it is off, every user is
	// offered the download route and treated as authorized for display, the real check
	// happens when the content is fetched.
	RequestACopy bool
}

// Resolve returns the mode for the bitstream. itemID is the item the bitstream is shown in,
// and may be nil.
func (mr *ModeResolver) Resolve(ctx context.Context, b Bitstream, itemID *uuid.UUID) (Mode, error) {
	if !mr.RequestACopy {
		return Mode{
			Decision:    Direct,
			CanDownload: true,
			Href:        mr.Endpoints.DownloadRoute(b),
		}, nil
	}

	result, err := mr.check(ctx, b)
	if err != nil {
		return Mode{}, err
	}

	decision := ResolveMode(result.CanDownload, result.CanRequestACopy, itemID != nil)
	logging.Extract(ctx).Debug("Resolved access mode",
		"bitstream", b.ID,
		"can_download", result.CanDownload,
		"can_request_a_copy", result.CanRequestACopy,
		"decision", decision,
	)
	mode := Mode{
		Decision:    decision,
		CanDownload: result.CanDownload,
		Href:        mr.Endpoints.DownloadRoute(b),
	}
	if decision == RequestCopy {
		mode.Href = mr.Endpoints.RequestACopyRoute(*itemID, b)
	}
	return mode, nil
}

// check runs both authorization queries concurrently.
func (mr *ModeResolver) check(ctx context.Context, b Bitstream) (AccessCheckResult, error) {
	self := mr.Endpoints.Self(b)
	var (
		wg                   sync.WaitGroup
		result               AccessCheckResult
		downloadErr, copyErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.CanDownload, downloadErr = mr.Authorizer.IsAuthorized(ctx, FeatureCanDownload, self)
	}()
	go func() {
		defer wg.Done()
		result.CanRequestACopy, copyErr = mr.Authorizer.IsAuthorized(ctx, FeatureCanRequestACopy, self)
	}()
	wg.Wait()

	if downloadErr != nil {
		return AccessCheckResult{}, downloadErr
	}
	if copyErr != nil {
		return AccessCheckResult{}, copyErr
	}
	return result, nil
}
