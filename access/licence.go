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
	"net/http"
	"net/url"

	"github.com/go-dataspace/run-access/access/shared"
	"github.com/go-dataspace/run-access/logging"
	"github.com/google/uuid"
)

const (
	licenceExtension   = ".lcpl"
	licenceContentType = "application/vnd.readium.lcp.license.v1.0+json"
)

// Licence is an encrypted, user bound LCP licence document. We don't look inside.
type Licence struct {
	Filename    string
	ContentType string
	Data        []byte
}

// LicenceIssuer requests licences for bitstreams.
type LicenceIssuer interface {
	Request(
		ctx context.Context, bitstreamID uuid.UUID, identity UserIdentity, secret, signedURL string,
	) (*Licence, error)
}

type licenceRequest struct {
	UserEmail    string `json:"userEmail"`
	UserName     string `json:"userName"`
	UserPassword string `json:"userPassword" validate:"required"`
	SignedURL    string `json:"signedUrl" validate:"required,url"`
}

// LicenceClient talks to the LCP licence service.
type LicenceClient struct {
	requester shared.Requester
	base      *url.URL
}

// NewLicenceClient returns a client for the licence service at base.
func NewLicenceClient(requester shared.Requester, base *url.URL) *LicenceClient {
	return &LicenceClient{
		requester: requester,
		base:      base,
	}
}

// Request asks for a licence for the bitstream, encrypted with secret. The signed URL is the
// one the licence service fetches the content from. A failed request is not retried.
func (lc *LicenceClient) Request(
	ctx context.Context, bitstreamID uuid.UUID, identity UserIdentity, secret, signedURL string,
) (*Licence, error) {
	if secret == "" {
		return nil, ErrMissingCredential
	}
	ctx, logger := logging.InjectLabels(ctx, "bitstream", bitstreamID)

	body, err := validateAndMarshal(ctx, licenceRequest{
		UserEmail:    identity.Email,
		UserName:     identity.Name,
		UserPassword: secret,
		SignedURL:    signedURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLicenceRequest, err)
	}

	resp, err := lc.requester.SendHTTPRequest(
		ctx, http.MethodPost, lc.base.JoinPath(bitstreamID.String()), body,
		shared.WithAccept(licenceContentType+", application/octet-stream"),
	)
	if err != nil {
		return nil, &LicenceIssuanceError{BitstreamID: bitstreamID, Err: err}
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = licenceContentType
	}
	logger.Info("Licence issued", "size", len(resp.Body))
	return &Licence{
		Filename:    bitstreamID.String() + licenceExtension,
		ContentType: contentType,
		Data:        resp.Body,
	}, nil
}
