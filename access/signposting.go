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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-dataspace/run-access/access/shared"
	"github.com/google/uuid"
)

// SignpostingLink is a single typed link about a resource. The order of a list of links is
// kept as is when it is serialized.
type SignpostingLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
}

// BuildHeader serializes the links into a Link header value.
func BuildHeader(links []SignpostingLink) string {
	var b strings.Builder
	for i, l := range links {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, `<%s> ; rel="%s"`, l.Href, l.Rel)
		if l.Type != "" {
			fmt.Fprintf(&b, ` ; type="%s"`, l.Type)
		}
	}
	return b.String()
}

// SetLinkHeader sets the Link header to the links. With no links there is no header, an
// empty Link header says nothing. It returns whether the header was set.
func SetLinkHeader(h http.Header, links []SignpostingLink) bool {
	if len(links) == 0 {
		return false
	}
	h.Set("Link", BuildHeader(links))
	return true
}

// SignpostingSource supplies the signposting links for a resource.
type SignpostingSource interface {
	GetLinks(ctx context.Context, id uuid.UUID) ([]SignpostingLink, error)
}

// SignpostingClient fetches links from the repository's signposting endpoint.
type SignpostingClient struct {
	requester shared.Requester
	linksURL  *url.URL
}

// NewSignpostingClient returns a client for the repository API rooted at api.
func NewSignpostingClient(requester shared.Requester, api *url.URL) *SignpostingClient {
	return &SignpostingClient{
		requester: requester,
		linksURL:  api.JoinPath("signposting", "links"),
	}
}

func (sc *SignpostingClient) GetLinks(ctx context.Context, id uuid.UUID) ([]SignpostingLink, error) {
	resp, err := sc.requester.SendHTTPRequest(ctx, http.MethodGet, sc.linksURL.JoinPath(id.String()), nil)
	if err != nil {
		return nil, fmt.Errorf("could not fetch signposting links: %w", err)
	}
	var links []SignpostingLink
	if err := json.Unmarshal(resp.Body, &links); err != nil {
		return nil, fmt.Errorf("could not decode signposting links: %w", err)
	}
	return links, nil
}
