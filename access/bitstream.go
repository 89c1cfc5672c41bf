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

// Package access decides how a user gets at a protected bitstream: a direct download, a
// request for a copy, or an LCP licence. It also issues the signed URLs that authorize the
// actual transfer and builds the signposting links for a bitstream.
package access

import (
	"net/url"

	"github.com/google/uuid"
)

const viewerFragment = "toolbar=0&navpanes=0&scrollbar=0"

// Bitstream is a single stored file in the repository. Only the repository changes it.
type Bitstream struct {
	ID uuid.UUID
}

// Endpoints are the base URLs of the services we talk to. They are resolved once at startup.
type Endpoints struct {
	// API is the root of the repository REST API, e.g. http://localhost:8080/server/api
	API *url.URL
	// UI is the root of the repository front-end, link targets are relative to this.
	UI *url.URL
	// Licence is the base of the LCP licence service, the bitstream ID is appended.
	Licence *url.URL
	// Viewer is the secure viewer, the signed content URL is passed as the url parameter.
	Viewer *url.URL
}

// Self is the repository reference of the bitstream, used in authorization queries.
func (e Endpoints) Self(b Bitstream) string {
	return e.API.JoinPath("core", "bitstreams", b.ID.String()).String()
}

// ContentURL is the raw, unauthenticated location of the bitstream content.
func (e Endpoints) ContentURL(b Bitstream) string {
	return e.API.JoinPath("core", "bitstreams", b.ID.String(), "content").String()
}

// PreviewURL is the raw, unauthenticated location of the bitstream preview.
func (e Endpoints) PreviewURL(b Bitstream) string {
	return e.API.JoinPath("core", "bitstreams", b.ID.String(), "preview").String()
}

// DownloadRoute is the front-end route that downloads the bitstream.
func (e Endpoints) DownloadRoute(b Bitstream) string {
	return e.UI.JoinPath("bitstreams", b.ID.String(), "download").String()
}

// RequestACopyRoute is the front-end route to ask the item owner for a copy.
func (e Endpoints) RequestACopyRoute(itemID uuid.UUID, b Bitstream) string {
	u := e.UI.JoinPath("items", itemID.String(), "request-a-copy")
	q := url.Values{}
	q.Set("bitstream", b.ID.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// PreviewTarget turns a signed preview URL into the URL handed to the browser, with the
// viewer toolbar disabled.
func PreviewTarget(signedURL string) string {
	return signedURL + "#" + viewerFragment
}

// ViewerTarget wraps a signed content URL in the secure viewer.
func (e Endpoints) ViewerTarget(signedURL string) string {
	u := *e.Viewer
	q := u.Query()
	q.Set("url", signedURL)
	u.RawQuery = q.Encode()
	u.Fragment = viewerFragment
	return u.String()
}
