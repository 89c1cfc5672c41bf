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

// Package shared contains the configuration, connection and output helpers the client
// subcommands share.
package shared

// Viper configuration keys of the client.
const (
	Address       = "client.address"
	HealthAddress = "client.healthAddress"
	Authorization = "client.authorization"
	InsecureConn  = "client.insecure"
	CACert        = "client.caCert"
	ClientCert    = "client.clientCert"
	ClientCertKey = "client.clientCertKey"
	Timeout       = "client.timeout"
	NoColor       = "client.noColour"
)
