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

// Package client contains a client for RUN-ACCESS, this is the base of all client subcommands.
package client

import (
	"time"

	"github.com/fatih/color"
	"github.com/go-dataspace/run-access/internal/cfg"
	"github.com/go-dataspace/run-access/internal/client/checkhealth"
	"github.com/go-dataspace/run-access/internal/client/getaccess"
	"github.com/go-dataspace/run-access/internal/client/getlicence"
	"github.com/go-dataspace/run-access/internal/client/shared"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "client",
	Short: "Run a RUN-ACCESS client command.",
	Long:  `Run a RUN-ACCESS client command.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.CheckURL(viper.GetString(shared.Address)); err != nil {
			return err
		}
		if err := cfg.CheckConnectAddr(viper.GetString(shared.HealthAddress)); err != nil {
			return err
		}

		if !viper.GetBool(shared.InsecureConn) {
			if ca := viper.GetString(shared.CACert); ca != "" {
				if err := cfg.CheckFilesExist(ca); err != nil {
					return err
				}
			}
			if viper.GetString(shared.ClientCert) != "" && viper.GetString(shared.ClientCertKey) != "" {
				if err := cfg.CheckFilesExist(
					viper.GetString(shared.ClientCert),
					viper.GetString(shared.ClientCertKey),
				); err != nil {
					return err
				}
			}
		}

		if viper.GetBool(shared.NoColor) {
			color.NoColor = true
		}

		return nil
	},
}

func init() {
	cfg.AddPersistentFlag(
		Command, shared.Address, "address", "URL of the RUN-ACCESS HTTP endpoint.", "http://127.0.0.1:8090/")
	cfg.AddPersistentFlag(
		Command, shared.HealthAddress, "health-address", "Address of the RUN-ACCESS gRPC health service.",
		"127.0.0.1:8091")
	cfg.AddPersistentFlag(
		Command, shared.Authorization, "authorization", "Authorization header to send with requests.", "")
	cfg.AddPersistentFlag(
		Command, shared.InsecureConn, "insecure", "Disable TLS when connecting to the health service.", false)
	cfg.AddPersistentFlag(
		Command, shared.CACert, "ca-cert", "CA certificate of endpoint cert issuer", "")
	cfg.AddPersistentFlag(
		Command, shared.ClientCert, "client-cert", "Client certificate to use with endpoint", "")
	cfg.AddPersistentFlag(
		Command, shared.ClientCertKey, "client-cert-key", "Key for client certificate", "")
	cfg.AddPersistentFlag(
		Command, shared.Timeout, "timeout", "Timeout of requests.", 30*time.Second)
	cfg.AddPersistentFlag(
		Command, shared.NoColor, "no-colour", "Disable colour in output.", false)

	Command.AddCommand(getaccess.Command)
	Command.AddCommand(getlicence.Command)
	Command.AddCommand(checkhealth.Command)
}
