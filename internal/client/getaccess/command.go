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

// Package getaccess offers a command to get the access mode of a bitstream.
package getaccess

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-dataspace/run-access/internal/client/shared"
	"github.com/go-dataspace/run-access/internal/ui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	Command.Flags().BoolVarP(&printJSON, "json", "j", false, "output access mode in JSON format")
	Command.Flags().StringVarP(&itemID, "item", "i", "", "item the bitstream is shown in")
}

var (
	printJSON bool
	itemID    string
	Command   = &cobra.Command{
		Use:   "getaccess <bitstream_id>",
		Short: "Get the access mode of a bitstream.",
		Long: `Asks RUN-ACCESS how the configured user may access a bitstream, and which
routes serve it.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(args[0]); err != nil {
				return fmt.Errorf("bitstream ID needs to be a UUID: %w", err)
			}
			if itemID != "" {
				if _, err := uuid.Parse(itemID); err != nil {
					return fmt.Errorf("item ID needs to be a UUID: %w", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, ok := viper.Get("initCTX").(context.Context)
			if !ok {
				return fmt.Errorf("couldn't fetch initial context")
			}

			u, err := shared.BitstreamURL(args[0], "access")
			if err != nil {
				return err
			}
			if itemID != "" {
				u.RawQuery = url.Values{"item": []string{itemID}}.Encode()
			}

			ctx, requester := shared.GetRequester(ctx)
			ui.Info("Fetching access mode of %s", args[0])
			resp, err := requester.SendHTTPRequest(ctx, http.MethodGet, u, nil)
			if err != nil {
				return fmt.Errorf("could not get access mode of %s: %w", args[0], shared.ExplainError(err))
			}
			var info shared.AccessInfo
			if err := json.Unmarshal(resp.Body, &info); err != nil {
				return fmt.Errorf("could not decode access mode: %w", err)
			}
			return shared.PrintAccess(info, printJSON)
		},
	}
)
