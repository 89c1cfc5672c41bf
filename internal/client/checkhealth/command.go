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

// Package checkhealth offers a command to query the health service of RUN-ACCESS.
package checkhealth

import (
	"context"
	"fmt"

	"github.com/go-dataspace/run-access/internal/client/shared"
	"github.com/go-dataspace/run-access/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultService = "run-access"

var Command = &cobra.Command{
	Use:   "checkhealth [service]",
	Short: "Check the health of a RUN-ACCESS instance.",
	Long:  `Queries the gRPC health service of RUN-ACCESS, by default for the run-access service.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, ok := viper.Get("initCTX").(context.Context)
		if !ok {
			return fmt.Errorf("couldn't fetch initial context")
		}
		service := defaultService
		if len(args) == 1 {
			service = args[0]
		}

		client, conn, err := shared.GetHealthClient()
		if err != nil {
			return fmt.Errorf("couldn't initialise gRPC client: %w", err)
		}
		defer conn.Close()

		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			ui.Warn("%s is %s", service, resp.GetStatus())
			return fmt.Errorf("%s is not serving", service)
		}
		ui.Info("%s is %s", service, resp.GetStatus())
		return nil
	},
}
