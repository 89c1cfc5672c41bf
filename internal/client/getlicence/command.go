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

// Package getlicence offers a command to request an LCP licence for a bitstream.
package getlicence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path"
	"strconv"

	"github.com/go-dataspace/run-access/internal/client/shared"
	"github.com/go-dataspace/run-access/internal/ui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const licenceExtension = ".lcpl"

func init() {
	Command.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory to write the licence to")
	Command.Flags().StringVarP(&password, "password", "p", "", "Passphrase the licence is encrypted with")
}

var (
	outputDir string
	password  string
	Command   = &cobra.Command{
		Use:   "getlicence <bitstream_id>",
		Short: "Request an LCP licence for a bitstream.",
		Long: `Asks RUN-ACCESS for an LCP licence of a bitstream, encrypted with the given
passphrase, and writes it into an output directory.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(args[0]); err != nil {
				return fmt.Errorf("bitstream ID needs to be a UUID: %w", err)
			}
			if password == "" {
				return fmt.Errorf("a passphrase is required")
			}
			return checkWritable(outputDir)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, ok := viper.Get("initCTX").(context.Context)
			if !ok {
				return fmt.Errorf("couldn't fetch initial context")
			}

			u, err := shared.BitstreamURL(args[0], "licence")
			if err != nil {
				return err
			}
			body, err := json.Marshal(struct {
				Password string `json:"password"`
			}{password})
			if err != nil {
				return err
			}

			ctx, requester := shared.GetRequester(ctx)
			ui.Info("Requesting licence for %s", args[0])
			resp, err := requester.SendHTTPRequest(ctx, http.MethodPost, u, body)
			if err != nil {
				return fmt.Errorf("could not get licence for %s: %w", args[0], shared.ExplainError(err))
			}

			location := path.Join(outputDir, args[0]+licenceExtension)
			if err := os.WriteFile(location, resp.Body, 0o600); err != nil {
				return fmt.Errorf("could not write licence to %s: %w", location, err)
			}
			ui.Info("Licence for %s written to %s", args[0], location)
			return nil
		},
	}
)

func checkWritable(dir string) error {
	s, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("could not stat directory %s: %w", dir, err)
	}
	if !s.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	// Quick and dirty portable way to see if we can write in the output directory.
	var errStat error
	var testFile string
	for errStat == nil {
		testFile = path.Join(dir, strconv.Itoa(int(rand.Uint64()))) //nolint:gosec
		_, errStat = os.Stat(testFile)
	}
	if !errors.Is(errStat, os.ErrNotExist) {
		return fmt.Errorf("could not find a test file to write to: %w", errStat)
	}
	if err := os.WriteFile(testFile, []byte{1}, 0o600); err != nil {
		return fmt.Errorf("could not write to file %s: %w", testFile, err)
	}
	if err := os.Remove(testFile); err != nil {
		return fmt.Errorf("could not remove file %s: %w", testFile, err)
	}
	return nil
}
