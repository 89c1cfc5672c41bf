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

// Package cfg contains configuration helpers for RUN-ACCESS.
package cfg

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AddPersistentFlag adds a persistent flag `flag“, with default `def“ and usage message `usage`,
// and it will also bind the flag to the viper `configKey`.
func AddPersistentFlag(cmd *cobra.Command, configKey, flag, usage string, def any) {
	switch v := def.(type) {
	case int:
		cmd.PersistentFlags().Int(flag, v, usage)
	case string:
		cmd.PersistentFlags().String(flag, v, usage)
	case bool:
		cmd.PersistentFlags().Bool(flag, v, usage)
	case time.Duration:
		cmd.PersistentFlags().Duration(flag, v, usage)
	default:
		panic(fmt.Sprintf("Unsupported type: %T", v))
	}
	err := viper.BindPFlag(configKey, cmd.PersistentFlags().Lookup(flag))
	if err != nil {
		// impossible in this setup
		panic(err.Error())
	}
	viper.SetDefault(configKey, def)
}

// CheckURL checks that u is an absolute http(s) URL.
func CheckURL(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid URL %s: %w", u, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL %s needs a http or https scheme", u)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL %s has no host", u)
	}
	return nil
}

// CheckConnectAddr checks that addr is a host:port combination.
func CheckConnectAddr(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid address %s: %w", addr, err)
	}
	return nil
}

// CheckFilesExist checks that all given files exist and are regular files.
func CheckFilesExist(files ...string) error {
	var errs error
	for _, f := range files {
		s, err := os.Stat(f)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not stat %s: %w", f, err))
			continue
		}
		if !s.Mode().IsRegular() {
			errs = errors.Join(errs, fmt.Errorf("not a regular file: %s", f))
		}
	}
	return errs
}
