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

// Package ui contains the client's terminal output functions.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Stderr receives the status messages.
	Stderr io.Writer = os.Stderr
	// Stdout receives the command output.
	Stdout io.Writer = os.Stdout
)

func status(bg, fg color.Attribute, label, format string, args ...any) {
	color.New(bg, color.FgWhite, color.Bold).Fprintf(Stderr, " %s ", label)
	color.New(fg, color.Bold).Fprintln(Stderr, " "+fmt.Sprintf(format, args...))
}

// Error prints a red error message to stderr.
func Error(format string, args ...any) {
	status(color.BgRed, color.FgRed, "ERROR", format, args...)
}

// Warn prints a yellow warning message to stderr.
func Warn(format string, args ...any) {
	status(color.BgYellow, color.FgYellow, "WARN", format, args...)
}

// Info prints a green informational message to stderr.
func Info(format string, args ...any) {
	status(color.BgGreen, color.FgGreen, "INFO", format, args...)
}

// Print is a normal message, to stdout.
func Print(message string) {
	fmt.Fprint(Stdout, message)
}
