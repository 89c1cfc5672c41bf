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

package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fatih/color"
	"github.com/go-dataspace/run-access/access"
	"github.com/go-dataspace/run-access/internal/ui"
	"github.com/spf13/viper"
)

// AccessLinks are the routes of a bitstream on the RUN-ACCESS endpoint.
type AccessLinks struct {
	Download string `json:"download"`
	Preview  string `json:"preview"`
	Viewer   string `json:"viewer"`
	Licence  string `json:"licence"`
}

// AccessInfo is the access mode of a bitstream as returned by RUN-ACCESS.
type AccessInfo struct {
	access.Mode
	Links AccessLinks `json:"links"`
}

func pprintJSON[T any](o T) error {
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("could not marshal access info: %w", err)
	}
	var buf bytes.Buffer
	err = json.Indent(&buf, b, "", "  ")
	if err != nil {
		return fmt.Errorf("could not indent JSON: %w", err)
	}
	if viper.GetBool(NoColor) {
		ui.Print(buf.String() + "\n")
		return nil
	}
	return quick.Highlight(ui.Stdout, buf.String()+"\n", "json", "terminal256", "catppuccin-mocha")
}

// PrintAccess prints out the access info, either as a table or as JSON.
func PrintAccess(info AccessInfo, printJSON bool) error {
	if printJSON {
		return pprintJSON(info)
	}
	return writeAccessTable(ui.Stdout, info)
}

func writeAccessTable(out io.Writer, info AccessInfo) error {
	bold := color.New(color.Bold)
	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", bold.Sprint("Decision"), decisionColour(info.Decision).Sprint(info.Decision))
	fmt.Fprintf(w, "%s\t%t\n", bold.Sprint("Can download"), info.CanDownload)
	fmt.Fprintf(w, "%s\t%s\n", bold.Sprint("Link"), info.Href)
	fmt.Fprintf(w, "%s\t%s\n", bold.Sprint("Download"), info.Links.Download)
	fmt.Fprintf(w, "%s\t%s\n", bold.Sprint("Preview"), info.Links.Preview)
	fmt.Fprintf(w, "%s\t%s\n", bold.Sprint("Viewer"), info.Links.Viewer)
	fmt.Fprintf(w, "%s\t%s\n", bold.Sprint("Licence"), info.Links.Licence)
	return w.Flush()
}

func decisionColour(d access.Decision) *color.Color {
	switch d {
	case access.Direct:
		return color.New(color.FgGreen)
	case access.RequestCopy:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
