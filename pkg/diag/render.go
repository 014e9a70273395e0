// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Render writes every diagnostic in b, in Sorted order, to w as a plain
// human-readable report: one paragraph per diagnostic, the kind and
// message on the first line, secondary labels indented beneath it. Long
// messages are wrapped to the detected terminal width when w is a
// terminal, falling back to an 80-column default otherwise.
func Render(w io.Writer, b *Bag) error {
	width := detectWidth(w)

	for _, d := range b.Sorted() {
		if err := renderOne(w, d, width); err != nil {
			return err
		}
	}

	return nil
}

func renderOne(w io.Writer, d Diagnostic, width int) error {
	header := fmt.Sprintf("error[%s]: %s", d.Kind, d.Message)
	if _, err := fmt.Fprintln(w, wrap(header, width)); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "  --> span %d\n", d.Primary); err != nil {
		return err
	}

	for _, l := range d.Secondary {
		if _, err := fmt.Fprintf(w, "  note: %s (span %d)\n", l.Note, l.Span); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w)

	return err
}

func detectWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}

	return 80
}

func wrap(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}

	var b strings.Builder

	line := 0

	for _, r := range s {
		if line >= width && r == ' ' {
			b.WriteByte('\n')
			line = 0

			continue
		}

		b.WriteRune(r)
		line++
	}

	return b.String()
}
