// seehuhn.de/go/icon - a trend-line icon renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command gen writes the trend-line icon set as PNG files.
// Run from the module root directory:
//
//	go run ./gen -dir icons
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"seehuhn.de/go/icon"
)

func main() {
	dir := flag.String("dir", "icons", "output directory (created if missing)")
	sizes := flag.String("sizes", "", "comma-separated icon sizes (default 16,48,128)")
	flag.Parse()

	targets, err := parseTargets(*sizes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if failed := run(*dir, targets, os.Stdout, os.Stderr); failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d icons failed\n", failed, len(targets))
		os.Exit(1)
	}
	fmt.Println("All icons created successfully!")
}

// run renders every target into dir and returns the number of failures.
// A failing icon is reported to errOut and the remaining icons are still
// generated, so that a single bad size or unwritable file does not block
// the rest.
func run(dir string, targets []icon.Target, out, errOut io.Writer) int {
	failed := 0
	for _, t := range targets {
		name := filepath.Join(dir, t.Name)
		if err := icon.WriteFile(name, t.Size); err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", name, err)
			failed++
			continue
		}
		fmt.Fprintln(out, "Created "+name)
	}
	return failed
}

// parseTargets converts the -sizes flag value into a target list.
// An empty value selects the default 16/48/128 set.
func parseTargets(sizes string) ([]icon.Target, error) {
	if sizes == "" {
		return icon.DefaultSet, nil
	}

	var targets []icon.Target
	for _, field := range strings.Split(sizes, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid size %q", field)
		}
		targets = append(targets, icon.Target{
			Size: n,
			Name: fmt.Sprintf("icon%d.png", n),
		})
	}
	return targets, nil
}
