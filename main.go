// Copyright 2025 cogc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var command = &cobra.Command{
	Use:   "cogc [-i input] [-o output]",
	Short: "cogc compiles Cog source to AArch64 assembly",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		inputPath, _ := cmd.PersistentFlags().GetString("input")
		outputPath, _ := cmd.PersistentFlags().GetString("output")

		in := os.Stdin
		if inputPath != "" {
			f, err := os.Open(inputPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer f.Close()
			in = f
		}

		out := os.Stdout
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "cogc: compiling %s -> %s\n", displayName(inputPath), displayName(outputPath))
		}

		if err := Compile(in, out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func displayName(path string) string {
	if path == "" {
		return "<stdio>"
	}
	return path
}

func init() {
	command.PersistentFlags().StringP("input", "i", "", "input source file (default stdin)")
	command.PersistentFlags().StringP("output", "o", "", "output assembly file (default stdout)")
	command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "if set, report the input/output files to stderr")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
