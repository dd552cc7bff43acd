// Copyright 2024 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command microcreator expands a kernel description into micro-benchmarks.
//
// Usage:
//
//	microcreator generate -i kernel.yaml -o out --max 100
//	microcreator passes
package main

import (
	"fmt"
	"os"

	"github.com/cloudwego/microcreator"
	"github.com/cloudwego/microcreator/debug"
	"github.com/cloudwego/microcreator/internal/loader"
	"github.com/cloudwego/microcreator/internal/logs"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "microcreator",
		Short:         "Generate micro-benchmarks from a kernel description",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(generateCmd(), passesCmd())
	return root
}

func generateCmd() *cobra.Command {
	var (
		input   string
		output  string
		limit   int
		verbose int
		check   bool
		dump    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Expand a description and write one source file per benchmark",
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, d, err := loader.LoadFile(input)
			if err != nil {
				return err
			}

			/* command line settings win */
			if output != "" {
				d.OutputDir = output
			}
			if dump {
				fmt.Fprintln(cmd.ErrOrStderr(), debug.Dump(k))
			}

			/* options */
			var options []microcreator.Option
			if cmd.Flags().Changed("check") {
				options = append(options, microcreator.WithCheck(check))
			}
			if cmd.Flags().Changed("max") {
				d.MaxBenchmarks = 0
				options = append(options, microcreator.WithMaxBenchmarks(limit))
			}
			if cmd.Flags().Changed("verbose") {
				d.Verbose = 0
				options = append(options, microcreator.WithVerbose(verbose), microcreator.WithLogger(logs.New(cmd.ErrOrStderr(), verbose)))
			}

			/* run the pipeline */
			names, err := microcreator.WriteBenchmarks(k, d, options...)
			if err != nil {
				return err
			}

			/* report */
			st := debug.GetStats()
			fmt.Fprintf(cmd.OutOrStdout(), "%d benchmarks written to %s (%d candidates dropped)\n", len(names), d.OutputDir, st.Candidates.Dropped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "kernel description (YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory, overrides the description")
	cmd.Flags().IntVar(&limit, "max", 0, "maximum number of outstanding candidates, 0 for unlimited")
	cmd.Flags().IntVarP(&verbose, "verbose", "v", 1, "verbosity: 0 errors, 1 warnings, 2 progress, 3 trace")
	cmd.Flags().BoolVar(&check, "check", false, "skip benchmarks the assembler cannot encode")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the loaded kernel to stderr")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func passesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "Print the pass pipeline in order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for i, name := range microcreator.Passes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, name)
			}
		},
	}
}
