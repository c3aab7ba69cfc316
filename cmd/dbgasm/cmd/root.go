// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cmd implements the dbgasm command-line surface of §6, built the
// way unikmer/cmd/root.go builds unikmer's: a Cobra root command with
// persistent --cores/--verbose flags and one subcommand per operation.
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shenwei356/dbgasm/logx"
	"github.com/spf13/cobra"
)

// VERSION is the dbgasm release tag.
const VERSION = "0.1.0"

var RootCmd = &cobra.Command{
	Use:   "dbgasm",
	Short: "de Bruijn graph short-read assembler",
	Long: fmt.Sprintf(`dbgasm - de Bruijn graph short-read assembler

Assembles short reads into contigs by iteratively raising k, cleaning the
graph, connecting mate pairs through the graph, and extending/connecting
previously assembled contigs with longer k-mers.

Version: %s
`, VERSION),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logx.Init(verbose)
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()
	if defaultThreads > 2 {
		defaultThreads = 2
	}

	RootCmd.PersistentFlags().IntP("cores", "j", defaultThreads, "number of CPUs to use")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "print verbose information")
	RootCmd.PersistentFlags().StringP("infile-list", "i", "", "file of input files list (one file per line)")
}
