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

package cmd

import (
	"io"

	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

// histoCmd prints the abundance histogram of every graph concatenated in
// a §6.2 binary file, the dig-it-back-out counterpart to `assemble
// --dbg_out` / `count -o`, mirroring unikmer's `stats`/`info` subcommands
// that report on a previously written binary file rather than recomputing.
var histoCmd = &cobra.Command{
	Use:   "histo",
	Short: "print the abundance histogram of a k-mer table file",
	Long: `print the abundance histogram of a k-mer table file

Reads every graph concatenated in a §6.2 binary file (as written by
'count -o' or 'assemble --dbg_out') and prints its (count, num_kmers)
histogram as a plain table.
`,
	Run: func(cmd *cobra.Command, args []string) {
		files := getFileListFromArgsAndFile(cmd, args, "infile-list")
		checkFiles(files...)

		for _, file := range files {
			infh, err := xopen.Ropen(file)
			checkError(err)

			n := 0
			for {
				k, t, err := kmertab.Read(infh)
				if err == io.EOF {
					break
				}
				checkError(err)
				n++
				cmd.Printf("# file: %s, graph: %d, k: %d, kmers: %d\n", file, n, k, len(t.Entries))
				cmd.OutOrStdout().Write(renderHistogram(t.Bins))
			}
			infh.Close()
		}
	},
}

func init() {
	RootCmd.AddCommand(histoCmd)
}
