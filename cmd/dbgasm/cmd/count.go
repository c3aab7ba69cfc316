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
	"fmt"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/dbgasm/kmercount"
	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/dbgasm/logx"
	"github.com/shenwei356/dbgasm/reads"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

// countCmd exposes C3 (the bucketed k-mer counter) standalone, the way
// unikmer's `count` subcommand exposes its own k-mer counter independent
// of the rest of the toolkit.
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "count k-mers from FASTA/FASTQ files and write a graph table",
	Long: `count k-mers from FASTA/FASTQ files and write a graph table

Runs only the counting stage (C3 by default, or C4 with --concurrent-hash)
and writes its table in the §6.2 binary format to --out-file, without
building a graph or digging it.
`,
	Run: func(cmd *cobra.Command, args []string) {
		seq.ValidateSeq = false

		fastaFiles, _ := cmd.Flags().GetStringArray("fasta")
		fastqFiles, _ := cmd.Flags().GetStringArray("fastq")
		if len(fastaFiles) == 0 && len(fastqFiles) == 0 {
			checkError(fmt.Errorf("at least one of --fasta, --fastq is required"))
		}

		k := getFlagPositiveInt(cmd, "kmer")
		if k%2 == 0 {
			checkError(fmt.Errorf("--kmer must be odd"))
		}
		minCount := uint32(getFlagPositiveInt(cmd, "min_count"))
		stranded := getFlagBool(cmd, "stranded")
		memory := parseMemory(getFlagString(cmd, "memory"))
		cores := getFlagPositiveInt(cmd, "cores")
		concurrentHash := getFlagBool(cmd, "concurrent-hash")

		store := reads.NewStore()
		loadUnpaired(store, fastaFiles)
		loadUnpaired(store, fastqFiles)
		logx.Infof("count: loaded %d reads", store.ReadNum())

		opt := kmercount.Options{
			K:           k,
			MinCount:    minCount,
			Stranded:    stranded,
			MemoryLimit: memory,
			Threads:     cores,
		}
		var table *kmertab.Table
		var err error
		if concurrentHash {
			table, err = kmercount.CountConcurrent(store, opt)
		} else {
			table, err = kmercount.Count(store, opt)
		}
		checkError(err)

		outFile := getFlagString(cmd, "out-file")
		if outFile == "" {
			outFile = "-"
		}
		outfh, err := xopen.WopenGzip(outFile)
		checkError(err)
		defer outfh.Close()

		checkError(kmertab.Write(outfh, k, table))
		logx.Infof("count: wrote %d distinct k-mers", len(table.Entries))
	},
}

func init() {
	RootCmd.AddCommand(countCmd)

	countCmd.Flags().StringArray("fasta", nil, "FASTA read file (repeatable)")
	countCmd.Flags().StringArray("fastq", nil, "FASTQ read file (repeatable)")
	countCmd.Flags().IntP("kmer", "k", 21, "k-mer length, odd")
	countCmd.Flags().Int("min_count", 1, "minimum count kept in the table")
	countCmd.Flags().Bool("stranded", false, "keep plus/minus strand counts separate")
	countCmd.Flags().String("memory", "", "memory ceiling, e.g. 4G (0: unlimited)")
	countCmd.Flags().StringP("out-file", "o", "-", "output table (§6.2 binary format)")
	countCmd.Flags().Bool("concurrent-hash", false, "use the one-pass concurrent-hash counter (C4) instead of the bucketed counter (C3)")
}
