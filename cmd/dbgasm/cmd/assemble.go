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
	"io"

	humanize "github.com/dustin/go-humanize"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/dbgasm/assembler"
	"github.com/shenwei356/dbgasm/contigs"
	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/dbgasm/logx"
	"github.com/shenwei356/dbgasm/reads"
	"github.com/shenwei356/stable"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "assemble short reads into contigs via an iterative de Bruijn graph",
	Long: `assemble short reads into contigs via an iterative de Bruijn graph

Ingests unpaired FASTA/FASTQ with --fasta/--fastq and paired reads with
--fasta_pe/--fastq_pe (two interleaved file lists, mate i of list A with
mate i of list B), builds the graph at --kmer, and iteratively raises k
--steps times while cleaning, extending and connecting contigs.
`,
	Run: func(cmd *cobra.Command, args []string) {
		seq.ValidateSeq = false

		fastaFiles, _ := cmd.Flags().GetStringArray("fasta")
		fastqFiles, _ := cmd.Flags().GetStringArray("fastq")
		fastaPE, _ := cmd.Flags().GetStringArray("fasta_pe")
		fastqPE, _ := cmd.Flags().GetStringArray("fastq_pe")
		sraRuns, _ := cmd.Flags().GetStringArray("sra_run")

		if len(sraRuns) > 0 {
			checkError(fmt.Errorf("--sra_run is not supported in this build; download and pass --fastq instead"))
		}
		if len(fastaFiles) == 0 && len(fastqFiles) == 0 && len(fastaPE) == 0 && len(fastqPE) == 0 {
			checkError(fmt.Errorf("at least one of --fasta, --fastq, --fasta_pe, --fastq_pe is required"))
		}
		if len(fastaPE)%2 != 0 || len(fastqPE)%2 != 0 {
			checkError(fmt.Errorf("--fasta_pe/--fastq_pe take an even number of files, two per pair of mate lists"))
		}

		k := getFlagPositiveInt(cmd, "kmer")
		if k%2 == 0 {
			checkError(fmt.Errorf("--kmer must be odd"))
		}
		minCount := uint32(getFlagPositiveInt(cmd, "min_count"))
		steps := getFlagPositiveInt(cmd, "steps")
		maxKmerCount := uint32(getFlagPositiveInt(cmd, "max_kmer_count"))
		fraction := getFlagFloat64(cmd, "fraction")
		jump := getFlagPositiveInt(cmd, "min_dead_end")
		lowCount := uint32(getFlagNonNegativeInt(cmd, "low_count"))
		if lowCount < minCount {
			lowCount = minCount
		}
		minContig := getFlagNonNegativeInt(cmd, "min_contig")
		memory := parseMemory(getFlagString(cmd, "memory"))
		cores := getFlagPositiveInt(cmd, "cores")
		usePaired := getFlagBool(cmd, "use_paired_ends") || len(fastaPE) > 0 || len(fastqPE) > 0
		insertSize := getFlagNonNegativeInt(cmd, "insert_size")

		store := reads.NewStore()
		loadUnpaired(store, fastaFiles)
		loadUnpaired(store, fastqFiles)
		for i := 0; i+1 < len(fastaPE); i += 2 {
			loadPaired(store, fastaPE[i], fastaPE[i+1])
		}
		for i := 0; i+1 < len(fastqPE); i += 2 {
			loadPaired(store, fastqPE[i], fastqPE[i+1])
		}
		logx.Infof("assemble: loaded %d reads, %s bases", store.ReadNum(), humanize.Comma(store.TotalSeq()))

		if getFlagString(cmd, "connected_reads") != "" {
			logx.Warnf("assemble: --connected_reads is accepted but synthetic connected-read extraction is not implemented in this build")
		}

		res, err := assembler.Run(store, assembler.Options{
			MinKmer:       k,
			Steps:         steps,
			MinCount:      minCount,
			LowCount:      lowCount,
			Fraction:      fraction,
			Jump:          jump,
			UsePairedEnds: usePaired,
			InsertSize:    insertSize,
			MaxKmerCount:  maxKmerCount,
			MemoryLimit:   memory,
			Threads:       cores,
			MinContig:     minContig,
		})
		checkError(err)

		contigsOut := getFlagString(cmd, "contigs_out")
		if contigsOut == "" {
			contigsOut = "-"
		}
		outfh, err := xopen.WopenGzip(contigsOut)
		checkError(err)
		checkError(contigs.WriteFasta(outfh, res.Contigs, res.Graphs[0], minContig))
		outfh.Close()

		if allFile := getFlagString(cmd, "all"); allFile != "" {
			afh, err := xopen.WopenGzip(allFile)
			checkError(err)
			checkError(contigs.WriteFasta(afh, res.Contigs, res.Graphs[0], 0))
			afh.Close()
		}

		if histFile := getFlagString(cmd, "hist"); histFile != "" {
			writeHistogram(histFile, res.Graphs[len(res.Graphs)-1].Table.Bins)
		}

		if dbgFile := getFlagString(cmd, "dbg_out"); dbgFile != "" {
			dfh, err := xopen.WopenGzip(dbgFile)
			checkError(err)
			for _, g := range res.Graphs {
				checkError(kmertab.Write(dfh, g.K, g.Table))
			}
			dfh.Close()
		}

		logx.Infof("assemble: wrote %d contigs (insert size estimate: %d)", len(res.Contigs), res.InsertSize)
	},
}

func loadUnpaired(store *reads.Store, files []string) {
	for _, file := range files {
		checkFiles(file)
		r, err := fastx.NewDefaultReader(file)
		checkError(err)
		for {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			checkError(err)
			if _, err := store.Push(rec.Seq.Seq); err != nil {
				logx.Warnf("assemble: skipping read in %s: %s", file, err)
			}
		}
	}
}

func loadPaired(store *reads.Store, fileA, fileB string) {
	checkFiles(fileA, fileB)
	ra, err := fastx.NewDefaultReader(fileA)
	checkError(err)
	rb, err := fastx.NewDefaultReader(fileB)
	checkError(err)
	for {
		recA, errA := ra.Read()
		recB, errB := rb.Read()
		if errA == io.EOF || errB == io.EOF {
			break
		}
		checkError(errA)
		checkError(errB)
		if _, _, err := store.PushPaired(recA.Seq.Seq, recB.Seq.Seq); err != nil {
			logx.Warnf("assemble: skipping pair %s/%s: %s", fileA, fileB, err)
		}
	}
}

func writeHistogram(file string, bins []kmertab.HistBin) {
	fh, err := xopen.WopenGzip(file)
	checkError(err)
	defer fh.Close()
	fh.Write(renderHistogram(bins))
}

// renderHistogram formats a (count, num_kmers) table the way
// unikmer/cmd/info.go renders its own plain-style stable.Table.
func renderHistogram(bins []kmertab.HistBin) []byte {
	style := &stable.TableStyle{
		Name:      "plain",
		HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
		DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
		Padding:   "",
	}
	columns := []stable.Column{
		{Header: "count", Align: stable.AlignRight},
		{Header: "num_kmers", Align: stable.AlignRight},
	}
	tbl := stable.New()
	tbl.HeaderWithFormat(columns)
	for _, b := range bins {
		tbl.AddRow([]interface{}{b.Count, b.Size})
	}
	return tbl.Render(style)
}

func init() {
	RootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().StringArray("fasta", nil, "unpaired FASTA read file (repeatable)")
	assembleCmd.Flags().StringArray("fastq", nil, "unpaired FASTQ read file (repeatable)")
	assembleCmd.Flags().StringArray("fasta_pe", nil, "paired FASTA read files, two per pair (repeatable)")
	assembleCmd.Flags().StringArray("fastq_pe", nil, "paired FASTQ read files, two per pair (repeatable)")
	assembleCmd.Flags().StringArray("sra_run", nil, "SRA run accession (not supported in this build)")
	assembleCmd.Flags().Bool("use_paired_ends", false, "enable paired-read connection")
	assembleCmd.Flags().Int("insert_size", 0, "known insert size (0: estimate)")
	assembleCmd.Flags().IntP("kmer", "k", 21, "initial (smallest) k, odd, >= 21")
	assembleCmd.Flags().Int("min_count", 2, "minimum k-mer count kept in the graph")
	assembleCmd.Flags().Int("steps", 11, "number of k-increase steps")
	assembleCmd.Flags().Int("max_kmer_count", 10, "target average count when picking the max k")
	assembleCmd.Flags().Float64("fraction", 0.1, "minor-branch abundance fraction filtered out")
	assembleCmd.Flags().Int("min_dead_end", 50, "jump-over distance for dead ends")
	assembleCmd.Flags().Int("low_count", 6, "low-count floor, auto-raised to min_count")
	assembleCmd.Flags().Int("min_contig", 200, "minimum contig length kept in output")
	assembleCmd.Flags().String("memory", "", "memory ceiling, e.g. 4G (0: unlimited)")
	assembleCmd.Flags().String("contigs_out", "-", "output contigs FASTA (default: stdout)")
	assembleCmd.Flags().String("all", "", "write every final contig, ignoring --min_contig's length filter")
	assembleCmd.Flags().String("hist", "", "write the final graph's abundance histogram")
	assembleCmd.Flags().String("connected_reads", "", "accepted but ignored: synthetic connected-read output is not implemented")
	assembleCmd.Flags().String("dbg_out", "", "write every built graph in the §6.2 binary format")
}
