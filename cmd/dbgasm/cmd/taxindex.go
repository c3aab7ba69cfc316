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
	"path/filepath"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/dbgasm/kmerval"
	"github.com/shenwei356/dbgasm/logx"
	"github.com/shenwei356/dbgasm/taxindex"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

// taxindexCmd builds the DBS/DBSS tax-index collaborator files of §6 from a
// set of reference FASTA files, one per genome/reference name. This wraps
// around the core (spec.md §1 lists it as an external collaborator
// specified only by interface) rather than reusing the assembler's read
// ingestion: a taxonomy index is built from whole reference genomes, not
// sequencing reads, so it canonicalizes k-mers directly instead of routing
// through reads.Store/kmercount.
var taxindexCmd = &cobra.Command{
	Use:   "taxindex",
	Short: "build a DBS/DBSS tax-index file from reference FASTA genomes",
	Long: `build a DBS/DBSS tax-index file from reference FASTA genomes

Each --fasta file contributes one named reference; its canonical k-mers are
collected into a sorted DBS file (--out). With --taxdump and --taxid-list,
a DBSS file is written instead, annotating every k-mer with the lowest
common ancestor tax id (via taxindex.Taxonomy.LCAOf) of every reference
that carries it.
`,
	Run: func(cmd *cobra.Command, args []string) {
		fastaFiles, _ := cmd.Flags().GetStringArray("fasta")
		if len(fastaFiles) == 0 {
			checkError(fmt.Errorf("at least one --fasta is required"))
		}
		k := getFlagPositiveInt(cmd, "kmer")
		if k%2 == 0 {
			checkError(fmt.Errorf("--kmer must be odd"))
		}
		taxdump := getFlagString(cmd, "taxdump")
		taxidList := getFlagString(cmd, "taxid-list")

		names := make([]string, len(fastaFiles))
		perFile := make([][]kmerval.Kmer, len(fastaFiles))
		for i, file := range fastaFiles {
			checkFiles(file)
			names[i] = filepath.Base(file)
			perFile[i] = collectCanonicalKmers(file, k)
			logx.Infof("taxindex: %s -> %d distinct %d-mers", names[i], len(perFile[i]), k)
		}

		outFile := getFlagString(cmd, "out-file")
		if outFile == "" {
			outFile = "-"
		}
		outfh, err := xopen.WopenGzip(outFile)
		checkError(err)
		defer outfh.Close()

		if taxdump == "" {
			var all []kmerval.Kmer
			for _, ks := range perFile {
				all = append(all, ks...)
			}
			checkError(taxindex.WriteDBS(outfh, k, names, all))
			logx.Infof("taxindex: wrote DBS with %d references", len(names))
			return
		}

		if taxidList == "" {
			checkError(fmt.Errorf("--taxid-list is required with --taxdump"))
		}
		taxids := readTaxidList(taxidList, len(fastaFiles))
		tax, err := taxindex.NewTaxonomyFromNCBI(taxdump)
		checkError(err)
		tax.CacheLCA()

		merged := map[string]*taxindex.DBSSEntry{}
		for i, ks := range perFile {
			for _, km := range ks {
				key := km.String()
				e, ok := merged[key]
				if !ok {
					e = &taxindex.DBSSEntry{Kmer: km}
					merged[key] = e
				}
				e.Taxids = append(e.Taxids, taxids[i])
			}
		}
		entries := make([]taxindex.DBSSEntry, 0, len(merged))
		for _, e := range merged {
			e.Taxids = []uint32{tax.LCAOf(e.Taxids)}
			entries = append(entries, *e)
		}
		checkError(taxindex.WriteDBSS(outfh, k, names, entries))
		logx.Infof("taxindex: wrote DBSS with %d references, %d distinct k-mers", len(names), len(entries))
	},
}

func init() {
	RootCmd.AddCommand(taxindexCmd)

	taxindexCmd.Flags().StringArray("fasta", nil, "reference FASTA file (repeatable, one per genome)")
	taxindexCmd.Flags().IntP("kmer", "k", 21, "k-mer length, odd")
	taxindexCmd.Flags().StringP("out-file", "o", "-", "output DBS/DBSS file")
	taxindexCmd.Flags().String("taxdump", "", "NCBI nodes.dmp, enables DBSS output annotated with LCA tax ids")
	taxindexCmd.Flags().String("taxid-list", "", "file of one tax id per line, aligned with --fasta order")
}

// collectCanonicalKmers reads every sequence in file and returns the set of
// distinct canonical k-mers it contains, the direct analogue of
// kmerval.Kmer.Canonical applied record-by-record instead of through
// reads.Store's sliding-window iterator (a whole reference genome, unlike
// a read, is read once and never re-windowed at multiple k).
func collectCanonicalKmers(file string, k int) []kmerval.Kmer {
	r, err := fastx.NewDefaultReader(file)
	checkError(err)
	seen := map[string]kmerval.Kmer{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		checkError(err)
		seq := rec.Seq.Seq
		if len(seq) < k {
			continue
		}
		for i := 0; i+k <= len(seq); i++ {
			km, err := kmerval.FromString(seq[i : i+k])
			if err != nil {
				continue
			}
			can := km.Canonical()
			seen[can.String()] = can
		}
	}
	out := make([]kmerval.Kmer, 0, len(seen))
	for _, km := range seen {
		out = append(out, km)
	}
	return out
}

func readTaxidList(file string, want int) []uint32 {
	lines, err := getListFromFile(file)
	checkError(err)
	if len(lines) != want {
		checkError(fmt.Errorf("--taxid-list has %d lines, expected %d (one per --fasta)", len(lines), want))
	}
	out := make([]uint32, len(lines))
	for i, line := range lines {
		var v uint32
		if _, err := fmt.Sscanf(line, "%d", &v); err != nil {
			checkError(fmt.Errorf("parse taxid on line %d: %s", i+1, err))
		}
		out[i] = v
	}
	return out
}
