package contigs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shenwei356/dbgasm/dbgraph"
)

// WriteFasta writes contigs of length >= minLen as `>Contig_<n>_<avg>` FASTA
// records against the first (smallest-K) graph, per §6's contig FASTA
// contract. n is 1-based, in the order contigs are given.
func WriteFasta(w io.Writer, contigs []*Contig, firstGraph *dbgraph.Graph, minLen int) error {
	bw := bufio.NewWriter(w)
	n := 0
	for _, c := range contigs {
		if c.Len() < minLen {
			continue
		}
		n++
		avg := c.AverageAbundance(firstGraph)
		if _, err := fmt.Fprintf(bw, ">Contig_%d_%.1f\n%s\n", n, avg, string(c.Seq)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
