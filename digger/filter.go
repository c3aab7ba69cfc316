package digger

import (
	"sort"

	"github.com/shenwei356/dbgasm/dbgraph"
)

// filterSuccessors implements §4.6.1's three-stage neighbor filtering over
// a raw successor list.
func (d *Digger) filterSuccessors(succ []dbgraph.Successor) []dbgraph.Successor {
	if len(succ) == 0 {
		return succ
	}
	out := make([]dbgraph.Successor, len(succ))
	copy(out, succ)

	// Stage 1: drop successors below fraction*total, keep descending by
	// abundance.
	var total uint64
	for _, s := range out {
		total += uint64(d.G.Abundance(s.Node))
	}
	if total > 0 {
		thresh := d.Opt.Fraction * float64(total)
		filtered := out[:0]
		for _, s := range out {
			if float64(d.G.Abundance(s.Node)) >= thresh {
				filtered = append(filtered, s)
			}
		}
		out = filtered
		sort.Slice(out, func(i, j int) bool {
			return d.G.Abundance(out[i].Node) > d.G.Abundance(out[j].Node)
		})
	}

	// Stage 2: strand-aware noise reduction for the GGT/ACC motif pair.
	if d.G.Stranded {
		out = d.strandFilter(out)
	}

	// Stage 3: drop successors whose strand-specific minor fraction is
	// far below the dominant one, when at least one successor shows real
	// strand balance (min(plus,minus) > 0.25).
	hasBalanced := false
	for _, s := range out {
		if d.G.MinusFraction(s.Node) > 0.25 {
			hasBalanced = true
			break
		}
	}
	if hasBalanced {
		var maxMajor float64
		for _, s := range out {
			pf := d.G.PlusFraction(s.Node)
			major := pf
			if 1-pf > major {
				major = 1 - pf
			}
			if major > maxMajor {
				maxMajor = major
			}
		}
		thresh := strandBiasFactor * d.Opt.Fraction * maxMajor
		filtered := out[:0]
		for _, s := range out {
			if d.G.MinusFraction(s.Node) >= thresh {
				filtered = append(filtered, s)
			}
		}
		out = filtered
	}

	return out
}

// strandFilter applies the GGT/ACC-motif strand-noise reduction: if
// exactly one successor's k-mer ends in "GGT" or starts with "ACC", and its
// strand abundance (abundance times plus-strand fraction) is A, other
// successors whose strand abundance falls below 0.1*fraction*A are
// dropped. No low_count gate is applied, and the plus-strand fraction is
// used for every successor whichever motif matched.
func (d *Digger) strandFilter(succ []dbgraph.Successor) []dbgraph.Successor {
	matchIdx := -1
	matches := 0
	for i, s := range succ {
		km := d.G.Kmer(s.Node).String()
		if len(km) < 3 {
			continue
		}
		last3 := km[len(km)-3:]
		first3 := km[:3]
		if last3 == "GGT" || first3 == "ACC" {
			matches++
			matchIdx = i
		}
	}
	if matches != 1 {
		return succ
	}
	a := strandAbundance(d.G, succ[matchIdx].Node)
	if a == 0 {
		return succ
	}
	thresh := strandBiasFactor * d.Opt.Fraction * a
	out := succ[:0]
	for i, s := range succ {
		if i == matchIdx || strandAbundance(d.G, s.Node) >= thresh {
			out = append(out, s)
		}
	}
	return out
}

func strandAbundance(g *dbgraph.Graph, n dbgraph.Node) float64 {
	return float64(g.Abundance(n)) * g.PlusFraction(n)
}
