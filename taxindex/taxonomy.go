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

package taxindex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
)

// ErrIllegalColumnIndex means a column index is 0 or negative.
var ErrIllegalColumnIndex = errors.New("taxindex: illegal column index, positive integer needed")

// Taxonomy holds a parent-of relation over tax ids, letting DBSS annotate a
// k-mer's tax ids with their lowest common ancestor instead of the raw set.
type Taxonomy struct {
	rootNode uint32

	Nodes map[uint32]uint32 // child -> parent

	cacheLCA bool
	lcaCache map[uint64]uint32

	maxTaxid uint32
}

// NewTaxonomyFromNCBI parses a Taxonomy from an NCBI-style nodes.dmp
// (ftp://ftp.ncbi.nih.gov/pub/taxonomy/taxdump.tar.gz), tab-delimited with
// tax id in column 1 and parent tax id in column 3.
func NewTaxonomyFromNCBI(file string) (*Taxonomy, error) {
	return NewTaxonomy(file, 1, 3)
}

// NewTaxonomy loads a parent-of relation from a tab-delimited file, taking
// the child tax id from childColumn and the parent tax id from
// parentColumn (1-indexed).
func NewTaxonomy(file string, childColumn, parentColumn int) (*Taxonomy, error) {
	if childColumn < 1 || parentColumn < 1 {
		return nil, ErrIllegalColumnIndex
	}
	minColumns := childColumn
	if parentColumn > minColumns {
		minColumns = parentColumn
	}

	type taxon struct {
		Taxid  uint32
		Parent uint32
	}

	parseFunc := func(line string) (interface{}, bool, error) {
		items := strings.Split(line, "\t")
		if len(items) < minColumns {
			return nil, false, nil
		}
		child, e := strconv.Atoi(items[childColumn-1])
		if e != nil {
			return nil, false, e
		}
		parent, e := strconv.Atoi(items[parentColumn-1])
		if e != nil {
			return nil, false, e
		}
		return taxon{Taxid: uint32(child), Parent: uint32(parent)}, true, nil
	}

	reader, err := breader.NewBufferedReader(file, 8, 100, parseFunc)
	if err != nil {
		return nil, fmt.Errorf("taxindex: %w", err)
	}

	nodes := make(map[uint32]uint32, 1024)
	var root uint32
	var maxTaxid uint32

	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, fmt.Errorf("taxindex: %w", chunk.Err)
		}
		for _, data := range chunk.Data {
			tax := data.(taxon)
			nodes[tax.Taxid] = tax.Parent
			if tax.Taxid == tax.Parent {
				root = tax.Taxid
			}
			if tax.Taxid > maxTaxid {
				maxTaxid = tax.Taxid
			}
		}
	}

	return &Taxonomy{Nodes: nodes, rootNode: root, maxTaxid: maxTaxid}, nil
}

// MaxTaxid returns the largest tax id seen while loading.
func (t *Taxonomy) MaxTaxid() uint32 { return t.maxTaxid }

// CacheLCA enables memoizing every LCA query result.
func (t *Taxonomy) CacheLCA() {
	t.cacheLCA = true
	if t.lcaCache == nil {
		t.lcaCache = make(map[uint64]uint32, 1024)
	}
}

// LCA returns the lowest common ancestor of a and b, or 0 if neither shares
// an ancestor within the loaded relation. a or b of 0 ("no tax id") returns
// the other unchanged, matching the common multi-way LCA fold idiom used by
// LCAOf below.
func (t *Taxonomy) LCA(a, b uint32) uint32 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if a == b {
		return a
	}

	var query uint64
	if t.cacheLCA {
		query = pack2uint32(a, b)
		if c, ok := t.lcaCache[query]; ok {
			return c
		}
	}

	lineA := make(map[uint32]struct{}, 16)

	child := a
	for {
		parent, ok := t.Nodes[child]
		if !ok {
			return t.memoizeLCA(query, 0)
		}
		if parent == child { // root
			lineA[parent] = struct{}{}
			break
		}
		if parent == b {
			return t.memoizeLCA(query, b)
		}
		lineA[parent] = struct{}{}
		child = parent
	}

	child = b
	for {
		parent, ok := t.Nodes[child]
		if !ok {
			return t.memoizeLCA(query, 0)
		}
		if parent == child { // root
			break
		}
		if parent == a {
			return t.memoizeLCA(query, a)
		}
		if _, ok := lineA[parent]; ok {
			return t.memoizeLCA(query, parent)
		}
		child = parent
	}
	return t.memoizeLCA(query, t.rootNode)
}

func (t *Taxonomy) memoizeLCA(query uint64, result uint32) uint32 {
	if t.cacheLCA {
		t.lcaCache[query] = result
	}
	return result
}

// LCAOf folds LCA across a slice of tax ids, the way a DBSS builder
// collapses the tax ids sharing one k-mer down to their single ancestor
// annotation.
func (t *Taxonomy) LCAOf(taxids []uint32) uint32 {
	var acc uint32
	for _, id := range taxids {
		acc = t.LCA(acc, id)
	}
	return acc
}

func pack2uint32(a, b uint32) uint64 {
	if a < b {
		return (uint64(a) << 32) | uint64(b)
	}
	return (uint64(b) << 32) | uint64(a)
}
