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

// Package taxindex implements the DBS/DBSS binary index files §6 describes
// for the MLST/taxonomy collaborator tools: DBS is a header plus a sorted
// array of canonical k-mers; DBSS is a DBS file with a per-tax-id
// offset/count annotation appended. Neither is part of the assembler's own
// pipeline (spec.md §1 lists them as an external collaborator, specified
// only by interface); this package exists so those tools have a concrete
// file format and a Go type to build/query it with.
package taxindex

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/dbgasm/kmerval"
)

// Version is the DBS/DBSS format version.
const Version uint8 = 1

// dbsMagic identifies a DBS file, grounded on index/serialization.go's own
// 8-byte magic-before-header convention.
var dbsMagic = [8]byte{'.', 'd', 'b', 's', 'i', 'd', 'x', '1'}

// dbssMagic identifies a DBSS file (DBS + per-tax-id annotation).
var dbssMagic = [8]byte{'.', 'd', 'b', 's', 's', 'i', 'd', 'x'}

var be = binary.BigEndian

// ErrInvalidFormat means the magic number did not match the expected one.
var ErrInvalidFormat = errors.New("taxindex: invalid DBS/DBSS format")

// Header carries the metadata every DBS/DBSS file opens with, the way
// index.Header does for unikmer's own index format.
type Header struct {
	Version   uint8
	K         int
	Canonical bool
	NumKmers  uint64
	Names     []string // reference/genome names this index was built from
}

func writeHeader(w io.Writer, magic [8]byte, h Header) error {
	if _, err := w.Write(magic[:]); err != nil {
		return errors.Wrap(err, "write magic")
	}
	var canonical uint8
	if h.Canonical {
		canonical = 1
	}
	if err := binary.Write(w, be, [3]uint8{h.Version, uint8(h.K), canonical}); err != nil {
		return errors.Wrap(err, "write meta")
	}
	if err := binary.Write(w, be, h.NumKmers); err != nil {
		return errors.Wrap(err, "write num_kmers")
	}
	var n int
	for _, name := range h.Names {
		n += len(name) + 1
	}
	if err := binary.Write(w, be, uint32(n)); err != nil {
		return errors.Wrap(err, "write names length")
	}
	for _, name := range h.Names {
		if _, err := w.Write([]byte(name + "\n")); err != nil {
			return errors.Wrap(err, "write name")
		}
	}
	return nil
}

func readHeader(r io.Reader, wantMagic [8]byte) (Header, error) {
	var m [8]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return Header{}, errors.Wrap(err, "read magic")
	}
	if m != wantMagic {
		return Header{}, ErrInvalidFormat
	}
	var meta [3]uint8
	if err := binary.Read(r, be, &meta); err != nil {
		return Header{}, errors.Wrap(err, "read meta")
	}
	h := Header{Version: meta[0], K: int(meta[1]), Canonical: meta[2] > 0}
	if err := binary.Read(r, be, &h.NumKmers); err != nil {
		return Header{}, errors.Wrap(err, "read num_kmers")
	}
	var n uint32
	if err := binary.Read(r, be, &n); err != nil {
		return Header{}, errors.Wrap(err, "read names length")
	}
	if n > 0 {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Header{}, errors.Wrap(err, "read names")
		}
		names := splitLines(buf)
		h.Names = names
	}
	return h, nil
}

func splitLines(buf []byte) []string {
	var names []string
	start := 0
	for i, b := range buf {
		if b == '\n' {
			names = append(names, string(buf[start:i]))
			start = i + 1
		}
	}
	return names
}

// WriteDBS writes a DBS file: header followed by kmers sorted and
// deduplicated (written as given, not canonicalized), reusing kmertab's §6.2 2-bit packing so DBS
// and graph files share one on-disk k-mer representation.
func WriteDBS(w io.Writer, k int, names []string, kmers []kmerval.Kmer) error {
	sorted := sortedUnique(kmers)
	h := Header{Version: Version, K: k, Canonical: true, NumKmers: uint64(len(sorted)), Names: names}
	if err := writeHeader(w, dbsMagic, h); err != nil {
		return err
	}
	return writeKmerList(w, k, sorted)
}

func writeKmerList(w io.Writer, k int, sorted []kmerval.Kmer) error {
	buf := make([]byte, kmertab.KmerByteLen(k))
	for _, km := range sorted {
		for i := range buf {
			buf[i] = 0
		}
		kmertab.PackKmerBits(buf, km, k)
		if _, err := w.Write(buf); err != nil {
			return errors.Wrap(err, "write kmer bits")
		}
	}
	return nil
}

func sortedUnique(kmers []kmerval.Kmer) []kmerval.Kmer {
	out := make([]kmerval.Kmer, len(kmers))
	copy(out, kmers)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	if len(out) == 0 {
		return out
	}
	dedup := out[:1]
	for _, km := range out[1:] {
		if !km.Equal(dedup[len(dedup)-1]) {
			dedup = append(dedup, km)
		}
	}
	return dedup
}

// ReadDBS reads a DBS file back into its header and sorted k-mer list.
func ReadDBS(r io.Reader) (Header, []kmerval.Kmer, error) {
	h, err := readHeader(r, dbsMagic)
	if err != nil {
		return Header{}, nil, err
	}
	kmers, err := readKmerList(r, h.K, h.NumKmers)
	if err != nil {
		return Header{}, nil, err
	}
	return h, kmers, nil
}

func readKmerList(r io.Reader, k int, n uint64) ([]kmerval.Kmer, error) {
	buf := make([]byte, kmertab.KmerByteLen(k))
	kmers := make([]kmerval.Kmer, n)
	for i := range kmers {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "read kmer bits")
		}
		km, err := kmertab.UnpackKmerBits(buf, k)
		if err != nil {
			return nil, err
		}
		kmers[i] = km
	}
	return kmers, nil
}

// FromTable extracts the canonical k-mers of a kmertab.Table whose count
// meets minCount, the usual way a DBS index is seeded from a graph already
// built and counted by C3/C4.
func FromTable(t *kmertab.Table, minCount uint32) []kmerval.Kmer {
	out := make([]kmerval.Kmer, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.Count() >= minCount {
			out = append(out, e.Kmer)
		}
	}
	return out
}
