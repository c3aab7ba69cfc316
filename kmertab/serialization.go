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

package kmertab

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/dbgasm/kmerval"
)

// Magic is an 8-byte dbgasm file tag in the style of unikmer's
// serialization.go. Write does not emit it and Read does not expect it.
var Magic = [8]byte{'.', 'd', 'b', 'g', 'a', 's', 'm', '1'}

var be = binary.LittleEndian

// ErrInvalidFormat reports a malformed graph file; Read does not return it.
var ErrInvalidFormat = errors.New("kmertab: invalid binary format")

// kmerByteLen returns ceil(2k/8) bytes, padded to 8, per §6.2.
func kmerByteLen(k int) int {
	raw := (2*k + 7) / 8
	return ((raw + 7) / 8) * 8
}

// KmerByteLen, PackKmerBits and UnpackKmerBits expose this package's
// fixed-width 2-bit k-mer codec to other binary formats that want the same
// on-disk k-mer representation §6.2 defines (taxindex's DBS/DBSS files, in
// particular), rather than each format inventing its own packing.
func KmerByteLen(k int) int { return kmerByteLen(k) }

// PackKmerBits writes km's 2k bits MSB-first into buf, which must be at
// least KmerByteLen(k) bytes and is zeroed by the caller beforehand.
func PackKmerBits(buf []byte, km kmerval.Kmer, k int) { packKmerBits(buf, km, k) }

// UnpackKmerBits is the inverse of PackKmerBits.
func UnpackKmerBits(buf []byte, k int) (kmerval.Kmer, error) { return unpackKmerBits(buf, k) }

// Write serializes one graph (§6.2): k_len, num_entries records of
// (canonical_kmer_bits padded to 8 bytes, counter), num_bins records, then
// is_stranded. Multiple graphs may be concatenated by calling Write
// repeatedly on the same io.Writer (min-K first), matching the documented
// file format.
func Write(w io.Writer, k int, t *Table) error {
	if err := binary.Write(w, be, int32(k)); err != nil {
		return errors.Wrap(err, "write k_len")
	}
	if err := binary.Write(w, be, uint64(len(t.Entries))); err != nil {
		return errors.Wrap(err, "write num_entries")
	}
	padded := kmerByteLen(k)
	buf := make([]byte, padded)
	for _, e := range t.Entries {
		for i := range buf {
			buf[i] = 0
		}
		packKmerBits(buf, e.Kmer, k)
		if _, err := w.Write(buf); err != nil {
			return errors.Wrap(err, "write kmer bits")
		}
		if err := binary.Write(w, be, e.Counter); err != nil {
			return errors.Wrap(err, "write counter")
		}
	}
	if err := binary.Write(w, be, int32(len(t.Bins))); err != nil {
		return errors.Wrap(err, "write num_bins")
	}
	for _, b := range t.Bins {
		if err := binary.Write(w, be, b.Count); err != nil {
			return errors.Wrap(err, "write bin count")
		}
		if err := binary.Write(w, be, uint64(b.Size)); err != nil {
			return errors.Wrap(err, "write bin size")
		}
	}
	var stranded uint8
	if t.Stranded {
		stranded = 1
	}
	if err := binary.Write(w, be, stranded); err != nil {
		return errors.Wrap(err, "write is_stranded")
	}
	return nil
}

// Read deserializes one graph written by Write, returning its k and table.
// On io.EOF before any byte is read it returns (0, nil, io.EOF) so callers
// concatenating multiple graphs can loop until exhausted.
func Read(r io.Reader) (int, *Table, error) {
	var k int32
	if err := binary.Read(r, be, &k); err != nil {
		return 0, nil, err // may legitimately be io.EOF
	}
	var numEntries uint64
	if err := binary.Read(r, be, &numEntries); err != nil {
		return 0, nil, errors.Wrap(err, "read num_entries")
	}
	padded := kmerByteLen(int(k))
	buf := make([]byte, padded)
	entries := make([]Entry, numEntries)
	for i := range entries {
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, nil, errors.Wrap(err, "read kmer bits")
		}
		km, err := unpackKmerBits(buf, int(k))
		if err != nil {
			return 0, nil, err
		}
		var counter uint64
		if err := binary.Read(r, be, &counter); err != nil {
			return 0, nil, errors.Wrap(err, "read counter")
		}
		entries[i] = Entry{Kmer: km, Counter: counter}
	}
	var numBins int32
	if err := binary.Read(r, be, &numBins); err != nil {
		return 0, nil, errors.Wrap(err, "read num_bins")
	}
	bins := make([]HistBin, numBins)
	for i := range bins {
		if err := binary.Read(r, be, &bins[i].Count); err != nil {
			return 0, nil, errors.Wrap(err, "read bin count")
		}
		var size uint64
		if err := binary.Read(r, be, &size); err != nil {
			return 0, nil, errors.Wrap(err, "read bin size")
		}
		bins[i].Size = int64(size)
	}
	var stranded uint8
	if err := binary.Read(r, be, &stranded); err != nil {
		return 0, nil, errors.Wrap(err, "read is_stranded")
	}
	return int(k), &Table{Entries: entries, Bins: bins, Stranded: stranded != 0}, nil
}

// packKmerBits writes km's 2k bits MSB-first into buf (which is >= padded
// length, zero-filled by the caller).
func packKmerBits(buf []byte, km kmerval.Kmer, k int) {
	bases := km.Bytes()
	var code byte
	bitpos := 0
	for _, b := range bases {
		switch b {
		case 'A':
			code = 0
		case 'C':
			code = 1
		case 'G':
			code = 2
		case 'T':
			code = 3
		}
		byteIdx := bitpos / 8
		off := uint(bitpos % 8)
		buf[byteIdx] |= code << (6 - off)
		bitpos += 2
	}
}

var bit2base = [4]byte{'A', 'C', 'G', 'T'}

func unpackKmerBits(buf []byte, k int) (kmerval.Kmer, error) {
	bases := make([]byte, k)
	bitpos := 0
	for i := 0; i < k; i++ {
		byteIdx := bitpos / 8
		off := uint(bitpos % 8)
		code := (buf[byteIdx] >> (6 - off)) & 3
		bases[i] = bit2base[code]
		bitpos += 2
	}
	return kmerval.FromString(bases)
}
