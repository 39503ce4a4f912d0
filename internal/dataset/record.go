package dataset

import (
	"encoding/binary"
	"math"
	"strings"
)

// Record is one row, positionally aligned with its dataset's schema.
type Record []Value

// BlankRecord returns a row of width blank cells, used as a group separator.
func BlankRecord(width int) Record {
	return make(Record, width)
}

// IsBlank reports whether every cell in the row is blank.
func (r Record) IsBlank() bool {
	for _, v := range r {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the row.
func (r Record) Clone() Record {
	return append(Record(nil), r...)
}

// Key encodes the cells at the given positions into a comparable string.
// Two rows produce the same key exactly when every selected cell is Equal,
// with blank matching blank.
func (r Record) Key(positions []int) string {
	var b strings.Builder
	var buf [binary.MaxVarintLen64]byte
	for _, p := range positions {
		v := r[p]
		b.WriteByte(byte(v.kind))
		switch v.kind {
		case KindString:
			n := binary.PutUvarint(buf[:], uint64(len(v.str)))
			b.Write(buf[:n])
			b.WriteString(v.str)
		case KindNumber:
			binary.BigEndian.PutUint64(buf[:8], math.Float64bits(v.num))
			b.Write(buf[:8])
		}
	}
	return b.String()
}
