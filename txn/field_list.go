package txn

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// FieldList is an open RLP list with an arity fixed when it was opened.
// Absent optional values still take their slot as an empty string, so the
// number of elements of a given encoding never changes. The zero value is
// not open; use OpenFieldList.
type FieldList struct {
	w     rlp.EncoderBuffer
	open  bool
	index int
	arity int
	count int
	err   error
}

// OpenFieldList starts a list of arity elements on w. The caller must Close
// it and then flush w.
func OpenFieldList(w rlp.EncoderBuffer, arity int) *FieldList {
	return &FieldList{w: w, open: true, index: w.List(), arity: arity}
}

// Arity is the declared number of elements.
func (l *FieldList) Arity() int { return l.arity }

// Len is the number of elements appended so far.
func (l *FieldList) Len() int { return l.count }

func (l *FieldList) next() bool {
	if l.err != nil {
		return false
	}
	if !l.open {
		l.err = ErrListNotOpen
		return false
	}
	if l.count == l.arity {
		l.err = fmt.Errorf("%w: more than %d elements", ErrListArity, l.arity)
		return false
	}
	l.count++
	return true
}

// AppendEmpty appends the empty string placeholder.
func (l *FieldList) AppendEmpty() {
	if l.next() {
		l.w.WriteBytes(nil)
	}
}

// AppendUint64 appends x in minimal big endian form; zero is the empty string.
func (l *FieldList) AppendUint64(x uint64) {
	if l.next() {
		l.w.WriteUint64(x)
	}
}

// AppendUint256 appends x in minimal big endian form, or the empty string if
// x is nil.
func (l *FieldList) AppendUint256(x *uint256.Int) {
	if !l.next() {
		return
	}
	if x == nil {
		l.w.WriteBytes(nil)
		return
	}
	l.w.WriteUint256(x)
}

// AppendAddress appends the 20 address bytes, or the empty string if a is nil.
func (l *FieldList) AppendAddress(a *common.Address) {
	if !l.next() {
		return
	}
	if a == nil {
		l.w.WriteBytes(nil)
		return
	}
	l.w.WriteBytes(a[:])
}

// AppendBytes appends b unmodified. Nil and empty both encode as the empty string.
func (l *FieldList) AppendBytes(b []byte) {
	if l.next() {
		l.w.WriteBytes(b)
	}
}

// AppendAccessList appends al as a nested list.
func (l *FieldList) AppendAccessList(al AccessList) {
	if l.next() {
		al.encode(l.w)
	}
}

// Close ends the list. It fails if the appended element count differs from
// the declared arity.
func (l *FieldList) Close() error {
	if !l.open {
		return ErrListNotOpen
	}
	l.open = false
	l.w.ListEnd(l.index)
	if l.err != nil {
		return l.err
	}
	if l.count != l.arity {
		return fmt.Errorf("%w: declared %d, appended %d", ErrListArity, l.arity, l.count)
	}
	return nil
}

// encodeList encodes a single list of the given arity. No bytes are returned
// when fill or the arity check fails.
func encodeList(arity int, fill func(*FieldList) error) ([]byte, error) {
	var buf bytes.Buffer
	w := rlp.NewEncoderBuffer(&buf)
	l := OpenFieldList(w, arity)
	err := fill(l)
	if cerr := l.Close(); err == nil {
		err = cerr
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
