package txn

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// DecodeError reports a structural problem found while decoding a
// transaction. Nothing is ever defaulted in its place.
type DecodeError struct {
	Type  TxType
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s transaction: field %s: %v", e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s transaction: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeSigned parses the output of Envelope.EncodeSigned. Legacy input is
// accepted both bare and behind a 0x00 type byte. A dynamic fee parity is
// expanded back to EIP-155 form using the decoded chain id.
func DecodeSigned(raw []byte) (*Envelope, Signature, error) {
	if len(raw) == 0 {
		return nil, Signature{}, &DecodeError{Err: ErrEmptyInput}
	}
	typ, body := LegacyTxType, raw
	if raw[0] < 0xc0 {
		typ, body = TxType(raw[0]), raw[1:]
	}
	switch typ {
	case LegacyTxType:
		return decodeLegacy(body)
	case AccessListTxType:
		return decodeAccessList(body)
	case DynamicFeeTxType:
		return decodeDynamicFee(body)
	}
	return nil, Signature{}, &DecodeError{Type: typ, Err: ErrUnknownTxType}
}

func decodeLegacy(body []byte) (*Envelope, Signature, error) {
	var (
		tx  = new(LegacyRequest)
		sig Signature
	)
	err := decodeFields(LegacyTxType, body, legacyBaseFields+3, func(r *fieldReader) {
		r.legacyBase(tx)
		r.signature(&sig)
	})
	if err != nil {
		return nil, Signature{}, err
	}
	return NewEnvelope(tx), sig, nil
}

func decodeAccessList(body []byte) (*Envelope, Signature, error) {
	var (
		tx  = new(AccessListRequest)
		sig Signature
	)
	err := decodeFields(AccessListTxType, body, accessListFields, func(r *fieldReader) {
		r.legacyBase(&tx.LegacyRequest)
		tx.AccessList = r.accessList("accessList")
		r.signature(&sig)
	})
	if err != nil {
		return nil, Signature{}, err
	}
	return NewEnvelope(tx), sig, nil
}

func decodeDynamicFee(body []byte) (*Envelope, Signature, error) {
	var (
		tx  = new(DynamicFeeRequest)
		sig Signature
	)
	err := decodeFields(DynamicFeeTxType, body, dynamicFeeFields+3, func(r *fieldReader) {
		tx.ChainID = r.uint64("chainId")
		tx.Nonce = r.optUint256("nonce")
		tx.MaxPriorityFeePerGas = r.optUint256("maxPriorityFeePerGas")
		tx.MaxFeePerGas = r.optUint256("maxFeePerGas")
		tx.Gas = r.optUint256("gas")
		tx.To = r.address("to")
		tx.Value = r.optUint256("value")
		tx.Data = r.bytes("data")
		tx.AccessList = r.accessList("accessList")
		r.signature(&sig)
	})
	if err != nil {
		return nil, Signature{}, err
	}
	if sig.V > 1 {
		return nil, Signature{}, &DecodeError{Type: DynamicFeeTxType, Field: "yParity", Err: ErrInvalidSignatureV}
	}
	base, err := eip155Base(tx.ChainID)
	if err != nil {
		return nil, Signature{}, &DecodeError{Type: DynamicFeeTxType, Field: "chainId", Err: err}
	}
	sig.V += base
	return NewEnvelope(tx), sig, nil
}

// decodeFields checks that body is exactly one list of want elements, then
// hands a reader positioned inside it to read.
func decodeFields(typ TxType, body []byte, want int, read func(*fieldReader)) error {
	content, rest, err := rlp.SplitList(body)
	if err != nil {
		return &DecodeError{Type: typ, Err: err}
	}
	if len(rest) > 0 {
		return &DecodeError{Type: typ, Err: fmt.Errorf("%d trailing bytes", len(rest))}
	}
	have, err := rlp.CountValues(content)
	if err != nil {
		return &DecodeError{Type: typ, Err: err}
	}
	if have != want {
		return &DecodeError{Type: typ, Err: fmt.Errorf("%w: have %d, want %d", ErrFieldCount, have, want)}
	}
	s := rlp.NewStream(bytes.NewReader(body), uint64(len(body)))
	if _, err := s.List(); err != nil {
		return &DecodeError{Type: typ, Err: err}
	}
	r := &fieldReader{s: s, typ: typ}
	read(r)
	if r.err != nil {
		return r.err
	}
	if err := s.ListEnd(); err != nil {
		return &DecodeError{Type: typ, Err: err}
	}
	return nil
}

// fieldReader reads list elements in order and keeps the first failure.
type fieldReader struct {
	s   *rlp.Stream
	typ TxType
	err error
}

func (r *fieldReader) fail(field string, err error) {
	if r.err == nil {
		r.err = &DecodeError{Type: r.typ, Field: field, Err: err}
	}
}

// optUint256 reads an integer; the empty string reads as absent.
func (r *fieldReader) optUint256(field string) *uint256.Int {
	if r.err != nil {
		return nil
	}
	b, err := r.s.Bytes()
	if err != nil {
		r.fail(field, err)
		return nil
	}
	switch {
	case len(b) == 0:
		return nil
	case len(b) > 32:
		r.fail(field, errors.New("integer larger than 256 bits"))
		return nil
	case b[0] == 0:
		r.fail(field, rlp.ErrCanonInt)
		return nil
	}
	return new(uint256.Int).SetBytes(b)
}

func (r *fieldReader) scalar(field string, dst *uint256.Int) {
	if r.err != nil {
		return
	}
	if err := r.s.ReadUint256(dst); err != nil {
		r.fail(field, err)
	}
}

func (r *fieldReader) uint64(field string) uint64 {
	if r.err != nil {
		return 0
	}
	x, err := r.s.Uint64()
	if err != nil {
		r.fail(field, err)
	}
	return x
}

func (r *fieldReader) address(field string) *NameOrAddress {
	b := r.bytes(field)
	switch {
	case r.err != nil || len(b) == 0:
		return nil
	case len(b) != common.AddressLength:
		r.fail(field, fmt.Errorf("address of %d bytes", len(b)))
		return nil
	}
	return Address(common.BytesToAddress(b))
}

// bytes reads a byte string; the empty string reads as absent.
func (r *fieldReader) bytes(field string) []byte {
	if r.err != nil {
		return nil
	}
	b, err := r.s.Bytes()
	if err != nil {
		r.fail(field, err)
		return nil
	}
	if len(b) == 0 {
		return nil
	}
	return b
}

func (r *fieldReader) accessList(field string) AccessList {
	if r.err != nil {
		return nil
	}
	var al AccessList
	if err := r.s.Decode(&al); err != nil {
		r.fail(field, err)
		return nil
	}
	return al
}

func (r *fieldReader) legacyBase(tx *LegacyRequest) {
	tx.Nonce = r.optUint256("nonce")
	tx.GasPrice = r.optUint256("gasPrice")
	tx.Gas = r.optUint256("gas")
	tx.To = r.address("to")
	tx.Value = r.optUint256("value")
	tx.Data = r.bytes("data")
}

func (r *fieldReader) signature(sig *Signature) {
	sig.V = r.uint64("v")
	r.scalar("r", &sig.R)
	r.scalar("s", &sig.S)
}
