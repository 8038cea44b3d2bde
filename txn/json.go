package txn

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// hexU256 marshals a uint256 as a 0x-prefixed hex quantity.
type hexU256 uint256.Int

func toHexU256(x *uint256.Int) *hexU256 { return (*hexU256)(x) }

func (h *hexU256) int() *uint256.Int { return (*uint256.Int)(h) }

func (h *hexU256) MarshalText() ([]byte, error) {
	return []byte(h.int().Hex()), nil
}

func (h *hexU256) UnmarshalText(input []byte) error {
	x, err := uint256.FromHex(string(input))
	if err != nil {
		return fmt.Errorf("quantity %q: %w", input, err)
	}
	*h = hexU256(*x)
	return nil
}

// txJSON is the wire form shared by all shapes. Absent fields are omitted.
type txJSON struct {
	Type                 *TxType         `json:"type,omitempty"`
	From                 *common.Address `json:"from,omitempty"`
	To                   *NameOrAddress  `json:"to,omitempty"`
	Gas                  *hexU256        `json:"gas,omitempty"`
	GasPrice             *hexU256        `json:"gasPrice,omitempty"`
	MaxPriorityFeePerGas *hexU256        `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerGas         *hexU256        `json:"maxFeePerGas,omitempty"`
	Value                *hexU256        `json:"value,omitempty"`
	Data                 *hexutil.Bytes  `json:"data,omitempty"`
	Nonce                *hexU256        `json:"nonce,omitempty"`
	AccessList           *AccessList     `json:"accessList,omitempty"`
	ChainID              *hexutil.Uint64 `json:"chainId,omitempty"`
}

func optBytes(b []byte) *hexutil.Bytes {
	if b == nil {
		return nil
	}
	enc := hexutil.Bytes(b)
	return &enc
}

func optInt(h *hexU256) *uint256.Int {
	if h == nil {
		return nil
	}
	return h.int()
}

func nonNilAccessList(al *AccessList) AccessList {
	if al == nil || *al == nil {
		return AccessList{}
	}
	return *al
}

func (tx *LegacyRequest) toJSON(enc *txJSON) {
	enc.From = tx.From
	enc.To = tx.To
	enc.Gas = toHexU256(tx.Gas)
	enc.GasPrice = toHexU256(tx.GasPrice)
	enc.Value = toHexU256(tx.Value)
	enc.Data = optBytes(tx.Data)
	enc.Nonce = toHexU256(tx.Nonce)
}

func (tx *LegacyRequest) fromJSON(dec *txJSON) {
	tx.From = dec.From
	tx.To = dec.To
	tx.Gas = optInt(dec.Gas)
	tx.GasPrice = optInt(dec.GasPrice)
	tx.Value = optInt(dec.Value)
	if dec.Data != nil {
		tx.Data = *dec.Data
	}
	tx.Nonce = optInt(dec.Nonce)
}

func (tx *LegacyRequest) foreignFields(dec *txJSON) []string {
	var names []string
	if dec.AccessList != nil {
		names = append(names, "accessList")
	}
	if dec.ChainID != nil {
		names = append(names, "chainId")
	}
	return append(names, feeCapFields(dec)...)
}

func (tx *AccessListRequest) toJSON(enc *txJSON) {
	tx.LegacyRequest.toJSON(enc)
	al := nonNilAccessList(&tx.AccessList)
	enc.AccessList = &al
}

func (tx *AccessListRequest) fromJSON(dec *txJSON) {
	tx.LegacyRequest.fromJSON(dec)
	tx.AccessList = nonNilAccessList(dec.AccessList)
}

func (tx *AccessListRequest) foreignFields(dec *txJSON) []string {
	var names []string
	if dec.ChainID != nil {
		names = append(names, "chainId")
	}
	return append(names, feeCapFields(dec)...)
}

func (tx *DynamicFeeRequest) toJSON(enc *txJSON) {
	enc.From = tx.From
	enc.To = tx.To
	enc.Gas = toHexU256(tx.Gas)
	enc.Value = toHexU256(tx.Value)
	enc.Data = optBytes(tx.Data)
	enc.Nonce = toHexU256(tx.Nonce)
	al := nonNilAccessList(&tx.AccessList)
	enc.AccessList = &al
	enc.MaxPriorityFeePerGas = toHexU256(tx.MaxPriorityFeePerGas)
	enc.MaxFeePerGas = toHexU256(tx.MaxFeePerGas)
	chainID := hexutil.Uint64(tx.ChainID)
	enc.ChainID = &chainID
}

func (tx *DynamicFeeRequest) fromJSON(dec *txJSON) {
	tx.From = dec.From
	tx.To = dec.To
	tx.Gas = optInt(dec.Gas)
	tx.Value = optInt(dec.Value)
	if dec.Data != nil {
		tx.Data = *dec.Data
	}
	tx.Nonce = optInt(dec.Nonce)
	tx.AccessList = nonNilAccessList(dec.AccessList)
	tx.MaxPriorityFeePerGas = optInt(dec.MaxPriorityFeePerGas)
	tx.MaxFeePerGas = optInt(dec.MaxFeePerGas)
	tx.ChainID = DefaultChainID
	if dec.ChainID != nil {
		tx.ChainID = uint64(*dec.ChainID)
	}
}

func (tx *DynamicFeeRequest) foreignFields(dec *txJSON) []string {
	if dec.GasPrice != nil {
		return []string{"gasPrice"}
	}
	return nil
}

func feeCapFields(dec *txJSON) []string {
	var names []string
	if dec.MaxPriorityFeePerGas != nil {
		names = append(names, "maxPriorityFeePerGas")
	}
	if dec.MaxFeePerGas != nil {
		names = append(names, "maxFeePerGas")
	}
	return names
}

func marshalRequest(req Request, typ *TxType) ([]byte, error) {
	enc := txJSON{Type: typ}
	req.toJSON(&enc)
	return json.Marshal(&enc)
}

func unmarshalRequest(req Request, input []byte) error {
	var dec txJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return &DecodeError{Type: req.TxType(), Err: err}
	}
	req.fromJSON(&dec)
	return nil
}

// MarshalJSON encodes the bare request without a type tag.
func (tx *LegacyRequest) MarshalJSON() ([]byte, error) { return marshalRequest(tx, nil) }

// UnmarshalJSON decodes a bare request. A "type" tag, if present, is ignored,
// so the JSON of a legacy envelope decodes here as well.
func (tx *LegacyRequest) UnmarshalJSON(input []byte) error { return unmarshalRequest(tx, input) }

func (tx *AccessListRequest) MarshalJSON() ([]byte, error) { return marshalRequest(tx, nil) }

func (tx *AccessListRequest) UnmarshalJSON(input []byte) error { return unmarshalRequest(tx, input) }

func (tx *DynamicFeeRequest) MarshalJSON() ([]byte, error) { return marshalRequest(tx, nil) }

// UnmarshalJSON decodes a bare request. A missing chainId defaults to 1.
func (tx *DynamicFeeRequest) UnmarshalJSON(input []byte) error { return unmarshalRequest(tx, input) }

// MarshalJSON encodes the wrapped request tagged with its "type".
func (e *Envelope) MarshalJSON() ([]byte, error) {
	if e.inner == nil {
		return nil, ErrUnknownTxType
	}
	typ := e.inner.TxType()
	return marshalRequest(e.inner, &typ)
}

// UnmarshalJSON selects the shape from the "type" tag. Fields unknown to the
// wire contract are ignored; see DecodeJSONStrict.
func (e *Envelope) UnmarshalJSON(input []byte) error {
	var dec txJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return &DecodeError{Err: err}
	}
	req, err := newRequest(dec.Type)
	if err != nil {
		return err
	}
	req.fromJSON(&dec)
	e.inner = req
	return nil
}

// DecodeJSONStrict decodes an envelope and rejects any field that is unknown
// to the wire contract or not carried by the tagged shape.
func DecodeJSONStrict(input []byte) (*Envelope, error) {
	var dec txJSON
	d := json.NewDecoder(bytes.NewReader(input))
	d.DisallowUnknownFields()
	if err := d.Decode(&dec); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if d.More() {
		return nil, &DecodeError{Err: errors.New("trailing data after transaction object")}
	}
	req, err := newRequest(dec.Type)
	if err != nil {
		return nil, err
	}
	if names := req.foreignFields(&dec); len(names) > 0 {
		return nil, &DecodeError{
			Type: req.TxType(),
			Err:  fmt.Errorf("fields not allowed for this type: %s", strings.Join(names, ", ")),
		}
	}
	req.fromJSON(&dec)
	return NewEnvelope(req), nil
}

func newRequest(typ *TxType) (Request, error) {
	if typ == nil {
		return nil, &DecodeError{Field: "type", Err: errors.New("missing transaction type")}
	}
	switch *typ {
	case LegacyTxType:
		return new(LegacyRequest), nil
	case AccessListTxType:
		return new(AccessListRequest), nil
	case DynamicFeeTxType:
		return new(DynamicFeeRequest), nil
	}
	return nil, &DecodeError{Type: *typ, Field: "type", Err: ErrUnknownTxType}
}
