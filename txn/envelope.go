package txn

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// NameResolver maps a human-readable name to an address.
type NameResolver interface {
	ResolveName(ctx context.Context, name string) (common.Address, error)
}

// Envelope wraps exactly one request shape and exposes a single API over all
// of them. The shape is fixed at construction. The zero value holds no request:
// its getters return nil, its setters do nothing and encoding it fails with
// ErrUnknownTxType. Build envelopes with NewEnvelope or by decoding.
type Envelope struct {
	inner Request
}

// NewEnvelope wraps req, which must be non-nil.
func NewEnvelope(req Request) *Envelope {
	return &Envelope{inner: req}
}

// Type returns the discriminator of the wrapped shape, or NoTxType for an
// envelope without a request.
func (e *Envelope) Type() TxType {
	if e.inner == nil {
		return NoTxType
	}
	return e.inner.TxType()
}

// Request returns the wrapped request. Mutating it mutates the envelope.
func (e *Envelope) Request() Request {
	return e.inner
}

func (e *Envelope) From() *common.Address {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.From
	case *AccessListRequest:
		return tx.From
	case *DynamicFeeRequest:
		return tx.From
	}
	return nil
}

func (e *Envelope) SetFrom(from common.Address) *Envelope {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		tx.From = &from
	case *AccessListRequest:
		tx.From = &from
	case *DynamicFeeRequest:
		tx.From = &from
	}
	return e
}

func (e *Envelope) To() *NameOrAddress {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.To
	case *AccessListRequest:
		return tx.To
	case *DynamicFeeRequest:
		return tx.To
	}
	return nil
}

func (e *Envelope) SetTo(to *NameOrAddress) *Envelope {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		tx.To = to
	case *AccessListRequest:
		tx.To = to
	case *DynamicFeeRequest:
		tx.To = to
	}
	return e
}

func (e *Envelope) Nonce() *uint256.Int {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.Nonce
	case *AccessListRequest:
		return tx.Nonce
	case *DynamicFeeRequest:
		return tx.Nonce
	}
	return nil
}

func (e *Envelope) SetNonce(nonce *uint256.Int) *Envelope {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		tx.Nonce = nonce
	case *AccessListRequest:
		tx.Nonce = nonce
	case *DynamicFeeRequest:
		tx.Nonce = nonce
	}
	return e
}

func (e *Envelope) Value() *uint256.Int {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.Value
	case *AccessListRequest:
		return tx.Value
	case *DynamicFeeRequest:
		return tx.Value
	}
	return nil
}

func (e *Envelope) SetValue(value *uint256.Int) *Envelope {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		tx.Value = value
	case *AccessListRequest:
		tx.Value = value
	case *DynamicFeeRequest:
		tx.Value = value
	}
	return e
}

func (e *Envelope) Gas() *uint256.Int {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.Gas
	case *AccessListRequest:
		return tx.Gas
	case *DynamicFeeRequest:
		return tx.Gas
	}
	return nil
}

func (e *Envelope) SetGas(gas *uint256.Int) *Envelope {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		tx.Gas = gas
	case *AccessListRequest:
		tx.Gas = gas
	case *DynamicFeeRequest:
		tx.Gas = gas
	}
	return e
}

func (e *Envelope) Data() []byte {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.Data
	case *AccessListRequest:
		return tx.Data
	case *DynamicFeeRequest:
		return tx.Data
	}
	return nil
}

func (e *Envelope) SetData(data []byte) *Envelope {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		tx.Data = data
	case *AccessListRequest:
		tx.Data = data
	case *DynamicFeeRequest:
		tx.Data = data
	}
	return e
}

// GasPrice returns the flat gas price, or MaxFeePerGas for a dynamic fee request.
func (e *Envelope) GasPrice() *uint256.Int {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.GasPrice
	case *AccessListRequest:
		return tx.GasPrice
	case *DynamicFeeRequest:
		return tx.MaxFeePerGas
	}
	return nil
}

// SetGasPrice sets the flat gas price. On a dynamic fee request both fee caps
// are set to price.
func (e *Envelope) SetGasPrice(price *uint256.Int) *Envelope {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		tx.GasPrice = price
	case *AccessListRequest:
		tx.GasPrice = price
	case *DynamicFeeRequest:
		tx.MaxFeePerGas = price
		if price == nil {
			tx.MaxPriorityFeePerGas = nil
		} else {
			tx.MaxPriorityFeePerGas = new(uint256.Int).Set(price)
		}
	}
	return e
}

// AccessList returns the access list, nil for a legacy request.
func (e *Envelope) AccessList() AccessList {
	switch tx := e.inner.(type) {
	case *AccessListRequest:
		return tx.AccessList
	case *DynamicFeeRequest:
		return tx.AccessList
	}
	return nil
}

// SetAccessList sets the access list. Legacy requests have none and are left
// untouched.
func (e *Envelope) SetAccessList(al AccessList) *Envelope {
	switch tx := e.inner.(type) {
	case *AccessListRequest:
		tx.AccessList = al
	case *DynamicFeeRequest:
		tx.AccessList = al
	}
	return e
}

// ChainID returns the stored chain id. Only dynamic fee requests store one.
func (e *Envelope) ChainID() (uint64, bool) {
	if tx, ok := e.inner.(*DynamicFeeRequest); ok {
		return tx.ChainID, true
	}
	return 0, false
}

// EncodeUnsigned returns the signing payload for chainID. Typed shapes are
// prefixed with their type byte; legacy payloads are bare RLP.
func (e *Envelope) EncodeUnsigned(chainID uint64) ([]byte, error) {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.RLP(chainID)
	case *AccessListRequest, *DynamicFeeRequest:
		enc, err := tx.unsigned(chainID)
		if err != nil {
			return nil, err
		}
		return frame(tx.TxType(), enc), nil
	}
	return nil, ErrUnknownTxType
}

// EncodeSigned returns the wire encoding of the request signed with sig.
func (e *Envelope) EncodeSigned(sig Signature) ([]byte, error) {
	switch tx := e.inner.(type) {
	case *LegacyRequest:
		return tx.RLPSigned(sig)
	case *AccessListRequest, *DynamicFeeRequest:
		enc, err := tx.RLPSigned(sig)
		if err != nil {
			return nil, err
		}
		return frame(tx.TxType(), enc), nil
	}
	return nil, ErrUnknownTxType
}

// Sighash is the keccak256 digest of EncodeUnsigned(chainID).
func (e *Envelope) Sighash(chainID uint64) (common.Hash, error) {
	enc, err := e.EncodeUnsigned(chainID)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// TxHash is the keccak256 digest of EncodeSigned(sig), the identifier the
// network knows the transaction by.
func (e *Envelope) TxHash(sig Signature) (common.Hash, error) {
	enc, err := e.EncodeSigned(sig)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(enc), nil
}

// ResolveNames replaces a named recipient with the address r returns for it.
func (e *Envelope) ResolveNames(ctx context.Context, r NameResolver) error {
	to := e.To()
	if to == nil {
		return nil
	}
	name, ok := to.Name()
	if !ok {
		return nil
	}
	addr, err := r.ResolveName(ctx, name)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", name, err)
	}
	e.SetTo(Address(addr))
	return nil
}

func frame(typ TxType, enc []byte) []byte {
	out := make([]byte, 0, len(enc)+1)
	out = append(out, byte(typ))
	return append(out, enc...)
}
