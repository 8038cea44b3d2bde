package txn

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownTxType     = errors.New("unknown transaction type")
	ErrUnresolvedName    = errors.New("unresolved name in address field")
	ErrChainIDMismatch   = errors.New("chain id mismatch")
	ErrMissingChainID    = errors.New("chain id required")
	ErrInvalidSignatureV = errors.New("invalid signature v value")
	ErrInvalidSigLength  = errors.New("invalid signature length")
	ErrListArity         = errors.New("rlp list arity mismatch")
	ErrListNotOpen       = errors.New("rlp field list is not open")
	ErrFieldCount        = errors.New("wrong number of transaction fields")
	ErrEmptyInput        = errors.New("empty transaction input")
)

// TxType is the discriminator byte placed in front of typed encodings.
type TxType byte

const (
	LegacyTxType     TxType = 0x00
	AccessListTxType TxType = 0x01
	DynamicFeeTxType TxType = 0x02

	// NoTxType is reported by an envelope that wraps no request.
	NoTxType TxType = 0xff
)

func (t TxType) String() string {
	switch t {
	case LegacyTxType:
		return "legacy"
	case AccessListTxType:
		return "access-list"
	case DynamicFeeTxType:
		return "dynamic-fee"
	case NoTxType:
		return "none"
	}
	return fmt.Sprintf("type 0x%02x", byte(t))
}

func (t TxType) valid() bool {
	return t <= DynamicFeeTxType
}

// MarshalText encodes the type as a two digit hex string ("0x02").
func (t TxType) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%02x", byte(t))), nil
}

// UnmarshalText accepts both padded ("0x02") and bare ("0x2") forms.
func (t *TxType) UnmarshalText(input []byte) error {
	s := string(input)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("transaction type %q: missing 0x prefix", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 8)
	if err != nil {
		return fmt.Errorf("transaction type %q: %w", s, err)
	}
	typ := TxType(v)
	if !typ.valid() {
		return fmt.Errorf("%w: %s", ErrUnknownTxType, s)
	}
	*t = typ
	return nil
}

// NameOrAddress holds a recipient that is either a concrete address or a
// human-readable name still waiting for resolution.
type NameOrAddress struct {
	name   string
	addr   common.Address
	isName bool
}

// Address wraps a concrete address.
func Address(a common.Address) *NameOrAddress {
	return &NameOrAddress{addr: a}
}

// Name wraps an unresolved name. Any name, including the empty one, must be
// resolved before the recipient can be encoded.
func Name(name string) *NameOrAddress {
	return &NameOrAddress{name: name, isName: true}
}

// Address returns the concrete address, or false if the value is still a name.
func (n *NameOrAddress) Address() (common.Address, bool) {
	if n.isName {
		return common.Address{}, false
	}
	return n.addr, true
}

// Name returns the unresolved name, or false if the value is an address.
func (n *NameOrAddress) Name() (string, bool) {
	return n.name, n.isName
}

func (n *NameOrAddress) String() string {
	if n.isName {
		return n.name
	}
	return n.addr.Hex()
}

// resolved returns the address to encode. A nil recipient means contract
// creation and encodes as the empty string.
func (n *NameOrAddress) resolved() (*common.Address, error) {
	if n == nil {
		return nil, nil
	}
	if n.isName {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedName, n.name)
	}
	addr := n.addr
	return &addr, nil
}

func (n *NameOrAddress) MarshalJSON() ([]byte, error) {
	if n.isName {
		return json.Marshal(n.name)
	}
	return json.Marshal(n.addr)
}

func (n *NameOrAddress) UnmarshalJSON(input []byte) error {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return err
	}
	switch {
	case common.IsHexAddress(s):
		*n = NameOrAddress{addr: common.HexToAddress(s)}
	case s == "":
		return errors.New("empty recipient")
	default:
		*n = NameOrAddress{name: s, isName: true}
	}
	return nil
}
