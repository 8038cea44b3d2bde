package txn

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// dynamicFeeFields is the element count of
// [chainId, nonce, maxPriorityFeePerGas, maxFeePerGas, gas, to, value, data, accessList].
const dynamicFeeFields = 9

// DefaultChainID is the chain id a dynamic fee request carries unless told otherwise.
const DefaultChainID uint64 = 1

// DynamicFeeRequest is a fee market transaction. Unlike the other shapes it
// stores its chain id and embeds it in the signed payload.
type DynamicFeeRequest struct {
	From                 *common.Address
	To                   *NameOrAddress
	Gas                  *uint256.Int
	Value                *uint256.Int
	Data                 []byte
	Nonce                *uint256.Int
	AccessList           AccessList
	MaxPriorityFeePerGas *uint256.Int
	MaxFeePerGas         *uint256.Int
	ChainID              uint64
}

// NewDynamicFeeRequest returns an empty request bound to DefaultChainID.
func NewDynamicFeeRequest() *DynamicFeeRequest {
	return &DynamicFeeRequest{AccessList: AccessList{}, ChainID: DefaultChainID}
}

func (tx *DynamicFeeRequest) TxType() TxType { return DynamicFeeTxType }

// RLPBase appends the nine payload fields.
func (tx *DynamicFeeRequest) RLPBase(l *FieldList) error {
	to, err := tx.To.resolved()
	if err != nil {
		return err
	}
	l.AppendUint64(tx.ChainID)
	l.AppendUint256(tx.Nonce)
	l.AppendUint256(tx.MaxPriorityFeePerGas)
	l.AppendUint256(tx.MaxFeePerGas)
	l.AppendUint256(tx.Gas)
	l.AppendAddress(to)
	l.AppendUint256(tx.Value)
	l.AppendBytes(tx.Data)
	l.AppendAccessList(tx.AccessList)
	return nil
}

// RLPWithChainID appends the payload fields to l. chainID must equal the
// stored chain id; signing for a network other than the one embedded in the
// payload is refused and nothing is appended.
func (tx *DynamicFeeRequest) RLPWithChainID(l *FieldList, chainID uint64) error {
	if chainID != tx.ChainID {
		return fmt.Errorf("%w: stored %d, supplied %d", ErrChainIDMismatch, tx.ChainID, chainID)
	}
	return tx.RLPBase(l)
}

// RLP returns the unsigned encoding for chainID. See RLPWithChainID.
func (tx *DynamicFeeRequest) RLP(chainID uint64) ([]byte, error) {
	return encodeList(dynamicFeeFields, func(l *FieldList) error {
		return tx.RLPWithChainID(l, chainID)
	})
}

// RLPSigned returns the payload followed by yParity, r, s. The signature is
// expected in EIP-155 form and v is reduced to v - chainId*2 - 35.
func (tx *DynamicFeeRequest) RLPSigned(sig Signature) ([]byte, error) {
	base, err := eip155Base(tx.ChainID)
	if err != nil {
		return nil, err
	}
	parity, err := recoveryBit(sig.V, base)
	if err != nil {
		return nil, err
	}
	return encodeList(dynamicFeeFields+3, func(l *FieldList) error {
		if err := tx.RLPBase(l); err != nil {
			return err
		}
		appendSignature(l, uint64(parity), sig)
		return nil
	})
}

func (tx *DynamicFeeRequest) unsigned(chainID uint64) ([]byte, error) {
	return tx.RLP(chainID)
}

// ToLegacy flattens the request into a legacy one priced at MaxFeePerGas.
// The access list and chain id are dropped.
func (tx *DynamicFeeRequest) ToLegacy() *LegacyRequest {
	return &LegacyRequest{
		From:     tx.From,
		To:       tx.To,
		Gas:      tx.Gas,
		GasPrice: tx.MaxFeePerGas,
		Value:    tx.Value,
		Data:     tx.Data,
		Nonce:    tx.Nonce,
	}
}
