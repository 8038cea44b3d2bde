package txn

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// legacyBaseFields is the element count of [nonce, gasPrice, gas, to, value, data].
const legacyBaseFields = 6

// Request is implemented by the three transaction shapes. The set is closed.
type Request interface {
	TxType() TxType
	RLPBase(l *FieldList) error
	RLPSigned(sig Signature) ([]byte, error)

	// unsigned encodes the signing payload for chainID.
	unsigned(chainID uint64) ([]byte, error)
	toJSON(enc *txJSON)
	fromJSON(dec *txJSON)
	// foreignFields names wire fields set in dec that the shape does not carry.
	foreignFields(dec *txJSON) []string
}

// LegacyRequest is a pre-typed transaction. Nil fields are absent and encode
// as empty strings at their fixed position.
type LegacyRequest struct {
	From     *common.Address // never encoded
	To       *NameOrAddress  // nil means contract creation
	Gas      *uint256.Int
	GasPrice *uint256.Int
	Value    *uint256.Int
	Data     []byte
	Nonce    *uint256.Int
}

func (tx *LegacyRequest) TxType() TxType { return LegacyTxType }

// RLPBase appends nonce, gasPrice, gas, to, value, data.
func (tx *LegacyRequest) RLPBase(l *FieldList) error {
	to, err := tx.To.resolved()
	if err != nil {
		return err
	}
	l.AppendUint256(tx.Nonce)
	l.AppendUint256(tx.GasPrice)
	l.AppendUint256(tx.Gas)
	l.AppendAddress(to)
	l.AppendUint256(tx.Value)
	l.AppendBytes(tx.Data)
	return nil
}

// RLP returns the unsigned encoding. With a chain id the EIP-155 trailer
// [chainId, "", ""] follows the base fields; a zero chain id yields the six
// base fields alone.
func (tx *LegacyRequest) RLP(chainID uint64) ([]byte, error) {
	if chainID == 0 {
		return encodeList(legacyBaseFields, tx.RLPBase)
	}
	return encodeList(legacyBaseFields+3, func(l *FieldList) error {
		if err := tx.RLPBase(l); err != nil {
			return err
		}
		l.AppendUint64(chainID)
		l.AppendEmpty()
		l.AppendEmpty()
		return nil
	})
}

// RLPSigned returns the encoding with v, r, s appended. V is taken as is.
func (tx *LegacyRequest) RLPSigned(sig Signature) ([]byte, error) {
	return encodeList(legacyBaseFields+3, func(l *FieldList) error {
		if err := tx.RLPBase(l); err != nil {
			return err
		}
		appendSignature(l, sig.V, sig)
		return nil
	})
}

func (tx *LegacyRequest) unsigned(chainID uint64) ([]byte, error) {
	return tx.RLP(chainID)
}

// WithAccessList upgrades the request to the access list shape.
func (tx *LegacyRequest) WithAccessList(al AccessList) *AccessListRequest {
	return &AccessListRequest{LegacyRequest: *tx, AccessList: al}
}

func appendSignature(l *FieldList, v uint64, sig Signature) {
	l.AppendUint64(v)
	l.AppendUint256(&sig.R)
	l.AppendUint256(&sig.S)
}
