package txn

// accessListFields is the element count of the access list encodings: the
// legacy base, the access list and a three element trailer.
const accessListFields = legacyBaseFields + 1 + 3

// AccessListRequest is a legacy request carrying an access list.
type AccessListRequest struct {
	LegacyRequest
	AccessList AccessList
}

func (tx *AccessListRequest) TxType() TxType { return AccessListTxType }

// RLPBase appends the legacy base fields followed by the access list.
func (tx *AccessListRequest) RLPBase(l *FieldList) error {
	if err := tx.LegacyRequest.RLPBase(l); err != nil {
		return err
	}
	l.AppendAccessList(tx.AccessList)
	return nil
}

// RLP returns the unsigned encoding [base..., accessList, chainId, "", ""].
// The hash of this shape depends on the chain id, so zero is rejected.
func (tx *AccessListRequest) RLP(chainID uint64) ([]byte, error) {
	if chainID == 0 {
		return nil, ErrMissingChainID
	}
	return encodeList(accessListFields, func(l *FieldList) error {
		if err := tx.RLPBase(l); err != nil {
			return err
		}
		l.AppendUint64(chainID)
		l.AppendEmpty()
		l.AppendEmpty()
		return nil
	})
}

// RLPSigned returns [base..., accessList, v, r, s] with v taken as is.
func (tx *AccessListRequest) RLPSigned(sig Signature) ([]byte, error) {
	return encodeList(accessListFields, func(l *FieldList) error {
		if err := tx.RLPBase(l); err != nil {
			return err
		}
		appendSignature(l, sig.V, sig)
		return nil
	})
}

func (tx *AccessListRequest) unsigned(chainID uint64) ([]byte, error) {
	return tx.RLP(chainID)
}
