package txn

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Signature is a recoverable ECDSA signature. V is always held in EIP-155
// form (chainId*2+35+recid), or 27/28 when no chain id is folded in.
type Signature struct {
	V uint64
	R uint256.Int
	S uint256.Int
}

// eip155Base is the smallest v a signature bound to chainID can carry.
func eip155Base(chainID uint64) (uint64, error) {
	if chainID > (math.MaxUint64-36)/2 {
		return 0, fmt.Errorf("%w: chain id %d too large", ErrInvalidSignatureV, chainID)
	}
	return chainID*2 + 35, nil
}

func recoveryBit(v, base uint64) (byte, error) {
	if v < base || v-base > 1 {
		return 0, fmt.Errorf("%w: %d (want %d or %d)", ErrInvalidSignatureV, v, base, base+1)
	}
	return byte(v - base), nil
}

// SignatureFromRecoverable converts a 65 byte [R || S || recid] signature, as
// produced by crypto.Sign, into EIP-155 form for chainID. A zero chainID
// yields the unprotected 27/28 form.
func SignatureFromRecoverable(sig []byte, chainID uint64) (Signature, error) {
	if len(sig) != crypto.SignatureLength {
		return Signature{}, fmt.Errorf("%w: %d bytes", ErrInvalidSigLength, len(sig))
	}
	recid := uint64(sig[crypto.RecoveryIDOffset])
	if recid > 1 {
		return Signature{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignatureV, recid)
	}
	var s Signature
	s.R.SetBytes(sig[:32])
	s.S.SetBytes(sig[32:64])
	if chainID == 0 {
		s.V = 27 + recid
		return s, nil
	}
	base, err := eip155Base(chainID)
	if err != nil {
		return Signature{}, err
	}
	s.V = base + recid
	return s, nil
}

// RecoveryID extracts the recovery parity given the chain id the signature was
// produced for.
func (s Signature) RecoveryID(chainID uint64) (byte, error) {
	if chainID == 0 {
		return recoveryBit(s.V, 27)
	}
	base, err := eip155Base(chainID)
	if err != nil {
		return 0, err
	}
	return recoveryBit(s.V, base)
}

// Recoverable returns the 65 byte [R || S || recid] form accepted by
// crypto.Ecrecover.
func (s Signature) Recoverable(chainID uint64) ([]byte, error) {
	recid, err := s.RecoveryID(chainID)
	if err != nil {
		return nil, err
	}
	r, ss := s.R.Bytes32(), s.S.Bytes32()
	out := make([]byte, crypto.SignatureLength)
	copy(out[:32], r[:])
	copy(out[32:64], ss[:])
	out[crypto.RecoveryIDOffset] = recid
	return out, nil
}

type signatureJSON struct {
	V *hexutil.Uint64 `json:"v"`
	R *hexU256        `json:"r"`
	S *hexU256        `json:"s"`
}

func (s Signature) MarshalJSON() ([]byte, error) {
	v := hexutil.Uint64(s.V)
	return json.Marshal(signatureJSON{V: &v, R: toHexU256(&s.R), S: toHexU256(&s.S)})
}

func (s *Signature) UnmarshalJSON(input []byte) error {
	var dec signatureJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.V == nil || dec.R == nil || dec.S == nil {
		return errors.New("signature requires v, r and s")
	}
	s.V = uint64(*dec.V)
	s.R = *dec.R.int()
	s.S = *dec.S.int()
	return nil
}
