package txn

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureFromRecoverable(t *testing.T) {
	raw := make([]byte, crypto.SignatureLength)
	raw[0], raw[63] = 0x11, 0x22

	tests := []struct {
		chainID uint64
		recid   byte
		wantV   uint64
	}{
		{0, 0, 27},
		{0, 1, 28},
		{1, 0, 37},
		{1, 1, 38},
		{1337, 1, 2710},
	}
	for _, tt := range tests {
		raw[crypto.RecoveryIDOffset] = tt.recid
		sig, err := SignatureFromRecoverable(raw, tt.chainID)
		require.NoError(t, err)
		assert.Equal(t, tt.wantV, sig.V)

		recid, err := sig.RecoveryID(tt.chainID)
		require.NoError(t, err)
		assert.Equal(t, tt.recid, recid)

		back, err := sig.Recoverable(tt.chainID)
		require.NoError(t, err)
		assert.Equal(t, raw, back)
	}

	_, err := SignatureFromRecoverable(raw[:64], 1)
	assert.ErrorIs(t, err, ErrInvalidSigLength)

	raw[crypto.RecoveryIDOffset] = 4
	_, err = SignatureFromRecoverable(raw, 1)
	assert.ErrorIs(t, err, ErrInvalidSignatureV)
}

func TestSignatureRecoveryIDWrongChain(t *testing.T) {
	sig := Signature{V: 37}
	_, err := sig.RecoveryID(5)
	assert.ErrorIs(t, err, ErrInvalidSignatureV)
	_, err = sig.RecoveryID(0)
	assert.ErrorIs(t, err, ErrInvalidSignatureV)
}

func TestSignatureChainIDOverflow(t *testing.T) {
	_, err := (&DynamicFeeRequest{ChainID: ^uint64(0)}).RLPSigned(Signature{V: 1})
	assert.ErrorIs(t, err, ErrInvalidSignatureV)
}

func TestSignatureJSON(t *testing.T) {
	sig := eip155Signature()
	enc, err := json.Marshal(sig)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"v": "0x25",
		"r": "0x28ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276",
		"s": "0x67cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
	}`, string(enc))

	var dec Signature
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.Equal(t, sig, dec)

	assert.Error(t, json.Unmarshal([]byte(`{"v":"0x1b","r":"0x1"}`), &dec))
}
