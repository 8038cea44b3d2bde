package txn

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSignedRoundTrip(t *testing.T) {
	dyn := fixtureRequest(t, `[]`)
	dyn.AccessList = oneItemAccessList()
	dynSig := eip155Signature()
	dynSig.V = dyn.ChainID*2 + 35

	tests := []struct {
		name string
		env  *Envelope
		sig  Signature
	}{
		{"legacy", NewEnvelope(eip155Example()), eip155Signature()},
		{"legacy empty", NewEnvelope(new(LegacyRequest)), Signature{V: 27}},
		{"access list", NewEnvelope(eip155Example().WithAccessList(oneItemAccessList())), eip155Signature()},
		{"dynamic fee", NewEnvelope(dyn), dynSig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.env.EncodeSigned(tt.sig)
			require.NoError(t, err)

			env, sig, err := DecodeSigned(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.env.Type(), env.Type())
			assert.Equal(t, tt.sig, sig)

			again, err := env.EncodeSigned(sig)
			require.NoError(t, err)
			assert.Equal(t, raw, again)
		})
	}
}

func TestDecodeSignedVectors(t *testing.T) {
	env, sig, err := DecodeSigned(hexutil.MustDecode("0x02f8758205390284773594008477359400830186a09496216849c49358b10257cb55b28ea603c874b05e865af3107a4000825544c001a0c3000cd391f991169ebfd5d3b9e93c89d31a61c998a21b07a11dc6b9d66f8a8ea022cfe8424b2fbd78b16c9911da1be2349027b0a3c40adf4b6459222323773f74"))
	require.NoError(t, err)
	assert.Equal(t, DynamicFeeTxType, env.Type())
	assert.Equal(t, uint64(2710), sig.V)
	assert.Equal(t, fixtureRequest(t, `[]`), env.Request())

	env, sig, err = DecodeSigned(hexutil.MustDecode("0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"))
	require.NoError(t, err)
	assert.Equal(t, eip155Example(), env.Request())
	assert.Equal(t, eip155Signature(), sig)
}

func TestDecodeSignedLegacyTypeByte(t *testing.T) {
	raw, err := NewEnvelope(eip155Example()).EncodeSigned(eip155Signature())
	require.NoError(t, err)

	env, sig, err := DecodeSigned(append([]byte{0x00}, raw...))
	require.NoError(t, err)
	assert.Equal(t, LegacyTxType, env.Type())
	assert.Equal(t, eip155Signature(), sig)
}

func TestDecodeSignedErrors(t *testing.T) {
	legacy, err := rlp.EncodeToBytes([]interface{}{uint64(1), uint64(2), uint64(3), common.Address{}, uint64(0), []byte{}, uint64(27), uint64(1)})
	require.NoError(t, err)
	nonCanonical, err := rlp.EncodeToBytes([]interface{}{[]byte{0, 1}, uint64(2), uint64(3), common.Address{}, uint64(0), []byte{}, uint64(27), uint64(1), uint64(1)})
	require.NoError(t, err)
	shortAddr, err := rlp.EncodeToBytes([]interface{}{uint64(1), uint64(2), uint64(3), []byte{1, 2, 3}, uint64(0), []byte{}, uint64(27), uint64(1), uint64(1)})
	require.NoError(t, err)

	dyn := fixtureRequest(t, `[]`)
	body, err := dyn.RLPSigned(Signature{V: dyn.ChainID*2 + 35})
	require.NoError(t, err)
	elems := listElems(t, body)
	elems[dynamicFeeFields] = []byte{0x02}
	raws := make([]rlp.RawValue, len(elems))
	for i, e := range elems {
		raws[i] = e
	}
	badParity, err := rlp.EncodeToBytes(raws)
	require.NoError(t, err)

	signed, err := NewEnvelope(eip155Example()).EncodeSigned(eip155Signature())
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"empty", nil, ErrEmptyInput},
		{"unknown type", []byte{0x03, 0xc0}, ErrUnknownTxType},
		{"legacy short", legacy, ErrFieldCount},
		{"legacy non canonical", nonCanonical, rlp.ErrCanonInt},
		{"legacy short address", shortAddr, nil},
		{"dynamic fee parity", append([]byte{0x02}, badParity...), ErrInvalidSignatureV},
		{"access list empty body", []byte{0x01, 0xc0}, ErrFieldCount},
		{"trailing bytes", append(signed, 0x80), nil},
		{"not a list", []byte{0x02, 0x80}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, err := DecodeSigned(tt.raw)
			require.Error(t, err)
			assert.Nil(t, env)

			var derr *DecodeError
			assert.ErrorAs(t, err, &derr)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestDecodeAbsentFields(t *testing.T) {
	raw, err := NewEnvelope(new(LegacyRequest)).EncodeSigned(Signature{V: 27, R: *uint256.NewInt(1), S: *uint256.NewInt(2)})
	require.NoError(t, err)

	env, _, err := DecodeSigned(raw)
	require.NoError(t, err)
	assert.Nil(t, env.Nonce())
	assert.Nil(t, env.To())
	assert.Nil(t, env.Value())
	assert.Nil(t, env.Data())
}
