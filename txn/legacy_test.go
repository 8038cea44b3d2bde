package txn

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eip155Recipient = common.HexToAddress("0x3535353535353535353535353535353535353535")

// eip155Example is the worked example from EIP-155.
func eip155Example() *LegacyRequest {
	return &LegacyRequest{
		Nonce:    uint256.NewInt(9),
		GasPrice: uint256.NewInt(20_000_000_000),
		Gas:      uint256.NewInt(21000),
		To:       Address(eip155Recipient),
		Value:    uint256.MustFromDecimal("1000000000000000000"),
	}
}

func eip155Signature() Signature {
	sig := Signature{V: 37}
	sig.R.SetFromDecimal("18515461264373351373200002665853028612451056578545711640558177340181847433846")
	sig.S.SetFromDecimal("46948507304638947509940763649030358759909902576025900602547168820602576006531")
	return sig
}

func TestLegacySighash(t *testing.T) {
	env := NewEnvelope(eip155Example())

	hash, err := env.Sighash(1)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xdaf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53"), hash)

	homestead, err := env.Sighash(0)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xf9e36c28c8cb35adba138005c02ab7aa7fbcd891f3139cb2eeed052a51cd2713"), homestead)
}

func TestLegacySigned(t *testing.T) {
	env := NewEnvelope(eip155Example())

	raw, err := env.EncodeSigned(eip155Signature())
	require.NoError(t, err)
	assert.Equal(t, "0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83", hexutil.Encode(raw))
}

func TestLegacyEmpty(t *testing.T) {
	enc, err := new(LegacyRequest).RLP(1)
	require.NoError(t, err)
	assert.Equal(t, "0xc9808080808080018080", hexutil.Encode(enc))

	enc, err = new(LegacyRequest).RLP(0)
	require.NoError(t, err)
	assert.Equal(t, legacyBaseFields, countFields(t, enc))
}

func TestLegacyArityIsFixed(t *testing.T) {
	full := eip155Example()
	full.Data = []byte{1, 2, 3}
	full.From = &common.Address{0xff}

	for _, tx := range []*LegacyRequest{new(LegacyRequest), eip155Example(), full} {
		enc, err := tx.RLP(5)
		require.NoError(t, err)
		assert.Equal(t, legacyBaseFields+3, countFields(t, enc))

		enc, err = tx.RLPSigned(Signature{V: 45})
		require.NoError(t, err)
		assert.Equal(t, legacyBaseFields+3, countFields(t, enc))
	}
}

func TestLegacyFromIsNotEncoded(t *testing.T) {
	tx := eip155Example()
	before, err := tx.RLP(1)
	require.NoError(t, err)

	tx.From = &common.Address{0x01}
	after, err := tx.RLP(1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLegacyUnresolvedName(t *testing.T) {
	tx := eip155Example()
	tx.To = Name("vitalik.eth")

	_, err := tx.RLP(1)
	assert.ErrorIs(t, err, ErrUnresolvedName)
	_, err = tx.RLPSigned(eip155Signature())
	assert.ErrorIs(t, err, ErrUnresolvedName)
	_, err = NewEnvelope(tx).Sighash(1)
	assert.ErrorIs(t, err, ErrUnresolvedName)
}

func TestEmptyNameIsNotAnAddress(t *testing.T) {
	to := Name("")
	_, ok := to.Address()
	assert.False(t, ok)
	name, ok := to.Name()
	assert.True(t, ok)
	assert.Empty(t, name)

	tx := eip155Example()
	tx.To = to
	enc, err := tx.RLP(1)
	assert.ErrorIs(t, err, ErrUnresolvedName)
	assert.Nil(t, enc)
	_, err = NewEnvelope(tx).Sighash(1)
	assert.ErrorIs(t, err, ErrUnresolvedName)
}

func TestLegacyMatchesEIP155Signer(t *testing.T) {
	key, err := crypto.HexToECDSA("4646464646464646464646464646464646464646464646464646464646464646")
	require.NoError(t, err)

	tests := []struct {
		name string
		tx   *LegacyRequest
		gtx  *types.LegacyTx
	}{
		{
			name: "transfer",
			tx:   eip155Example(),
			gtx: &types.LegacyTx{
				Nonce:    9,
				GasPrice: big.NewInt(20_000_000_000),
				Gas:      21000,
				To:       &eip155Recipient,
				Value:    new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
			},
		},
		{
			name: "contract creation",
			tx: &LegacyRequest{
				Nonce:    uint256.NewInt(1),
				GasPrice: uint256.NewInt(1),
				Gas:      uint256.NewInt(500000),
				Data:     common.FromHex("0x6060604052"),
			},
			gtx: &types.LegacyTx{
				Nonce:    1,
				GasPrice: big.NewInt(1),
				Gas:      500000,
				Value:    new(big.Int),
				Data:     common.FromHex("0x6060604052"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, chainID := range []uint64{1, 5, 1337} {
				signer := types.NewEIP155Signer(new(big.Int).SetUint64(chainID))
				gtx := types.NewTx(tt.gtx)
				env := NewEnvelope(tt.tx)

				hash, err := env.Sighash(chainID)
				require.NoError(t, err)
				require.Equal(t, signer.Hash(gtx), hash)

				rawSig, err := crypto.Sign(hash[:], key)
				require.NoError(t, err)
				sig, err := SignatureFromRecoverable(rawSig, chainID)
				require.NoError(t, err)

				signed, err := gtx.WithSignature(signer, rawSig)
				require.NoError(t, err)
				want, err := signed.MarshalBinary()
				require.NoError(t, err)

				got, err := env.EncodeSigned(sig)
				require.NoError(t, err)
				assert.Equal(t, want, got)

				txHash, err := env.TxHash(sig)
				require.NoError(t, err)
				assert.Equal(t, signed.Hash(), txHash)
			}
		})
	}
}

func TestLegacyHomesteadSigner(t *testing.T) {
	gtx := types.NewTx(&types.LegacyTx{
		Nonce:    9,
		GasPrice: big.NewInt(20_000_000_000),
		Gas:      21000,
		To:       &eip155Recipient,
		Value:    new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	})
	hash, err := NewEnvelope(eip155Example()).Sighash(0)
	require.NoError(t, err)
	assert.Equal(t, types.HomesteadSigner{}.Hash(gtx), hash)
}

func TestWithAccessList(t *testing.T) {
	al := AccessList{{Address: common.Address{1}, StorageKeys: []common.Hash{{2}}}}
	tx := eip155Example().WithAccessList(al)

	assert.Equal(t, AccessListTxType, tx.TxType())
	assert.Equal(t, al, tx.AccessList)
	assert.Equal(t, eip155Example().Nonce, tx.Nonce)
}
