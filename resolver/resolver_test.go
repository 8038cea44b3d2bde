package resolver

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TxEnvelope/txn"
)

var alice = common.HexToAddress("0x96216849c49358B10257cb55b28eA603c874b05E")

func TestStatic(t *testing.T) {
	s, err := NewStatic(map[string]string{"Alice.eth": alice.Hex()})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	for _, name := range []string{"alice.eth", "ALICE.ETH", "Alice.eth"} {
		addr, err := s.ResolveName(context.Background(), name)
		require.NoError(t, err)
		assert.Equal(t, alice, addr)
	}

	_, err = s.ResolveName(context.Background(), "bob.eth")
	assert.ErrorIs(t, err, ErrUnknownName)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ResolveName(ctx, "alice.eth")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStaticErrors(t *testing.T) {
	_, err := NewStatic(map[string]string{"alice": "0x1234"})
	assert.Error(t, err)

	_, err = NewStatic(map[string]string{"alice": alice.Hex(), "ALICE": alice.Hex()})
	assert.Error(t, err)
}

type countingResolver struct {
	calls atomic.Int32
	next  txn.NameResolver
}

func (c *countingResolver) ResolveName(ctx context.Context, name string) (common.Address, error) {
	c.calls.Add(1)
	return c.next.ResolveName(ctx, name)
}

func TestCached(t *testing.T) {
	s, err := NewStatic(map[string]string{"alice.eth": alice.Hex()})
	require.NoError(t, err)
	counter := &countingResolver{next: s}
	c, err := NewCached(counter, 8)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		addr, err := c.ResolveName(context.Background(), "Alice.eth")
		require.NoError(t, err)
		assert.Equal(t, alice, addr)
	}
	assert.EqualValues(t, 1, counter.calls.Load())

	for i := 0; i < 2; i++ {
		_, err = c.ResolveName(context.Background(), "bob.eth")
		assert.ErrorIs(t, err, ErrUnknownName)
	}
	assert.EqualValues(t, 3, counter.calls.Load())

	c.Purge()
	_, err = c.ResolveName(context.Background(), "alice.eth")
	require.NoError(t, err)
	assert.EqualValues(t, 4, counter.calls.Load())

	_, err = NewCached(s, 0)
	assert.Error(t, err)
}

func TestEnvelopeResolution(t *testing.T) {
	s, err := NewStatic(map[string]string{"alice.eth": alice.Hex()})
	require.NoError(t, err)

	env := txn.NewEnvelope(txn.NewDynamicFeeRequest()).SetTo(txn.Name("alice.eth"))
	require.NoError(t, env.ResolveNames(context.Background(), s))
	addr, ok := env.To().Address()
	require.True(t, ok)
	assert.Equal(t, alice, addr)
}
