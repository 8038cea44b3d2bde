package txn

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

var sprintf = fmt.Sprintf

// listElems splits an encoded list into its raw top level elements.
func listElems(t *testing.T, enc []byte) [][]byte {
	t.Helper()
	content, rest, err := rlp.SplitList(enc)
	require.NoError(t, err)
	require.Empty(t, rest)

	var elems [][]byte
	for len(content) > 0 {
		_, _, tail, err := rlp.Split(content)
		require.NoError(t, err)
		elems = append(elems, content[:len(content)-len(tail)])
		content = tail
	}
	return elems
}

// parityOf returns the yParity element of a signed dynamic fee body.
func parityOf(t *testing.T, body []byte) byte {
	t.Helper()
	elems := listElems(t, body)
	require.Len(t, elems, dynamicFeeFields+3)

	var parity uint64
	require.NoError(t, rlp.DecodeBytes(elems[dynamicFeeFields], &parity))
	return byte(parity)
}

func countFields(t *testing.T, enc []byte) int {
	t.Helper()
	content, _, err := rlp.SplitList(enc)
	require.NoError(t, err)
	n, err := rlp.CountValues(content)
	require.NoError(t, err)
	return n
}
