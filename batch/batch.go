// Package batch hashes and encodes many independent envelopes in parallel.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"

	"TxEnvelope/txn"
)

// ItemError reports which input failed.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string { return fmt.Sprintf("transaction %d: %v", e.Index, e.Err) }

func (e *ItemError) Unwrap() error { return e.Err }

// Signed pairs an envelope with the signature to encode it with.
type Signed struct {
	Envelope  *txn.Envelope
	Signature txn.Signature
}

// Encoded is the wire encoding of a signed envelope and its hash.
type Encoded struct {
	Raw  []byte
	Hash common.Hash
}

// Sighashes computes the signing hash of every envelope for chainID. Results
// are in input order. At most limit envelopes are hashed at once; a limit of
// zero or less uses GOMAXPROCS. The first failure stops the remaining work.
func Sighashes(ctx context.Context, envs []*txn.Envelope, chainID uint64, limit int) ([]common.Hash, error) {
	return SighashesFor(ctx, envs, func(*txn.Envelope) uint64 { return chainID }, limit)
}

// SighashesFor is Sighashes with the chain id chosen per envelope by chainOf.
func SighashesFor(ctx context.Context, envs []*txn.Envelope, chainOf func(*txn.Envelope) uint64, limit int) ([]common.Hash, error) {
	out := make([]common.Hash, len(envs))
	err := run(ctx, len(envs), limit, func(i int) error {
		h, err := envs[i].Sighash(chainOf(envs[i]))
		if err != nil {
			return err
		}
		out[i] = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeSigned produces the wire encoding of every item, in input order.
func EncodeSigned(ctx context.Context, items []Signed, limit int) ([]Encoded, error) {
	out := make([]Encoded, len(items))
	err := run(ctx, len(items), limit, func(i int) error {
		raw, err := items[i].Envelope.EncodeSigned(items[i].Signature)
		if err != nil {
			return err
		}
		out[i] = Encoded{Raw: raw, Hash: crypto.Keccak256Hash(raw)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func run(ctx context.Context, n, limit int, work func(i int) error) error {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	started := 0
	for ; started < n; started++ {
		if gctx.Err() != nil {
			break
		}
		i := started
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := work(i); err != nil {
				return &ItemError{Index: i, Err: err}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if started < n {
		// the caller gave up before every item was started
		return ctx.Err()
	}
	return nil
}
