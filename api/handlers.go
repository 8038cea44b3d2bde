package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"

	"TxEnvelope/batch"
	"TxEnvelope/txn"
)

type sighashRequest struct {
	Tx      json.RawMessage `json:"tx" binding:"required"`
	ChainID *hexutil.Uint64 `json:"chainId"`
}

type sighashResponse struct {
	Type     txn.TxType    `json:"type"`
	Sighash  common.Hash   `json:"sighash"`
	Unsigned hexutil.Bytes `json:"unsigned"`
}

type batchRequest struct {
	Txs     []json.RawMessage `json:"txs" binding:"required"`
	ChainID *hexutil.Uint64   `json:"chainId"`
}

type batchResponse struct {
	Sighashes []common.Hash `json:"sighashes"`
}

type encodeRequest struct {
	Tx        json.RawMessage `json:"tx" binding:"required"`
	Signature *txn.Signature  `json:"signature" binding:"required"`
}

type encodedResponse struct {
	Raw  hexutil.Bytes `json:"raw"`
	Hash common.Hash   `json:"hash"`
}

type decodeRequest struct {
	Raw hexutil.Bytes `json:"raw" binding:"required"`
}

type decodeResponse struct {
	Tx        *txn.Envelope `json:"tx"`
	Signature txn.Signature `json:"signature"`
}

type signResponse struct {
	Signature txn.Signature  `json:"signature"`
	Raw       hexutil.Bytes  `json:"raw"`
	Hash      common.Hash    `json:"hash"`
	From      common.Address `json:"from"`
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abort(c, badRequest{err})
		return false
	}
	return true
}

// envelope strictly decodes a transaction object and resolves its recipient.
func (s *Server) envelope(c *gin.Context, raw json.RawMessage) (*txn.Envelope, error) {
	env, err := txn.DecodeJSONStrict(raw)
	if err != nil {
		return nil, err
	}
	if s.opts.Resolver != nil {
		if err := env.ResolveNames(c.Request.Context(), s.opts.Resolver); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// chainFor picks the chain id to hash env with: the one named in the request,
// else the one stored in the transaction, else the server default.
func (s *Server) chainFor(env *txn.Envelope, requested *hexutil.Uint64) uint64 {
	if requested != nil {
		return uint64(*requested)
	}
	if stored, ok := env.ChainID(); ok {
		return stored
	}
	return s.opts.ChainID
}

func (s *Server) sighash(c *gin.Context) {
	var req sighashRequest
	if !bind(c, &req) {
		return
	}
	env, err := s.envelope(c, req.Tx)
	if err != nil {
		abort(c, err)
		return
	}
	chainID := s.chainFor(env, req.ChainID)
	unsigned, err := env.EncodeUnsigned(chainID)
	if err != nil {
		abort(c, err)
		return
	}
	s.metrics.transaction("sighash", env.Type())
	c.JSON(http.StatusOK, sighashResponse{
		Type:     env.Type(),
		Sighash:  crypto.Keccak256Hash(unsigned),
		Unsigned: unsigned,
	})
}

func (s *Server) sighashBatch(c *gin.Context) {
	var req batchRequest
	if !bind(c, &req) {
		return
	}
	if limit := s.opts.MaxBatchSize; limit > 0 && len(req.Txs) > limit {
		abort(c, badRequest{fmt.Errorf("batch of %d transactions exceeds limit %d", len(req.Txs), limit)})
		return
	}
	envs := make([]*txn.Envelope, len(req.Txs))
	for i, raw := range req.Txs {
		env, err := s.envelope(c, raw)
		if err != nil {
			abort(c, &batch.ItemError{Index: i, Err: err})
			return
		}
		envs[i] = env
	}
	chainOf := func(env *txn.Envelope) uint64 { return s.chainFor(env, req.ChainID) }
	hashes, err := batch.SighashesFor(c.Request.Context(), envs, chainOf, s.opts.BatchLimit)
	if err != nil {
		abort(c, err)
		return
	}
	for _, env := range envs {
		s.metrics.transaction("sighash", env.Type())
	}
	c.JSON(http.StatusOK, batchResponse{Sighashes: hashes})
}

func (s *Server) encode(c *gin.Context) {
	var req encodeRequest
	if !bind(c, &req) {
		return
	}
	env, err := s.envelope(c, req.Tx)
	if err != nil {
		abort(c, err)
		return
	}
	raw, err := env.EncodeSigned(*req.Signature)
	if err != nil {
		abort(c, err)
		return
	}
	s.metrics.transaction("encode", env.Type())
	c.JSON(http.StatusOK, encodedResponse{Raw: raw, Hash: crypto.Keccak256Hash(raw)})
}

func (s *Server) decode(c *gin.Context) {
	var req decodeRequest
	if !bind(c, &req) {
		return
	}
	env, sig, err := txn.DecodeSigned(req.Raw)
	if err != nil {
		abort(c, err)
		return
	}
	s.metrics.transaction("decode", env.Type())
	c.JSON(http.StatusOK, decodeResponse{Tx: env, Signature: sig})
}

func (s *Server) sign(c *gin.Context) {
	if s.opts.Signer == nil {
		abort(c, errNoSigner)
		return
	}
	var req sighashRequest
	if !bind(c, &req) {
		return
	}
	env, err := s.envelope(c, req.Tx)
	if err != nil {
		abort(c, err)
		return
	}
	from := s.opts.Signer.Address()
	if f := env.From(); f != nil && *f != from {
		abort(c, badRequest{fmt.Errorf("from %s is not the configured account %s", f.Hex(), from.Hex())})
		return
	}
	env.SetFrom(from)
	chainID := s.chainFor(env, req.ChainID)

	// Lock during signing to prevent race conditions
	s.signMu.Lock()
	sig, err := s.opts.Signer.SignEnvelope(env, chainID)
	s.signMu.Unlock()
	if err != nil {
		abort(c, err)
		return
	}
	raw, err := env.EncodeSigned(sig)
	if err != nil {
		abort(c, err)
		return
	}
	s.metrics.transaction("sign", env.Type())
	c.JSON(http.StatusOK, signResponse{
		Signature: sig,
		Raw:       raw,
		Hash:      crypto.Keccak256Hash(raw),
		From:      from,
	})
}
