package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"TxEnvelope/batch"
	"TxEnvelope/resolver"
	"TxEnvelope/txn"
)

var errNoSigner = errors.New("no signing account configured")

// badRequest marks errors in the request body itself.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// encodeErrors are failures of a well formed transaction that cannot be
// encoded or signed as given.
var encodeErrors = []error{
	txn.ErrUnresolvedName,
	txn.ErrChainIDMismatch,
	txn.ErrMissingChainID,
	txn.ErrInvalidSignatureV,
	txn.ErrInvalidSigLength,
	resolver.ErrUnknownName,
}

func statusOf(err error) int {
	var (
		decodeErr *txn.DecodeError
		reqErr    badRequest
	)
	switch {
	case errors.As(err, &decodeErr), errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, errNoSigner):
		return http.StatusServiceUnavailable
	}
	for _, target := range encodeErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var itemErr *batch.ItemError
	if errors.As(err, &itemErr) {
		body["index"] = itemErr.Index
	}
	c.AbortWithStatusJSON(statusOf(err), body)
}
