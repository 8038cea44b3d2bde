// Package wallet derives a signing key from a mnemonic and signs transaction
// envelopes with it.
package wallet

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/rotisserie/eris"

	"TxEnvelope/txn"
)

var (
	ErrAddressMismatch = eris.New("derived address does not match account file")
	ErrSenderMismatch  = eris.New("recovered sender does not match from")
	ErrNoSender        = eris.New("envelope has no from address")
)

// Wallet holds one derived account.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	path    string
}

// NewFromMnemonic derives the private key at path from the mnemonic phrase.
// An empty path selects DefaultDerivationPath.
func NewFromMnemonic(mnemonic, path string) (*Wallet, error) {
	if path == "" {
		path = DefaultDerivationPath
	}
	hd, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create wallet from mnemonic")
	}
	dpath, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid derivation path %q", path)
	}
	account, err := hd.Derive(dpath, false)
	if err != nil {
		return nil, eris.Wrap(err, "failed to derive account")
	}
	key, err := hd.PrivateKey(account)
	if err != nil {
		return nil, eris.Wrap(err, "failed to get private key")
	}
	log.Debug("Derived signing account", "address", account.Address, "path", path)
	return &Wallet{key: key, address: account.Address, path: path}, nil
}

// Address is the account the wallet signs for.
func (w *Wallet) Address() common.Address { return w.address }

// Path is the derivation path of the account.
func (w *Wallet) Path() string { return w.path }

// SignEnvelope signs the sighash of env and returns the signature in EIP-155
// form. A dynamic fee envelope signed with chainID 0 uses its stored chain id;
// any other chainID must equal the stored one.
func (w *Wallet) SignEnvelope(env *txn.Envelope, chainID uint64) (txn.Signature, error) {
	chainID = signingChainID(env, chainID)
	hash, err := env.Sighash(chainID)
	if err != nil {
		return txn.Signature{}, eris.Wrap(err, "failed to compute sighash")
	}
	raw, err := crypto.Sign(hash[:], w.key)
	if err != nil {
		return txn.Signature{}, eris.Wrap(err, "failed to sign transaction")
	}
	sig, err := txn.SignatureFromRecoverable(raw, chainID)
	if err != nil {
		return txn.Signature{}, eris.Wrap(err, "failed to convert signature")
	}
	return sig, nil
}

// RecoverSender returns the address that produced sig over env.
func RecoverSender(env *txn.Envelope, sig txn.Signature, chainID uint64) (common.Address, error) {
	chainID = signingChainID(env, chainID)
	hash, err := env.Sighash(chainID)
	if err != nil {
		return common.Address{}, eris.Wrap(err, "failed to compute sighash")
	}
	raw, err := sig.Recoverable(chainID)
	if err != nil {
		return common.Address{}, eris.Wrap(err, "invalid signature")
	}
	pub, err := crypto.SigToPub(hash[:], raw)
	if err != nil {
		return common.Address{}, eris.Wrap(err, "failed to recover public key")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySender checks that sig was produced by the envelope's From address.
func VerifySender(env *txn.Envelope, sig txn.Signature, chainID uint64) error {
	from := env.From()
	if from == nil {
		return ErrNoSender
	}
	signer, err := RecoverSender(env, sig, chainID)
	if err != nil {
		return err
	}
	if signer != *from {
		return eris.Wrapf(ErrSenderMismatch, "from %s, signed by %s", from.Hex(), signer.Hex())
	}
	return nil
}

func signingChainID(env *txn.Envelope, chainID uint64) uint64 {
	if stored, ok := env.ChainID(); ok && chainID == 0 {
		return stored
	}
	return chainID
}
