package wallet

import (
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
)

// DefaultDerivationPath is the standard Ethereum path for the first account.
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// AccountInfo represents the wallet account information from JSON
type AccountInfo struct {
	Mnemonic       string          `json:"mnemonic"`
	DerivationPath string          `json:"derivation_path,omitempty"`
	Address        *common.Address `json:"address,omitempty"`
}

// LoadAccountInfo loads the account information from the provided JSON file
func LoadAccountInfo(filePath string) (*AccountInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, eris.Wrap(err, "error reading account file")
	}

	var account AccountInfo
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, eris.Wrap(err, "error parsing account data")
	}
	if account.Mnemonic == "" {
		return nil, eris.Errorf("account file %s has no mnemonic", filePath)
	}
	return &account, nil
}

// Open loads the account file and derives its signing key. A derivation path
// in the file takes precedence over path. If the file names an address, the
// derived key must match it.
func Open(filePath, path string) (*Wallet, error) {
	info, err := LoadAccountInfo(filePath)
	if err != nil {
		return nil, err
	}
	if info.DerivationPath != "" {
		path = info.DerivationPath
	}
	w, err := NewFromMnemonic(info.Mnemonic, path)
	if err != nil {
		return nil, err
	}
	if info.Address != nil && *info.Address != w.Address() {
		return nil, eris.Wrapf(ErrAddressMismatch, "account file has %s, derived %s", info.Address.Hex(), w.Address().Hex())
	}
	return w, nil
}
