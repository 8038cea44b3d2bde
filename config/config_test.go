package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[Server]
ListenAddr = "127.0.0.1:9000"
BatchLimit = 4

[Chain]
ChainID = 1337

[Resolver.Names]
"alice.eth" = "0x96216849c49358B10257cb55b28eA603c874b05E"
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, 4, cfg.Server.BatchLimit)
	assert.Equal(t, uint64(1337), cfg.Chain.ChainID)
	assert.Equal(t, "0x96216849c49358B10257cb55b28eA603c874b05E", cfg.Resolver.Names["alice.eth"])

	// untouched sections keep their defaults
	assert.Equal(t, Defaults.Log, cfg.Log)
	assert.Equal(t, Defaults.Wallet, cfg.Wallet)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"unknown field":   "[Server]\nListenAdress = \":1\"\n",
		"unknown section": "[Node]\nName = \"x\"\n",
		"bad syntax":      "[Server\n",
		"bad log format":  "[Log]\nFormat = \"xml\"\n",
		"negative limit":  "[Server]\nBatchLimit = -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Chain.ChainID = 5
	cfg.Resolver.Names = map[string]string{"bob.eth": "0x3535353535353535353535353535353535353535"}

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.True(t, strings.Contains(buf.String(), "[Chain]"))

	var dec Config
	require.NoError(t, Decode(&buf, &dec))
	assert.Equal(t, cfg, dec)
}

func TestDefaultIsACopy(t *testing.T) {
	cfg := Default()
	cfg.Server.AllowedOrigins[0] = "https://example.com"
	assert.Equal(t, []string{"*"}, Defaults.Server.AllowedOrigins)
	assert.NoError(t, Defaults.Validate())
}
