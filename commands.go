package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/rotisserie/eris"
	"github.com/urfave/cli/v2"

	"TxEnvelope/api"
	"TxEnvelope/config"
	"TxEnvelope/resolver"
	"TxEnvelope/txn"
	"TxEnvelope/wallet"
)

var (
	serveCommand = &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API",
		Action: serve,
	}
	sighashCommand = &cli.Command{
		Name:      "sighash",
		Usage:     "Print the signing hash of a JSON transaction",
		ArgsUsage: "[<tx.json>|-]",
		Action:    sighash,
	}
	encodeCommand = &cli.Command{
		Name:      "encode",
		Usage:     "Encode a JSON transaction with a signature",
		ArgsUsage: "<tx.json>|- <signature-json>",
		Action:    encode,
	}
	decodeCommand = &cli.Command{
		Name:      "decode",
		Usage:     "Decode a signed transaction into JSON",
		ArgsUsage: "<hex>",
		Action:    decode,
	}
	signCommand = &cli.Command{
		Name:      "sign",
		Usage:     "Sign a JSON transaction with the configured account",
		ArgsUsage: "[<tx.json>|-]",
		Action:    sign,
	}
	dumpConfigCommand = &cli.Command{
		Name:   "dumpconfig",
		Usage:  "Export configuration values in a TOML format",
		Action: dumpConfig,
	}
)

func newResolver(cfg config.ResolverConfig) (txn.NameResolver, error) {
	static, err := resolver.NewStatic(cfg.Names)
	if err != nil {
		return nil, err
	}
	return resolver.NewCached(static, cfg.CacheSize)
}

func openWallet(cfg config.WalletConfig) (*wallet.Wallet, error) {
	if cfg.AccountPath == "" {
		return nil, nil
	}
	return wallet.Open(cfg.AccountPath, cfg.DerivationPath)
}

func serve(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	names, err := newResolver(cfg.Resolver)
	if err != nil {
		return err
	}
	opts := api.Options{
		ChainID:        cfg.Chain.ChainID,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		BatchLimit:     cfg.Server.BatchLimit,
		MaxBatchSize:   cfg.Server.MaxBatchSize,
		Resolver:       names,
	}
	w, err := openWallet(cfg.Wallet)
	if err != nil {
		return err
	}
	if w != nil {
		opts.Signer = w
		log.Info("Loaded signing account", "address", w.Address(), "path", w.Path())
	} else {
		log.Warn("No account configured, signing is disabled")
	}

	sigctx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.New(opts).ListenAndServe(sigctx, cfg.Server.ListenAddr)
}

// readInput reads the named file, or stdin for "-" or no name.
func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read transaction")
	}
	return data, nil
}

// readEnvelope decodes a JSON transaction and resolves names from the config.
func readEnvelope(ctx *cli.Context, cfg config.Config, name string) (*txn.Envelope, error) {
	data, err := readInput(name)
	if err != nil {
		return nil, err
	}
	env, err := txn.DecodeJSONStrict(data)
	if err != nil {
		return nil, err
	}
	names, err := newResolver(cfg.Resolver)
	if err != nil {
		return nil, err
	}
	if err := env.ResolveNames(ctx.Context, names); err != nil {
		return nil, err
	}
	return env, nil
}

// chainFor prefers the chain id a dynamic fee transaction carries unless
// --chainid was given explicitly.
func chainFor(ctx *cli.Context, cfg config.Config, env *txn.Envelope) uint64 {
	if stored, ok := env.ChainID(); ok && !ctx.IsSet(chainIDFlag.Name) {
		return stored
	}
	return cfg.Chain.ChainID
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sighash(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	env, err := readEnvelope(ctx, cfg, ctx.Args().First())
	if err != nil {
		return err
	}
	chainID := chainFor(ctx, cfg, env)
	unsigned, err := env.EncodeUnsigned(chainID)
	if err != nil {
		return err
	}
	hash, err := env.Sighash(chainID)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"type":     env.Type(),
		"sighash":  hash,
		"unsigned": hexutil.Bytes(unsigned),
	})
}

func encode(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return eris.New("encode needs a transaction and a signature")
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	env, err := readEnvelope(ctx, cfg, ctx.Args().Get(0))
	if err != nil {
		return err
	}
	var sig txn.Signature
	if err := json.Unmarshal([]byte(ctx.Args().Get(1)), &sig); err != nil {
		return eris.Wrap(err, "invalid signature")
	}
	raw, err := env.EncodeSigned(sig)
	if err != nil {
		return err
	}
	hash, err := env.TxHash(sig)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"raw": hexutil.Bytes(raw), "hash": hash})
}

func decode(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return eris.New("decode needs one hex argument")
	}
	raw, err := hexutil.Decode(strings.TrimSpace(ctx.Args().First()))
	if err != nil {
		return eris.Wrap(err, "invalid hex")
	}
	env, sig, err := txn.DecodeSigned(raw)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"tx": env, "signature": sig})
}

func sign(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	w, err := openWallet(cfg.Wallet)
	if err != nil {
		return err
	}
	if w == nil {
		return eris.New("no account configured, use --account")
	}
	env, err := readEnvelope(ctx, cfg, ctx.Args().First())
	if err != nil {
		return err
	}
	env.SetFrom(w.Address())
	sig, err := w.SignEnvelope(env, chainFor(ctx, cfg, env))
	if err != nil {
		return err
	}
	raw, err := env.EncodeSigned(sig)
	if err != nil {
		return err
	}
	hash, err := env.TxHash(sig)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"from":      w.Address(),
		"signature": sig,
		"raw":       hexutil.Bytes(raw),
		"hash":      hash,
	})
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Encode(os.Stdout); err != nil {
		return eris.Wrap(err, "failed to encode config")
	}
	return nil
}
