package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"TxEnvelope/config"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: config.Defaults.Log.Verbosity,
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log.format",
		Usage: "Log format to use (terminal|json)",
		Value: config.Defaults.Log.Format,
	}
	httpAddrFlag = &cli.StringFlag{
		Name:  "http.addr",
		Usage: "HTTP listen address",
		Value: config.Defaults.Server.ListenAddr,
	}
	corsDomainFlag = &cli.StringFlag{
		Name:  "http.corsdomain",
		Usage: "Comma separated list of domains from which to accept cross origin requests",
	}
	chainIDFlag = &cli.Uint64Flag{
		Name:  "chainid",
		Usage: "Chain id to sign and hash for when a transaction does not carry one",
		Value: config.Defaults.Chain.ChainID,
	}
	accountFlag = &cli.StringFlag{
		Name:  "account",
		Usage: "Account JSON file holding the signing mnemonic",
	}
	derivationPathFlag = &cli.StringFlag{
		Name:  "account.path",
		Usage: "HD derivation path of the signing account",
		Value: config.Defaults.Wallet.DerivationPath,
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "txenvelope",
		Usage: "encode, hash, decode and sign typed transactions",
		Flags: []cli.Flag{
			configFileFlag,
			verbosityFlag,
			logFormatFlag,
			httpAddrFlag,
			corsDomainFlag,
			chainIDFlag,
			accountFlag,
			derivationPathFlag,
		},
		Before: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			return setupLogging(cfg.Log)
		},
		Action: serve,
		Commands: []*cli.Command{
			serveCommand,
			sighashCommand,
			encodeCommand,
			decodeCommand,
			signCommand,
			dumpConfigCommand,
		},
	}
}

// loadConfig reads the config file, if any, and applies flags on top.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if file := ctx.String(configFileFlag.Name); file != "" {
		var err error
		if cfg, err = config.Load(file); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(logFormatFlag.Name) {
		cfg.Log.Format = ctx.String(logFormatFlag.Name)
	}
	if ctx.IsSet(httpAddrFlag.Name) {
		cfg.Server.ListenAddr = ctx.String(httpAddrFlag.Name)
	}
	if ctx.IsSet(corsDomainFlag.Name) {
		cfg.Server.AllowedOrigins = splitAndTrim(ctx.String(corsDomainFlag.Name))
	}
	if ctx.IsSet(chainIDFlag.Name) {
		cfg.Chain.ChainID = ctx.Uint64(chainIDFlag.Name)
	}
	if ctx.IsSet(accountFlag.Name) {
		cfg.Wallet.AccountPath = ctx.String(accountFlag.Name)
	}
	if ctx.IsSet(derivationPathFlag.Name) {
		cfg.Wallet.DerivationPath = ctx.String(derivationPathFlag.Name)
	}
	return cfg, cfg.Validate()
}

// splitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func splitAndTrim(input string) (ret []string) {
	for _, r := range strings.Split(input, ",") {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
