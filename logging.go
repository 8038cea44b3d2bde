package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"

	"TxEnvelope/config"
)

func setupLogging(cfg config.LogConfig) error {
	var (
		handler slog.Handler
		output  io.Writer = os.Stderr
	)
	switch cfg.Format {
	case "json":
		handler = log.JSONHandler(output)
	case "", "terminal":
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			output = colorable.NewColorableStderr()
		}
		handler = log.NewTerminalHandler(output, useColor)
	default:
		return eris.Errorf("unknown log format: %v", cfg.Format)
	}

	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(log.FromLegacyLevel(cfg.Verbosity))
	log.SetDefault(log.NewLogger(glogger))

	if cfg.Verbosity < 4 {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}
