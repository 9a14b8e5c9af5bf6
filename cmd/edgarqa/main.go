// Package main is the entry point for the EDGAR CO2 emissions
// question-answering service: an HTTP/stdio Tool Surface plus the LLM
// Orchestrator that drives it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"edgarqa/internal/config"
	"edgarqa/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "edgarqa",
	Short: "Natural-language question answering over EDGAR CO2 emissions data",
	Long: `edgarqa answers natural-language questions about historical CO2 emissions
by letting a large language model plan tool calls against a structured
emissions warehouse, then summarising the returned rows back into
grounded prose with explicit source, quality and uncertainty attribution.`,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stdioCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadLogger builds the process logger from cfg.Environment, per
// spec.md §7's production/development encoding split.
func loadLogger(cfg *config.Config) (*zap.Logger, error) {
	env := logging.Development
	if cfg.Environment == config.Production {
		env = logging.Production
	}
	return logging.New(env, false)
}

// mustLoadConfig loads and validates configuration, exiting non-zero
// with a single-line structured error on any fatal misconfiguration,
// per spec.md §6/§7.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		l, _ := zap.NewProduction()
		if l == nil {
			l = zap.NewNop()
		}
		l.Error("fatal configuration error", zap.Error(err))
		os.Exit(1)
	}
	return cfg
}
