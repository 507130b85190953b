package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"levfin_model/pkg/core/assumption"
	"levfin_model/pkg/core/config"
	"levfin_model/pkg/core/logger"
	"levfin_model/pkg/core/projection"
	"levfin_model/pkg/core/scenario"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scenarios", flag.ContinueOnError)
	deckPath := fs.String("deck", "", "Scenario deck (YAML)")
	configDir := fs.String("config", "", "Directory holding engine.yaml")
	full := fs.Bool("full", false, "Print every projection instead of the comparison table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckPath == "" {
		return fmt.Errorf("no deck provided: use -deck")
	}

	var dirs []string
	if *configDir != "" {
		dirs = append(dirs, *configDir)
	}
	cfg, err := config.Load(dirs...)
	if err != nil {
		return err
	}
	log, err := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	mode, err := assumption.ParseMode(cfg.Engine.Mode)
	if err != nil {
		return err
	}

	deck, err := scenario.LoadDeck(*deckPath)
	if err != nil {
		return err
	}

	runner := scenario.NewRunner(projection.NewProjectionEngine(mode, log), cfg.Scenario.Parallelism, log)
	outcomes, err := runner.RunAll(ctx, deck)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if *full {
		return enc.Encode(outcomes)
	}
	return enc.Encode(scenario.Compare(outcomes))
}
