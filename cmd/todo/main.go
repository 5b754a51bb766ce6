package main

import (
	"fmt"
	"os"

	"dayboard/internal/cli"
	"dayboard/internal/config"
	"dayboard/internal/logging"
	"dayboard/internal/storage"
	"dayboard/internal/store"
	"dayboard/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.Open(cfg.LogPath, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	kv, err := storage.Open(cfg.Backend, cfg.DBPath)
	if err != nil {
		fmt.Printf("failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	s := store.New(kv, store.WithLogger(logger))
	logger.Info("starting", "config", configPath, "backend", cfg.Backend, "db", cfg.DBPath)

	if args := os.Args[1:]; len(args) > 0 {
		if !cli.IsCommand(args[0]) {
			cli.PrintHelp(os.Stderr)
			os.Exit(2)
		}
		loc, err := cfg.Location()
		if err != nil {
			fmt.Printf("invalid timezone: %v\n", err)
			os.Exit(1)
		}
		s.Load()
		code := cli.Run(s, args, cli.Options{Out: os.Stdout, Err: os.Stderr, Location: loc})
		kv.Close()
		logFile.Close()
		os.Exit(code)
	}

	if err := ui.Run(s, cfg, logger); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
