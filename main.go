package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github/itish2003/meetassist/config"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default ./config.yaml when present)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("meetassist version %s\n", version)
		return
	}

	subcommand, args := "serve", flag.Args()
	if len(args) > 0 {
		subcommand, args = args[0], args[1:]
	}
	handler, ok := subcommands[subcommand]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown subcommand %q\n\n", subcommand)
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := handler(ctx, cfg, args); err != nil {
		log.Fatalf("FATAL: %s failed: %v", subcommand, err)
	}
}

type subcommandFunc func(ctx context.Context, cfg *config.Config, args []string) error

var subcommands = map[string]subcommandFunc{
	"serve":  handleServe,
	"ingest": handleIngest,
	"reset":  handleReset,
	"chat":   handleChat,
	"mcp":    handleMCP,
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `meetassist - meeting transcript assistant

USAGE:
    meetassist [-config path] <subcommand> [options]

SUBCOMMANDS:
    serve     Run the HTTP API and the drop-folder watcher (default)
    ingest    Ingest transcript files or directories
    reset     Empty the vector index
    chat      Interactive terminal tester
    mcp       Run an MCP stdio server

GLOBAL OPTIONS:
`)
	flag.PrintDefaults()
}
