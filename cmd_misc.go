package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github/itish2003/meetassist/config"
	"github/itish2003/meetassist/mcpserver"
	"github/itish2003/meetassist/tui"
)

// handleReset empties the vector index. Stored transcripts are kept.
func handleReset(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	total := a.rag.GetTotalChunks(ctx)
	if !*yes {
		fmt.Printf("Delete all %d vectors in %s? [y/N] ", total, cfg.Storage.VectorDir)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}
	if err := a.rag.ResetIndex(ctx); err != nil {
		return err
	}
	fmt.Printf("Removed %d vectors.\n", total)
	return nil
}

// handleChat starts the interactive tester. Logs go to a file so they do not
// tear the screen.
func handleChat(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	logFile := fs.String("log", "meetassist-chat.log", "file that receives log output while the UI runs")
	topK := fs.Int("top-k", cfg.Retrieval.TopK, "chunks retrieved per question")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := tea.LogToFile(*logFile, "chat")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	info := a.rag.IndexInfo(ctx)
	summary := fmt.Sprintf("%d chunks indexed with %s", info.VectorTotal, info.EmbeddingModel)
	_, err = tea.NewProgram(tui.New(ctx, a.rag, *topK, summary), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// handleMCP implements the MCP stdio server subcommand. stdout carries the
// protocol, so logging stays on stderr.
func handleMCP(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    meetassist mcp

DESCRIPTION:
    Run an MCP stdio server exposing:
      - meeting_answer
      - meeting_search
      - meeting_ingest
      - index_stats
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	log.SetOutput(os.Stderr)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	return mcpserver.New(a.rag, version).Run(ctx)
}
