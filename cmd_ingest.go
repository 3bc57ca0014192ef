package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github/itish2003/meetassist/config"
	"github/itish2003/meetassist/services"
)

// handleIngest implements the ingest subcommand
func handleIngest(ctx context.Context, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	meetingID := flags.Int64("meeting-id", 0, "meeting id for every file (default: first integer in each file name)")
	source := flags.String("source", "cli", "source_platform recorded with each transcript")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    meetassist ingest [options] <file|dir>...

DESCRIPTION:
    Extract and ingest transcript files (.txt .md .vtt .srt .pdf .json).
    Directories are walked recursively. Files already ingested with the
    same content are skipped.

OPTIONS:
`)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("no input paths given")
	}

	files, err := collectFiles(flags.Args())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported transcript files found")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	var ingested, skipped, failed, chunks int
	progress := newIngestProgress(len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		progress.Describe(filepath.Base(path))

		id := *meetingID
		if id <= 0 {
			var ok bool
			if id, ok = services.MeetingIDFromPath(path); !ok {
				log.Printf("INDEXER WARN: No meeting id in %s, skipping (use -meeting-id).", path)
				failed++
				progress.Increment()
				continue
			}
		}

		resp, err := a.ingester.Ingest(ctx, path, id, *source)
		switch {
		case errors.Is(err, services.ErrAlreadyIngested):
			skipped++
		case err != nil:
			log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
			failed++
		default:
			ingested++
			chunks += resp.IngestedChunks
		}
		progress.Increment()
	}
	progress.Finish()

	fmt.Printf("Ingested %d files (%d chunks), skipped %d unchanged, %d failed. Index holds %d vectors.\n",
		ingested, chunks, skipped, failed, a.rag.GetTotalChunks(ctx))
	if failed > 0 {
		return fmt.Errorf("%d files failed", failed)
	}
	return nil
}

func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !services.SupportedFile(root) {
				return nil, fmt.Errorf("%w: %s", services.ErrUnsupportedFile, root)
			}
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && services.SupportedFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
