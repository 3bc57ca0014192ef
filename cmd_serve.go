package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github/itish2003/meetassist/config"
	"github/itish2003/meetassist/controller"
	"github/itish2003/meetassist/services"
)

// handleServe runs the HTTP API and, when a watch dir is configured, the
// drop-folder watcher until ctx is cancelled.
func handleServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", cfg.Server.Port, "HTTP port")
	watchDir := fs.String("watch", cfg.Watch.Dir, "directory to watch for transcript files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	inbox, err := services.NewUploadInbox(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}

	if *watchDir != "" {
		watcher := services.NewTranscriptWatcher(a.ingester, *watchDir, cfg.Watch.Patterns)
		go func() {
			watcher.ScanDirectory(ctx)
			if err := watcher.Watch(ctx); err != nil {
				log.Printf("WATCHER ERROR: %v", err)
			}
		}()
	}

	router := controller.NewRouter(controller.NewRAGController(a.rag, inbox, a.ingester))
	srv := &http.Server{
		Addr:    ":" + *port,
		Handler: router,
	}

	log.Printf("Go Gin backend server starting on http://localhost:%s", *port)
	log.Printf("Health check available at: http://localhost:%s/health", *port)
	log.Printf("API endpoints:")
	log.Printf("  POST   http://localhost:%s/api/v1/transcripts", *port)
	log.Printf("  POST   http://localhost:%s/api/v1/transcripts/upload", *port)
	log.Printf("  POST   http://localhost:%s/api/v1/query", *port)
	log.Printf("  POST   http://localhost:%s/api/v1/search", *port)
	log.Printf("  GET    http://localhost:%s/api/v1/index", *port)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
