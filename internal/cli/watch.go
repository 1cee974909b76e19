package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/behzad94/showcase-1/internal/jobs"
	"github.com/behzad94/showcase-1/internal/store"
	"github.com/spf13/cobra"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the corpus directory and rebuild the index on change",
		Long:  "Poll the corpus directory and rebuild the index whenever a document is newer than the persisted manifest",
		RunE:  runWatch,
	}

	cmd.Flags().Duration("interval", 30*time.Second, "Poll interval")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.cleanup()

	if err := p.loadStore(); err != nil {
		log.Printf("starting without a loaded index: %v", err)
	}

	interval, _ := cmd.Flags().GetDuration("interval")

	watcher := jobs.NewCorpusWatcher(
		p.cfg.CorpusDir,
		filepath.Join(p.cfg.DataDir, store.ManifestFile),
		dirLoader{},
		p.svc,
	)
	worker := jobs.NewWorker(watcher, interval)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go worker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	worker.Stop()
	return nil
}
