package jobs

import (
	"context"
	"log"
	"time"
)

// SyncProcessor is one unit of background work, invoked on every tick.
type SyncProcessor interface {
	Sync(ctx context.Context) error
}

// Worker polls a processor at a fixed interval until stopped.
type Worker struct {
	processor    SyncProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(processor SyncProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("reindex worker started with poll interval: %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("reindex worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("reindex worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.Sync(ctx); err != nil {
				log.Printf("error syncing index: %v", err)
			}
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("reindex worker shutdown complete")
}
