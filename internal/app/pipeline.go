package app

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/ayusman/physioduel/internal/pose"
)

// Start begins reading frames from src in the background. The pipeline
// stops when src is exhausted, on Stop, or on the first read error.
func (a *App) Start(src pose.Source) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		select {
		case <-a.done:
		default:
			return ErrAlreadyRunning
		}
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(src, a.stopCh, a.done)

	log.Println("Pose pipeline started")
	return nil
}

// Stop halts the pipeline and waits for it to exit.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.done = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done
	log.Println("Pose pipeline stopped")
}

// Wait blocks until the running pipeline exits on its own.
func (a *App) Wait() {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()

	if done != nil {
		<-done
	}
}

// runPipeline is the frame loop. Each frame is processed synchronously so
// frames are never reordered.
func (a *App) runPipeline(src pose.Source, stopCh, done chan struct{}) {
	defer close(done)

	var closeOnce sync.Once
	closeSource := func() {
		closeOnce.Do(func() {
			if err := src.Close(); err != nil {
				log.Printf("Error closing pose source: %v", err)
			}
		})
	}
	defer closeSource()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Sources blocked in a read ignore ctx; closing them unblocks Next.
	go func() {
		select {
		case <-stopCh:
			cancel()
			closeSource()
		case <-ctx.Done():
		}
	}()

	for {
		frame, err := src.Next(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case errors.Is(err, io.EOF):
				log.Println("Pose source exhausted")
			default:
				log.Printf("Error reading frame: %v", err)
			}
			return
		}
		a.ProcessFrame(frame)
	}
}
