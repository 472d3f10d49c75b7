package workers

import (
	"context"
	"fmt"
	"log/slog"
	"nfinite/contract"
	"nfinite/errors"
	"sync"
	"time"
)

const (
	DefaultRestartInterval = 200 * time.Millisecond
	maxRestartBackoff      = 16
)

// Supervisor keeps long running hub workers alive.
// A worker returning nil is done for good; an error or a panic restarts it after
// restartInterval, doubled on every consecutive crash up to 16 times the interval.
type Supervisor struct {
	Cancel          context.CancelFunc
	wg              *sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = DefaultRestartInterval
	}
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartInterval: restartInterval}
}

// Run starts every added worker and returns once all of them have finished.
// Cancelling ctx or calling Stop ends them all.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs one worker under supervision on its own goroutine.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.supervise(ctx, worker)
	}()
}

func (s *Supervisor) supervise(ctx context.Context, worker contract.Worker) {
	log := s.log.With("worker", contract.GetWorkerName(worker))
	backoff := 1
	for restarts := 0; ; restarts++ {
		err := runOnce(ctx, worker)
		switch {
		case ctx.Err() != nil:
			log.Info("Worker stopped", "restarts", restarts)
			return
		case err == nil:
			log.Info("Worker finished", "restarts", restarts)
			return
		}

		delay := s.restartInterval * time.Duration(backoff)
		backoff = min(backoff*2, maxRestartBackoff)
		log.Warn("Worker crashed, restarting", "error", err, "restarts", restarts+1, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runOnce turns a panic of the worker into an error wrapping ErrWorkerPanic.
func runOnce(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels every worker; Run returns once they are all gone.
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
