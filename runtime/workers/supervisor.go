package workers

import (
	"chat-pulse/contract"
	"chat-pulse/errors"
	"context"
	"log/slog"
	"sync"
	"time"
)

const restartDelay = 200 * time.Millisecond

// Supervisor runs each worker in its own goroutine, recovers panics and
// restarts crashed workers until the parent context is canceled. A failure
// in one worker never takes down the others.
type Supervisor struct {
	Cancel  context.CancelFunc
	wg      *sync.WaitGroup
	log     *slog.Logger
	workers []contract.Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every registered worker under a cancellation scope derived
// from ctx, then blocks until all of them have stopped. Canceling the
// parent context, or calling s.Cancel, stops the children.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start supervises a single worker. The restart loop recovers panics so a
// crashing worker is relaunched after a short delay instead of silently
// disappearing. A worker returning nil is considered done and never
// restarted.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	name := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for ctx.Err() == nil {
			err := runRecovered(ctx, worker)

			if err == nil {
				s.log.Info("Worker finished", "name", name)
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", name)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "error", err)
			select {
			case <-ctx.Done():
				// Shutdown beats the restart delay.
				return
			case <-time.After(restartDelay):
			}
		}
		s.log.Info("Worker stopped", "name", name)
	}()
}

func runRecovered(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.ErrWorkerPanic
		}
	}()
	return worker.Run(ctx)
}
