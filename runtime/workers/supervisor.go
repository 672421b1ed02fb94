package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"quiz-arena/contract"
	"quiz-arena/errors"
)

// Supervisor owns a context and a cancel function.
// Runs each worker in a goroutine, recovers panics, restarts crashed
// workers, shuts down when the parent context is canceled and waits for
// all goroutines via a WaitGroup.
//
// Unlike a static pool, workers may be added while the supervisor runs:
// room workers are created on the first event for their room.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	ctx             context.Context
	wg              *sync.WaitGroup
	log             *slog.Logger
	restartInterval time.Duration
	pending         []contract.Worker
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartInterval: restartInterval}
}

// Add registers workers. Before Run they are parked; once the supervisor
// runs they start immediately under the supervised context.
func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	ctx := s.ctx
	if ctx == nil {
		s.pending = append(s.pending, worker...)
		s.mu.Unlock()
		return s
	}
	s.mu.Unlock()

	for _, w := range worker {
		s.start(ctx, w)
	}
	return s
}

// Run creates a local cancellation trigger tied to the parent ctx and
// starts every parked worker. It returns once workers are launched; Stop
// blocks until they all finished.
func (s *Supervisor) Run(ctx context.Context) {
	s.mu.Lock()
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.ctx = supervisedCtx
	s.cancel = cancel
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, worker := range pending {
		s.start(supervisedCtx, worker)
	}
}

// start runs a worker under supervision.
// If its Run method panics, the supervisor recovers, restarts the worker,
// and keeps the supervision loop alive. A failure in one worker must not
// stop the supervisor itself.
func (s *Supervisor) start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						s.log.Error("Recovered worker panic", "name", workerName, "panic", r)
						err = errors.ErrWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart.
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				// Context canceled: exit without waiting for the restart delay.
				return
			case <-time.After(s.restartInterval):
			}
		}
	}()
}

// Stop cancels every supervised goroutine and waits for them to finish.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
