package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pipr-api/internal/domain"
	"github.com/jhoicas/pipr-api/internal/domain/stockimport"
)

// JobState estado de un lote asíncrono.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
	JobCancelled JobState = "cancelled"
)

// Done indica si el job ya no avanzará.
func (s JobState) Done() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// JobSnapshot copia inmutable del estado de un job.
type JobSnapshot struct {
	ID         uuid.UUID
	UserID     string
	CediID     int64
	FileName   string
	DryRun     bool
	State      JobState
	Progress   stockimport.Progress
	Output     *BulkOutput
	Error      string
	CreatedAt  time.Time
	FinishedAt *time.Time
}

type job struct {
	snap   JobSnapshot
	cancel context.CancelFunc
	done   chan struct{}
}

// BatchRunner ejecuta un lote preparado. Lo implementa BulkStockUpdateUseCase.
type BatchRunner interface {
	Execute(ctx context.Context, batch *PreparedBatch, progress func(stockimport.Progress)) (*BulkOutput, error)
}

// JobRegistry mantiene en memoria los lotes lanzados en segundo plano. Cada
// lote corre en su propia goroutine y sigue siendo secuencial por dentro.
type JobRegistry struct {
	runner    BatchRunner
	retention time.Duration
	log       zerolog.Logger

	mu     sync.Mutex
	jobs   map[uuid.UUID]*job
	wg     sync.WaitGroup
	closed bool
}

// NewJobRegistry crea el registro. Los jobs terminados se descartan tras retention
// (0 = se conservan hasta el apagado).
func NewJobRegistry(runner BatchRunner, retention time.Duration, log zerolog.Logger) *JobRegistry {
	return &JobRegistry{
		runner:    runner,
		retention: retention,
		log:       log,
		jobs:      make(map[uuid.UUID]*job),
	}
}

// ErrRegistryClosed se devuelve al enviar un lote tras Shutdown.
var ErrRegistryClosed = errors.New("registro de lotes cerrado")

// Submit lanza el lote y devuelve su snapshot inicial. El ID del job es el del lote.
func (r *JobRegistry) Submit(batch *PreparedBatch) (JobSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return JobSnapshot{}, ErrRegistryClosed
	}
	r.sweepLocked(time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		snap: JobSnapshot{
			ID:        batch.ID,
			UserID:    batch.UserID,
			CediID:    batch.CediID,
			FileName:  batch.FileName,
			DryRun:    batch.DryRun,
			State:     JobPending,
			Progress:  stockimport.Progress{Total: len(batch.Rows)},
			CreatedAt: time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.jobs[batch.ID] = j
	r.wg.Add(1)
	go r.run(ctx, j, batch)
	return j.snap, nil
}

func (r *JobRegistry) run(ctx context.Context, j *job, batch *PreparedBatch) {
	defer r.wg.Done()
	defer close(j.done)
	defer j.cancel()

	r.update(j, func(s *JobSnapshot) { s.State = JobRunning })

	out, err := r.runner.Execute(ctx, batch, func(p stockimport.Progress) {
		r.update(j, func(s *JobSnapshot) { s.Progress = p })
	})

	r.update(j, func(s *JobSnapshot) {
		now := time.Now()
		s.Output = out
		s.FinishedAt = &now
		switch {
		case errors.Is(err, domain.ErrBatchCancelled):
			s.State = JobCancelled
			s.Error = err.Error()
		case err != nil:
			s.State = JobFailed
			s.Error = err.Error()
		default:
			s.State = JobCompleted
		}
	})
	if err != nil {
		r.log.Warn().Err(err).Str("job_id", batch.ID.String()).Msg("job terminado con error")
	}
}

func (r *JobRegistry) update(j *job, fn func(*JobSnapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&j.snap)
}

// Get devuelve el estado actual del job.
func (r *JobRegistry) Get(id uuid.UUID) (JobSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return JobSnapshot{}, domain.ErrNotFound
	}
	return j.snap, nil
}

// Cancel pide la cancelación del job; la fila en curso termina antes de parar.
// Cancelar un job ya terminado no tiene efecto.
func (r *JobRegistry) Cancel(id uuid.UUID) (JobSnapshot, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	r.mu.Unlock()
	if !ok {
		return JobSnapshot{}, domain.ErrNotFound
	}
	j.cancel()
	return r.Get(id)
}

// Wait bloquea hasta que el job termina o ctx expira.
func (r *JobRegistry) Wait(ctx context.Context, id uuid.UUID) (JobSnapshot, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	r.mu.Unlock()
	if !ok {
		return JobSnapshot{}, domain.ErrNotFound
	}
	select {
	case <-j.done:
		return r.Get(id)
	case <-ctx.Done():
		return JobSnapshot{}, ctx.Err()
	}
}

// Shutdown cancela todos los jobs y espera a que terminen o a que ctx expire.
func (r *JobRegistry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	for _, j := range r.jobs {
		j.cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *JobRegistry) sweepLocked(now time.Time) {
	if r.retention <= 0 {
		return
	}
	for id, j := range r.jobs {
		if j.snap.FinishedAt != nil && now.Sub(*j.snap.FinishedAt) > r.retention {
			delete(r.jobs, id)
		}
	}
}
