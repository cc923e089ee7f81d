package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultImportTimeout bounds a single import.
const DefaultImportTimeout = 30 * time.Minute

// DefaultHistorySize is how many finished imports are remembered.
const DefaultHistorySize = 50

// ServiceConfig configures a Service.
type ServiceConfig struct {
	MaxConcurrent    int
	MaxWait          time.Duration
	Timeout          time.Duration
	HistorySize      int
	ContinueOnError  bool
	ProgressInterval int
	Logger           *slog.Logger
	Recorder         Recorder
}

// Service runs imports against a repository, one at a time by default, and
// keeps a bounded history of runs.
type Service struct {
	repo    Repository
	limiter *ImportLimiter
	cfg     ServiceConfig

	mu   sync.RWMutex
	runs []*ImportRun // oldest first
}

// NewService creates a Service over repo.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultImportTimeout
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		limiter: NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		cfg:     cfg,
	}
}

// Import runs rows from source through a new Importer. The returned run is
// a snapshot; when the import fails the run carries the error as well.
// ErrTooManyImports is returned without a run when no slot frees up in time.
func (s *Service) Import(ctx context.Context, source string, rows [][]string) (*ImportRun, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	run := &ImportRun{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.remember(run)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	ctx = ContextWithImportID(ctx, run.ID)

	log := s.cfg.Logger.With("import_id", run.ID, "source", source)
	log.Info("import started", "rows", len(rows))

	importer := NewImporter(s.repo, ImporterOptions{
		ContinueOnError:  s.cfg.ContinueOnError,
		ProgressInterval: s.cfg.ProgressInterval,
		Logger:           log,
		Recorder:         s.cfg.Recorder,
	})
	result, err := importer.Import(ctx, rows)

	s.mu.Lock()
	run.FinishedAt = time.Now().UTC()
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	} else {
		run.Status = StatusCompleted
		run.Result = result
		run.Summary = result.Summary()
	}
	snapshot := *run
	s.mu.Unlock()

	return &snapshot, err
}

// remember appends run to history, evicting the oldest beyond HistorySize.
func (s *Service) remember(run *ImportRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)
	if over := len(s.runs) - s.cfg.HistorySize; over > 0 {
		s.runs = append([]*ImportRun(nil), s.runs[over:]...)
	}
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Service) Runs(limit int) []ImportRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]ImportRun, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, *s.runs[i])
	}
	return out
}

// Run returns the run with id, or ErrImportNotFound.
func (s *Service) Run(id string) (ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			return *r, nil
		}
	}
	return ImportRun{}, ErrImportNotFound
}

// Stats returns the stored entity counts.
func (s *Service) Stats(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}

// Veteran loads a veteran with its burial, cemetery, kin and vocabulary.
func (s *Service) Veteran(ctx context.Context, key string) (*VeteranDetail, error) {
	var detail *VeteranDetail
	err := s.repo.RunInTx(ctx, func(tx Tx) error {
		d, err := LoadVeteranDetail(ctx, tx, key)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	return detail, err
}

// LimiterStatus reports the import limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Shutdown waits for running imports to finish or ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
