package core

// importer.go drives an extract through validation, key derivation and
// per-row upserts.
//
// Rows are handled strictly in order, one transaction per usable row. The
// writes of a row are always Cemetery, Burial, Kin, Veteran, then the
// veteran's vocabulary associations, so a committed veteran never lacks its
// burial or kin.
//
// A persistence failure rolls back its row. With ContinueOnError unset the
// import then stops and returns the failure wrapped in a RowError; no summary
// is produced. With ContinueOnError set the row is recorded in FailedRows and
// the import moves on. Cancellation of ctx is always fatal.

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DefaultProgressInterval is how many rows pass between progress log lines.
const DefaultProgressInterval = 1000

// Recorder receives import metrics. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordRow(outcome string)
	RecordWrite(entity, outcome string)
	RecordVocabulary(vocab string, created int)
	ObserveImport(status string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordRow(string)                    {}
func (nopRecorder) RecordWrite(string, string)          {}
func (nopRecorder) RecordVocabulary(string, int)        {}
func (nopRecorder) ObserveImport(string, time.Duration) {}

// Row outcomes reported to the Recorder.
const (
	RowImported = "imported"
	RowSkipped  = "skipped"
	RowFailed   = "failed"
)

// ImporterOptions configures an Importer.
type ImporterOptions struct {
	// ContinueOnError records failing rows and keeps going instead of aborting.
	ContinueOnError bool

	// ProgressInterval is the number of rows between debug progress lines.
	ProgressInterval int

	Logger   *slog.Logger
	Recorder Recorder
}

// Importer imports extract rows into a Repository.
type Importer struct {
	repo      Repository
	validator *RowValidator
	opts      ImporterOptions
}

// NewImporter creates an importer writing to repo.
func NewImporter(repo Repository, opts ImporterOptions) *Importer {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Importer{
		repo:      repo,
		validator: NewRowValidator(),
		opts:      opts,
	}
}

// rowOutcome collects what one committed row wrote.
type rowOutcome struct {
	writes  Writes
	created VocabularyCreated
}

// Import processes rows in order and returns the accumulated result.
// Row numbers in errors and FailedRows are 1-based positions in rows.
func (im *Importer) Import(ctx context.Context, rows [][]string) (*ImportResult, error) {
	start := time.Now()
	log := im.opts.Logger
	rec := im.opts.Recorder
	result := &ImportResult{}

	for i, row := range rows {
		rowNum := i + 1

		if err := ctx.Err(); err != nil {
			rec.ObserveImport(string(StatusFailed), time.Since(start))
			return nil, &RowError{Row: rowNum, Err: err}
		}
		if isEmptyRow(row) {
			continue
		}
		result.Rows++

		layout := LayoutFor(row)
		if !im.validator.Usable(row, layout) {
			result.Skipped++
			rec.RecordRow(RowSkipped)
			if !im.validator.IsHeaderRow(row) {
				log.Debug("row skipped",
					"row", rowNum,
					"reason", im.validator.ValidateRow(row, layout).describe(),
				)
			}
			continue
		}

		out, err := im.importRow(ctx, BuildRecords(layout.Resolve(row)))
		if err != nil {
			rec.RecordRow(RowFailed)
			rowErr := &RowError{Row: rowNum, Err: err}
			if !im.opts.ContinueOnError || ctx.Err() != nil {
				log.Error("import aborted", "row", rowNum, "error", err)
				rec.ObserveImport(string(StatusFailed), time.Since(start))
				return nil, rowErr
			}
			log.Warn("row failed", "row", rowNum, "layout", layout.Name, "error", err)
			result.FailedRows = append(result.FailedRows, FailedRow{
				Row:    rowNum,
				Reason: err.Error(),
				Data:   row,
			})
			continue
		}

		im.tally(result, out)
		rec.RecordRow(RowImported)

		if result.Rows%im.opts.ProgressInterval == 0 {
			log.Debug("import progress",
				"rows", result.Rows,
				"veterans", result.Veterans,
				"skipped", result.Skipped,
				"failed", len(result.FailedRows),
			)
		}
	}

	result.Duration = time.Since(start)
	rec.ObserveImport(string(StatusCompleted), result.Duration)
	log.Info("import completed",
		"veterans", result.Veterans,
		"branches", result.Branches,
		"wars", result.Wars,
		"rows", result.Rows,
		"skipped", result.Skipped,
		"failed", len(result.FailedRows),
		"ranks", result.Ranks,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// importRow writes one row's entities inside a single transaction.
func (im *Importer) importRow(ctx context.Context, r Records) (rowOutcome, error) {
	var out rowOutcome

	err := im.repo.RunInTx(ctx, func(tx Tx) error {
		out = rowOutcome{}
		u := NewEntityUpserter(tx)

		o, err := u.Cemetery(ctx, r.Cemetery)
		if err != nil {
			return err
		}
		out.writes.Cemeteries.record(o)

		if o, err = u.Burial(ctx, r.Burial); err != nil {
			return err
		}
		out.writes.Burials.record(o)

		if o, err = u.Kin(ctx, r.Kin); err != nil {
			return err
		}
		out.writes.Kins.record(o)

		o, created, err := u.Veteran(ctx, r.Veteran, map[Vocabulary]string{
			VocabRank:   r.Ranks,
			VocabBranch: r.Branches,
			VocabWar:    r.Wars,
		})
		if err != nil {
			return err
		}
		out.writes.Veterans.record(o)
		out.created = created
		return nil
	})
	return out, err
}

// tally folds a committed row into the result. Only the importer mutates result.
func (im *Importer) tally(result *ImportResult, out rowOutcome) {
	rec := im.opts.Recorder

	result.Veterans++
	result.Ranks += out.created[VocabRank]
	result.Branches += out.created[VocabBranch]
	result.Wars += out.created[VocabWar]

	for vocab, n := range out.created {
		if n > 0 {
			rec.RecordVocabulary(string(vocab), n)
		}
	}

	entities := []struct {
		name  string
		dst   *WriteStats
		stats WriteStats
	}{
		{"cemetery", &result.Writes.Cemeteries, out.writes.Cemeteries},
		{"burial", &result.Writes.Burials, out.writes.Burials},
		{"kin", &result.Writes.Kins, out.writes.Kins},
		{"veteran", &result.Writes.Veterans, out.writes.Veterans},
	}
	for _, e := range entities {
		e.dst.Created += e.stats.Created
		e.dst.Updated += e.stats.Updated
		if e.stats.Created > 0 {
			rec.RecordWrite(e.name, OutcomeCreated.String())
		}
		if e.stats.Updated > 0 {
			rec.RecordWrite(e.name, OutcomeUpdated.String())
		}
	}
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
