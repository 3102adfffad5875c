package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tcm/internal/importer"
	"github.com/JonMunkholm/tcm/internal/tabular"
)

// ErrImportNotFound is returned for unknown or expired import ids.
var ErrImportNotFound = errors.New("import not found")

// StartImport begins an asynchronous import of a CSV or Excel file and
// returns the job id immediately. Use SubscribeProgress to follow it and
// ImportResult to wait for the outcome.
//
// Unsupported file names are rejected up front. Returns ErrTooManyImports
// if no slot becomes available within the wait time.
func (s *Service) StartImport(ctx context.Context, fileName string, data []byte, skipHeader bool) (string, error) {
	if _, err := tabular.DetectFormat(fileName); err != nil {
		return "", &Error{Kind: KindInvalid, Message: err.Error(), Err: err}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	importID := uuid.New().String()
	var (
		jobCtx context.Context
		cancel context.CancelFunc
	)
	if s.opts.ImportTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(context.Background(), s.opts.ImportTimeout)
	} else {
		jobCtx, cancel = context.WithCancel(context.Background())
	}

	imp := &activeImport{
		ID:       importID,
		FileName: fileName,
		Cancel:   cancel,
		Done:     make(chan struct{}),
		Progress: ImportProgress{
			ImportID: importID,
			FileName: fileName,
			Phase:    PhaseStarting,
		},
	}

	s.mu.Lock()
	s.imports[importID] = imp
	s.mu.Unlock()

	s.opts.Metrics.ImportStarted()

	go func() {
		defer s.limiter.Release()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in import",
					"import_id", importID,
					"file", fileName,
					"panic", r,
				)
				msg := fmt.Sprintf("internal error: %v", r)
				imp.update(func(p *ImportProgress) {
					p.Phase = PhaseFailed
					p.Error = msg
				})
				s.opts.Metrics.ImportFinished(nil, errors.New(msg))
				imp.finish(&ImportResult{ImportID: importID, FileName: fileName, Error: msg})
				s.cleanup(importID, s.opts.ResultRetention)
			}
		}()
		s.processImport(jobCtx, imp, data, skipHeader)
	}()

	return importID, nil
}

// processImport decodes the file and runs the importer against the
// service itself, so every row passes the same checks as the REST API.
func (s *Service) processImport(ctx context.Context, imp *activeImport, data []byte, skipHeader bool) {
	start := time.Now()
	logger := s.logger.With("import_id", imp.ID, "file", imp.FileName)

	imp.update(func(p *ImportProgress) { p.Phase = PhaseReading })

	rows, err := tabular.Parse(imp.FileName, data, skipHeader)
	if err != nil {
		s.failImport(imp, nil, err, start)
		return
	}
	logger.Info("import started", "rows", len(rows), "skip_header", skipHeader)

	imp.update(func(p *ImportProgress) { p.Phase = PhaseImporting })

	im := importer.New(s,
		importer.WithLogger(logger),
		importer.WithProgress(func(pr importer.Progress) {
			imp.update(func(p *ImportProgress) {
				p.Total = pr.Total
				p.Processed = pr.Processed
				p.Succeeded = pr.Succeeded
				p.Failed = pr.Failed
				p.TestcaseID = pr.TestcaseID
			})
		}),
	)

	res, err := im.Run(ctx, rows)
	if err != nil {
		s.failImport(imp, res, err, start)
		return
	}

	s.opts.Metrics.ImportFinished(res, nil)
	imp.update(func(p *ImportProgress) {
		p.Phase = PhaseComplete
		p.Total = res.Total
		p.Processed = res.Total
		p.Succeeded = res.Succeeded
		p.Failed = res.Failed
	})
	imp.finish(&ImportResult{
		ImportID: imp.ID,
		FileName: imp.FileName,
		Result:   res,
		Summary:  res.Summary(),
		Duration: time.Since(start),
	})
	s.cleanup(imp.ID, s.opts.ResultRetention)
}

// failImport ends a job that was rejected or stopped. res carries the
// rows processed before a stop and is nil for a rejected batch.
func (s *Service) failImport(imp *activeImport, res *importer.Result, err error, start time.Time) {
	phase := PhaseFailed
	if errors.Is(err, context.Canceled) {
		phase = PhaseCancelled
	}

	msg := importErrorMessage(err, res)

	s.logger.Warn("import did not complete",
		"import_id", imp.ID,
		"file", imp.FileName,
		"phase", phase,
		"error", err,
	)
	s.opts.Metrics.ImportFinished(res, err)

	imp.update(func(p *ImportProgress) {
		p.Phase = phase
		p.Error = msg
	})
	out := &ImportResult{
		ImportID: imp.ID,
		FileName: imp.FileName,
		Result:   res,
		Error:    msg,
		Duration: time.Since(start),
	}
	if res != nil {
		out.Summary = res.Summary()
	}
	imp.finish(out)
	s.cleanup(imp.ID, s.opts.ResultRetention)
}

// SubscribeProgress returns a channel that receives progress updates. The
// current state is sent first and the channel is closed when the job ends.
func (s *Service) SubscribeProgress(importID string) (<-chan ImportProgress, error) {
	imp, ok := s.lookup(importID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}

	ch := make(chan ImportProgress, 16)

	imp.mu.Lock()
	defer imp.mu.Unlock()
	ch <- imp.Progress
	if imp.Result != nil {
		close(ch)
		return ch, nil
	}
	imp.Listeners = append(imp.Listeners, ch)
	return ch, nil
}

// ImportProgress returns the current progress without blocking.
func (s *Service) ImportProgress(importID string) (ImportProgress, error) {
	imp, ok := s.lookup(importID)
	if !ok {
		return ImportProgress{}, fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}
	return imp.snapshot(), nil
}

// ImportResult blocks until the job completes or ctx is done.
func (s *Service) ImportResult(ctx context.Context, importID string) (*ImportResult, error) {
	imp, ok := s.lookup(importID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}

	select {
	case <-imp.Done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.Result, nil
}

// CancelImport stops a running job after the row in progress.
func (s *Service) CancelImport(importID string) error {
	imp, ok := s.lookup(importID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}
	imp.Cancel()
	return nil
}

// importErrorMessage keeps the messages of batch rejections and stops,
// which are written for users, and maps anything else.
func importErrorMessage(err error, res *importer.Result) string {
	var decodeErr *tabular.DecodeError
	switch {
	case res != nil,
		errors.As(err, &decodeErr),
		errors.Is(err, tabular.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrNoData),
		errors.Is(err, importer.ErrNoValidRows):
		return err.Error()
	}
	return FormatUserError(err)
}
