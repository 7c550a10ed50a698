package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	dErrors "orgatlas/pkg/domain-errors"
)

// Import creates every organization in entries inside one transaction, in
// order. The first failure rolls all of them back. A history row records the
// outcome; it is written outside the import transaction so error rows survive
// the rollback. The row starts as ERROR and is flipped to SUCCESS only after
// commit, so an interrupted import never reads as successful.
func (s *Service) Import(ctx context.Context, entries []models.OrganizationInput) (*models.ImportHistory, error) {
	if len(entries) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "import cannot be empty")
	}

	ctx, span := s.tracer.Start(ctx, "registry.import")
	defer span.End()
	span.SetAttributes(attribute.Int("import.entries", len(entries)))

	record := &models.ImportHistory{
		CreationDate: now(ctx),
		Status:       models.ImportError,
		Message:      "import in progress",
	}
	s.openHistory(ctx, record)

	if len(entries) >= s.importMaxSize {
		return nil, s.rejectOversized(ctx, record)
	}

	var created []models.OrganizationView
	err := s.inTx(ctx, "import", func(ctx context.Context) error {
		created = created[:0]
		for i, entry := range entries {
			view, err := s.createOrganization(ctx, entry)
			if err != nil {
				record.Counter = i
				return importEntryError(i, err)
			}
			created = append(created, *view)
		}
		record.Counter = len(entries)
		return nil
	})
	if err != nil {
		record.Message = describe(err)
		s.closeHistory(ctx, record)
		s.metrics.IncImport(record.Status.String(), 0)
		span.RecordError(err)
		return record, err
	}

	record.Status = models.ImportSuccess
	record.Message = ""
	s.closeHistory(ctx, record)
	s.metrics.IncImport(record.Status.String(), len(created))
	for _, v := range created {
		s.committed(ctx, notify.EntityOrganization, notify.ActionCreated, int64(v.ID))
	}
	s.committed(ctx, notify.EntityImport, notify.ActionImported, int64(record.ID))
	return record, nil
}

// RejectImport records an import of total entries whose entry at index failed
// validation before reaching the store, and returns the failure naming that
// entry. The size limit is checked first, as in Import.
func (s *Service) RejectImport(ctx context.Context, total, index int, cause error) error {
	record := &models.ImportHistory{
		CreationDate: now(ctx),
		Status:       models.ImportError,
	}
	if total >= s.importMaxSize {
		return s.rejectOversized(ctx, record)
	}

	err := importEntryError(index, cause)
	record.Counter = index
	record.Message = describe(err)
	s.closeHistory(ctx, record)
	s.metrics.IncImport(record.Status.String(), 0)
	return err
}

func (s *Service) rejectOversized(ctx context.Context, record *models.ImportHistory) error {
	record.Counter = 0
	record.Message = fmt.Sprintf("maximum import size is %d entries", s.importMaxSize-1)
	s.closeHistory(ctx, record)
	s.metrics.IncImport(record.Status.String(), 0)
	return dErrors.Newf(dErrors.CodeBadRequest,
		"maximum import limit reached; make it smaller than %d", s.importMaxSize)
}

// importEntryError names the 1-based position of the failing entry and keeps
// the cause's code and message.
func importEntryError(index int, err error) error {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		return fmt.Errorf("import failed (error in object %d): %w", index+1, err)
	}
	return dErrors.Wrap(err, de.Code, fmt.Sprintf("import failed (error in object %d): %s", index+1, de.Message))
}

// describe returns the caller-facing message of err.
func describe(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// openHistory inserts the record. History failures are logged and never
// change the import outcome.
func (s *Service) openHistory(ctx context.Context, record *models.ImportHistory) {
	if err := s.history.Create(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to open import history", "error", err)
	}
}

// closeHistory stores the final status and counter, inserting the row if
// openHistory could not.
func (s *Service) closeHistory(ctx context.Context, record *models.ImportHistory) {
	var err error
	if record.ID == 0 {
		err = s.history.Create(ctx, record)
	} else {
		err = s.history.Update(ctx, record)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record import history",
			"status", record.Status.String(),
			"counter", record.Counter,
			"error", err,
		)
	}
}

// ListImportHistory pages through past imports, newest first unless the page
// asks otherwise.
func (s *Service) ListImportHistory(ctx context.Context, page models.Page) (models.PageResult[models.ImportHistory], error) {
	if page.SortBy == "" {
		page.SortBy = "id"
		if page.Direction == "" {
			page.Direction = models.SortDesc
		}
	}
	page, err := page.Normalize(models.ImportHistorySortFields)
	if err != nil {
		return models.PageResult[models.ImportHistory]{}, err
	}
	return s.history.List(ctx, page)
}
