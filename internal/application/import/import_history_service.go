package importapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/shared"
	csvimport "github.com/balcao/backend/internal/infrastructure/import"
	"github.com/google/uuid"
)

// ImportHistoryService manages import history tracking and retrieval
type ImportHistoryService struct {
	historyRepo bulk.ImportHistoryRepository
}

// NewImportHistoryService creates a new ImportHistoryService
func NewImportHistoryService(historyRepo bulk.ImportHistoryRepository) *ImportHistoryService {
	return &ImportHistoryService{
		historyRepo: historyRepo,
	}
}

// CreateHistory creates a new pending import history record
func (s *ImportHistoryService) CreateHistory(
	ctx context.Context,
	entityType bulk.ImportEntityType,
	fileName string,
	fileSize int64,
) (*bulk.ImportHistory, error) {
	history, err := bulk.NewImportHistory(entityType, fileName, fileSize)
	if err != nil {
		return nil, err
	}

	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	return history, nil
}

// StartProcessing marks an import as started
func (s *ImportHistoryService) StartProcessing(ctx context.Context, historyID uuid.UUID, totalRows int) error {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return err
	}

	if err := history.StartProcessing(totalRows); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// CompleteImport records the outcome of a finished import
func (s *ImportHistoryService) CompleteImport(
	ctx context.Context,
	historyID uuid.UUID,
	successRows, errorRows, skippedRows int,
	errors []csvimport.RowError,
) error {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return err
	}

	if err := history.Complete(successRows, errorRows, skippedRows, toErrorDetails(errors)); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// FailImport marks an import as failed
func (s *ImportHistoryService) FailImport(ctx context.Context, historyID uuid.UUID, errors []csvimport.RowError) error {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return err
	}

	if err := history.Fail(toErrorDetails(errors)); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

func toErrorDetails(errors []csvimport.RowError) []bulk.ImportErrorDetail {
	details := make([]bulk.ImportErrorDetail, len(errors))
	for i, e := range errors {
		details[i] = bulk.ImportErrorDetail{
			Row:     e.Row,
			Column:  e.Column,
			Code:    e.Code,
			Message: e.Message,
			Value:   e.Value,
		}
	}
	return details
}

// GetHistory retrieves a specific import history by ID
func (s *ImportHistoryService) GetHistory(ctx context.Context, historyID uuid.UUID) (*bulk.ImportHistory, error) {
	return s.historyRepo.FindByID(ctx, historyID)
}

// ListHistoryFilter defines the filter options for listing import histories.
// Unknown values are ignored rather than rejected.
type ListHistoryFilter struct {
	EntityType string
	Status     string
}

// ListHistory retrieves import history with pagination and filtering
func (s *ImportHistoryService) ListHistory(
	ctx context.Context,
	filter ListHistoryFilter,
	page shared.Filter,
) (shared.Paginated[*bulk.ImportHistory], error) {
	repoFilter := bulk.ImportHistoryFilter{}

	if filter.EntityType != "" {
		entityType := bulk.ImportEntityType(filter.EntityType)
		if entityType.IsValid() {
			repoFilter.EntityType = &entityType
		}
	}

	if filter.Status != "" {
		status := bulk.ImportStatus(filter.Status)
		if status.IsValid() {
			repoFilter.Status = &status
		}
	}

	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 || page.PageSize > 100 {
		page.PageSize = shared.DefaultFilter().PageSize
	}

	return s.historyRepo.FindAll(ctx, repoFilter, page)
}

// GetErrorsCSV renders the error details of a run as CSV for download
func (s *ImportHistoryService) GetErrorsCSV(ctx context.Context, historyID uuid.UUID) (string, string, error) {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return "", "", err
	}

	if len(history.ErrorDetails) == 0 {
		return "", "", shared.NewDomainError("NO_ERRORS", "import has no errors to export")
	}

	var sb strings.Builder
	sb.WriteString("Row,Column,Error Code,Error Message,Value\n")

	for _, e := range history.ErrorDetails {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s\n",
			e.Row,
			escapeCSV(e.Column),
			escapeCSV(e.Code),
			escapeCSV(e.Message),
			escapeCSV(e.Value),
		))
	}

	fileName := fmt.Sprintf("import_errors_%s_%s.csv",
		history.EntityType,
		history.ID.String()[:8],
	)

	return sb.String(), fileName, nil
}

// escapeCSV quotes a value that contains a separator, quote or newline
func escapeCSV(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",\"\n\r") {
		escaped := strings.ReplaceAll(s, "\"", "\"\"")
		return "\"" + escaped + "\""
	}
	return s
}
