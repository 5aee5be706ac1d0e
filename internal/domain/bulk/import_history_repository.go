package bulk

import (
	"context"

	"github.com/balcao/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ImportHistoryFilter defines the filters for querying import histories
type ImportHistoryFilter struct {
	EntityType *ImportEntityType
	Status     *ImportStatus
}

// ImportHistoryRepository defines the interface for import history persistence
type ImportHistoryRepository interface {
	// FindByID finds an import history by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ImportHistory, error)

	// FindAll returns import histories, most recent first
	FindAll(ctx context.Context, filter ImportHistoryFilter, page shared.Filter) (shared.Paginated[*ImportHistory], error)

	// Save saves an import history (create or update)
	Save(ctx context.Context, history *ImportHistory) error
}
