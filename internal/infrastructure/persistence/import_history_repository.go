package persistence

import (
	"context"
	"errors"

	"github.com/balcao/backend/internal/domain/bulk"
	"github.com/balcao/backend/internal/domain/shared"
	"github.com/balcao/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormImportHistoryRepository implements ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindByID finds an import history by ID
func (r *GormImportHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportHistory, error) {
	var model models.ImportHistoryModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns import histories with pagination and filtering, most recent first
func (r *GormImportHistoryRepository) FindAll(
	ctx context.Context,
	filter bulk.ImportHistoryFilter,
	page shared.Filter,
) (shared.Paginated[*bulk.ImportHistory], error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.ImportHistoryModel{}), filter)

	// Get total count
	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return shared.Paginated[*bulk.ImportHistory]{}, err
	}

	// Apply pagination
	if page.PageSize > 0 {
		query = query.Offset(page.Offset()).Limit(page.PageSize)
	}

	// Default ordering: most recent first
	query = query.Order("started_at DESC NULLS LAST, created_at DESC")

	var historyModels []models.ImportHistoryModel
	if err := query.Find(&historyModels).Error; err != nil {
		return shared.Paginated[*bulk.ImportHistory]{}, err
	}

	// Convert to domain entities
	histories := make([]*bulk.ImportHistory, len(historyModels))
	for i := range historyModels {
		histories[i] = historyModels[i].ToDomain()
	}

	return shared.NewPaginated(histories, totalCount, page.Page, page.PageSize), nil
}

// Save saves an import history (create or update)
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	model := models.ImportHistoryModelFromDomain(history)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyFilters applies filter conditions to the query
func (r *GormImportHistoryRepository) applyFilters(query *gorm.DB, filter bulk.ImportHistoryFilter) *gorm.DB {
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Ensure GormImportHistoryRepository implements ImportHistoryRepository
var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
