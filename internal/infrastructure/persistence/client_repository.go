package persistence

import (
	"context"
	"errors"

	"github.com/balcao/backend/internal/domain/partner"
	"github.com/balcao/backend/internal/domain/shared"
	"github.com/balcao/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// clientNameChunk bounds the IN list of a single FindByNames query
const clientNameChunk = 500

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByName finds a client by exact name
func (r *GormClientRepository) FindByName(ctx context.Context, name string) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNames returns the clients whose exact names are in names
func (r *GormClientRepository) FindByNames(ctx context.Context, names []string) ([]partner.Client, error) {
	clients := make([]partner.Client, 0, len(names))
	for start := 0; start < len(names); start += clientNameChunk {
		end := min(start+clientNameChunk, len(names))
		var clientModels []models.ClientModel
		if err := r.db.WithContext(ctx).
			Where("name IN ?", names[start:end]).
			Find(&clientModels).Error; err != nil {
			return nil, err
		}
		for i := range clientModels {
			clients = append(clients, *clientModels[i].ToDomain())
		}
	}
	return clients, nil
}

// FindAll returns every client ordered by name
func (r *GormClientRepository) FindAll(ctx context.Context) ([]partner.Client, error) {
	var clientModels []models.ClientModel
	if err := r.db.WithContext(ctx).Order("name").Find(&clientModels).Error; err != nil {
		return nil, err
	}
	clients := make([]partner.Client, len(clientModels))
	for i := range clientModels {
		clients[i] = *clientModels[i].ToDomain()
	}
	return clients, nil
}

// Create inserts a new client. A name already in the registry yields shared.ErrAlreadyExists.
func (r *GormClientRepository) Create(ctx context.Context, client *partner.Client) error {
	model := models.ClientModelFromDomain(client)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// CreateBatch inserts several clients in one round trip
func (r *GormClientRepository) CreateBatch(ctx context.Context, clients []*partner.Client) error {
	if len(clients) == 0 {
		return nil
	}
	clientModels := make([]*models.ClientModel, len(clients))
	for i, c := range clients {
		clientModels[i] = models.ClientModelFromDomain(c)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(clientModels, clientNameChunk).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Ensure GormClientRepository implements ClientRepository
var _ partner.ClientRepository = (*GormClientRepository)(nil)
