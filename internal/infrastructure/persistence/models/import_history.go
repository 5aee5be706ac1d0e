package models

import (
	"time"

	"github.com/balcao/backend/internal/domain/bulk"
)

// ImportHistoryModel is the persistence model for the ImportHistory domain entity.
type ImportHistoryModel struct {
	BaseModel
	EntityType   bulk.ImportEntityType `gorm:"type:varchar(20);not null;index"`
	FileName     string                `gorm:"type:varchar(255);not null"`
	FileSize     int64                 `gorm:"not null;default:0"`
	TotalRows    int                   `gorm:"not null;default:0"`
	SuccessRows  int                   `gorm:"not null;default:0"`
	ErrorRows    int                   `gorm:"not null;default:0"`
	SkippedRows  int                   `gorm:"not null;default:0"`
	Status       bulk.ImportStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorDetails string                `gorm:"type:text;default:'[]'"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (ImportHistoryModel) TableName() string {
	return "import_histories"
}

// ToDomain converts the persistence model to a domain ImportHistory entity.
func (m *ImportHistoryModel) ToDomain() *bulk.ImportHistory {
	history := &bulk.ImportHistory{
		BaseEntity:  m.BaseModel.ToDomain(),
		EntityType:  m.EntityType,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		TotalRows:   m.TotalRows,
		SuccessRows: m.SuccessRows,
		ErrorRows:   m.ErrorRows,
		SkippedRows: m.SkippedRows,
		Status:      m.Status,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
	}

	// Parse error details JSON
	if m.ErrorDetails != "" {
		_ = history.SetErrorDetailsFromJSON(m.ErrorDetails)
	}

	return history
}

// FromDomain populates the persistence model from a domain ImportHistory entity.
func (m *ImportHistoryModel) FromDomain(h *bulk.ImportHistory) {
	m.FromDomainBaseEntity(h.BaseEntity)
	m.EntityType = h.EntityType
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.TotalRows = h.TotalRows
	m.SuccessRows = h.SuccessRows
	m.ErrorRows = h.ErrorRows
	m.SkippedRows = h.SkippedRows
	m.Status = h.Status
	m.StartedAt = h.StartedAt
	m.CompletedAt = h.CompletedAt

	// Serialize error details to JSON
	if errorJSON, err := h.ErrorDetailsJSON(); err == nil {
		m.ErrorDetails = errorJSON
	} else {
		m.ErrorDetails = "[]"
	}
}

// ImportHistoryModelFromDomain creates a new persistence model from a domain ImportHistory entity.
func ImportHistoryModelFromDomain(h *bulk.ImportHistory) *ImportHistoryModel {
	m := &ImportHistoryModel{}
	m.FromDomain(h)
	return m
}
