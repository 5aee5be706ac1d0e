package models

import (
	"github.com/balcao/backend/internal/domain/partner"
)

// ClientModel is the persistence model for the Client entity.
type ClientModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone    string `gorm:"type:varchar(50)"`
	Location string `gorm:"type:varchar(200)"`
	Notes    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Phone:      m.Phone,
		Location:   m.Location,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *partner.Client) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Phone = c.Phone
	m.Location = c.Location
	m.Notes = c.Notes
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
