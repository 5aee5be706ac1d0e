// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and the schema model list used by AutoMigrate
// - catalog.go: products
// - partner.go: clients
// - trade.go: sales and sale_items
// - import_history.go: import_histories
package models
