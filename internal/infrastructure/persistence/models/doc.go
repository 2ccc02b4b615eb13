// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel, PharmacyModel and the AutoMigrate list
//   - catalog.go: products
//   - partner.go: suppliers
//   - trade.go: purchases, sales and their items
//   - inventory.go: batch items
//   - finance.go: ledger transactions
package models
