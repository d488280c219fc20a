package tenant

import "gorm.io/gorm"

// Scope restricts a query to one company.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// ScopeTable is Scope for queries that join several tenant tables.
func ScopeTable(table, companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".company_id = ?", companyID)
	}
}
