package persistence

import (
	"context"

	appinv "github.com/clinic/backend/internal/application/inventory"
	"github.com/clinic/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Approval runs through it so the status flip and the stock movements commit
// or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to the participating
// repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// WithdrawalRepo returns the withdrawal request repository scoped to the current transaction
func (r *gormTransactionalRepositories) WithdrawalRepo() inventory.WithdrawalRequestRepository {
	return NewGormWithdrawalRequestRepository(r.tx)
}

// StockRepo returns the location stock repository scoped to the current transaction
func (r *gormTransactionalRepositories) StockRepo() inventory.LocationStockRepository {
	return NewGormLocationStockRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
