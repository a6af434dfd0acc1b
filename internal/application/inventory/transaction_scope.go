package inventory

import (
	"context"

	"github.com/clinic/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Approval uses this: the status flip and the stock
// movements must land together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories participating
// in a withdrawal approval, all sharing one underlying transaction.
type TransactionalRepositories interface {
	// WithdrawalRepo returns the withdrawal request repository scoped to the current transaction
	WithdrawalRepo() inventory.WithdrawalRequestRepository
	// StockRepo returns the location stock repository scoped to the current transaction
	StockRepo() inventory.LocationStockRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests and for stores without transaction support.
type NoOpTransactionScope struct {
	withdrawalRepo inventory.WithdrawalRequestRepository
	stockRepo      inventory.LocationStockRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	withdrawalRepo inventory.WithdrawalRequestRepository,
	stockRepo inventory.LocationStockRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		withdrawalRepo: withdrawalRepo,
		stockRepo:      stockRepo,
	}
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// WithdrawalRepo returns the withdrawal request repository
func (s *NoOpTransactionScope) WithdrawalRepo() inventory.WithdrawalRequestRepository {
	return s.withdrawalRepo
}

// StockRepo returns the location stock repository
func (s *NoOpTransactionScope) StockRepo() inventory.LocationStockRepository {
	return s.stockRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
