package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clinic/backend/internal/domain/inventory"
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWithdrawalRequestRepository implements WithdrawalRequestRepository using
// GORM. Items are persisted with the aggregate: a save replaces the item set,
// deleting rows removed from the request.
type GormWithdrawalRequestRepository struct {
	db *gorm.DB
}

// NewGormWithdrawalRequestRepository creates a new GormWithdrawalRequestRepository
func NewGormWithdrawalRequestRepository(db *gorm.DB) *GormWithdrawalRequestRepository {
	return &GormWithdrawalRequestRepository{db: db}
}

// FindByID finds a withdrawal request with its items
func (r *GormWithdrawalRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.WithdrawalRequest, error) {
	var wr inventory.WithdrawalRequest
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&wr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	wr.SyncLoadedVersion()
	return &wr, nil
}

// FindByRequestNumber finds a withdrawal request by its number
func (r *GormWithdrawalRequestRepository) FindByRequestNumber(ctx context.Context, requestNumber string) (*inventory.WithdrawalRequest, error) {
	var wr inventory.WithdrawalRequest
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&wr, "request_number = ?", requestNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	wr.SyncLoadedVersion()
	return &wr, nil
}

// FindAll finds withdrawal requests matching the filter
func (r *GormWithdrawalRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.WithdrawalRequest, error) {
	var wrs []inventory.WithdrawalRequest
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.WithdrawalRequest{}), filter)
	if err := query.Find(&wrs).Error; err != nil {
		return nil, err
	}
	return wrs, nil
}

// FindByStatus finds withdrawal requests with a specific status
func (r *GormWithdrawalRequestRepository) FindByStatus(ctx context.Context, status inventory.ApprovalStatus, filter shared.Filter) ([]inventory.WithdrawalRequest, error) {
	var wrs []inventory.WithdrawalRequest
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.WithdrawalRequest{}).
			Where("status = ?", status),
		filter,
	)
	if err := query.Find(&wrs).Error; err != nil {
		return nil, err
	}
	return wrs, nil
}

// Count counts withdrawal requests matching the filter
func (r *GormWithdrawalRequestRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.WithdrawalRequest{})
	if filter.Search != "" {
		query = applyWithdrawalSearch(query, filter.Search)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts withdrawal requests by status
func (r *GormWithdrawalRequestRepository) CountByStatus(ctx context.Context, status inventory.ApprovalStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.WithdrawalRequest{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a withdrawal request with its items. A unique-index
// hit on request_number surfaces as shared.ErrAlreadyExists so callers can
// regenerate the number and retry.
func (r *GormWithdrawalRequestRepository) Save(ctx context.Context, wr *inventory.WithdrawalRequest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(wr).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return saveWithdrawalItems(tx, wr)
	})
	if err != nil {
		return err
	}
	wr.SyncLoadedVersion()
	return nil
}

// SaveWithLock saves with optimistic locking. The version check runs against
// the version the aggregate was loaded with; a zero-row update means another
// writer got there first.
func (r *GormWithdrawalRequestRepository) SaveWithLock(ctx context.Context, wr *inventory.WithdrawalRequest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&inventory.WithdrawalRequest{}).
			Where("id = ? AND version = ?", wr.ID, wr.GetLoadedVersion()).
			Updates(map[string]interface{}{
				"status":                   wr.Status,
				"notes":                    wr.Notes,
				"approved_at":              wr.ApprovedAt,
				"approved_by_id":           wr.ApprovedByID,
				"approved_by_name":         wr.ApprovedByName,
				"approval_note":            wr.ApprovalNote,
				"total_products":           wr.TotalProducts,
				"total_requested_quantity": wr.TotalRequestedQuantity,
				"total_approved_quantity":  wr.TotalApprovedQuantity,
				"availability":             wr.Availability,
				"version":                  wr.Version,
				"updated_at":               wr.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return saveWithdrawalItems(tx, wr)
	})
	if err != nil {
		return err
	}
	wr.SyncLoadedVersion()
	return nil
}

// Delete deletes a withdrawal request and its items
func (r *GormWithdrawalRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("withdrawal_request_id = ?", id).
			Delete(&inventory.WithdrawalItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&inventory.WithdrawalRequest{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GenerateRequestNumber generates a new unique request number.
// Format: WD-YYYYMMDD-XXXX
func (r *GormWithdrawalRequestRepository) GenerateRequestNumber(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := fmt.Sprintf("WD-%s-", today)

	var maxNumber string
	err := r.db.WithContext(ctx).Model(&inventory.WithdrawalRequest{}).
		Select("request_number").
		Where("request_number LIKE ?", prefix+"%").
		Order("request_number DESC").
		Limit(1).
		Pluck("request_number", &maxNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var seq int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) >= 3 {
			if _, err := fmt.Sscanf(parts[len(parts)-1], "%04d", &seq); err == nil {
				seq++
			}
		}
	}
	if seq == 0 {
		seq = 1
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// saveWithdrawalItems replaces the persisted item set with the aggregate's
// current items, removing rows the request no longer carries.
func saveWithdrawalItems(tx *gorm.DB, wr *inventory.WithdrawalRequest) error {
	itemIDs := make([]uuid.UUID, 0, len(wr.Items))
	for i := range wr.Items {
		itemIDs = append(itemIDs, wr.Items[i].ID)
	}

	if len(itemIDs) > 0 {
		if err := tx.Where("withdrawal_request_id = ? AND id NOT IN ?", wr.ID, itemIDs).
			Delete(&inventory.WithdrawalItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("withdrawal_request_id = ?", wr.ID).
			Delete(&inventory.WithdrawalItem{}).Error; err != nil {
			return err
		}
	}

	for i := range wr.Items {
		wr.Items[i].WithdrawalRequestID = wr.ID
		if err := tx.Save(&wr.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormWithdrawalRequestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = applyWithdrawalSearch(query, filter.Search)
	}

	orderBy := ValidateSortField(filter.OrderBy, WithdrawalSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).Limit(filter.Limit())
}

func applyWithdrawalSearch(query *gorm.DB, search string) *gorm.DB {
	pattern := "%" + strings.ToLower(search) + "%"
	return query.Where(
		"LOWER(request_number) LIKE ? OR LOWER(requested_by_name) LIKE ? OR LOWER(notes) LIKE ?",
		pattern, pattern, pattern,
	)
}

// Ensure GormWithdrawalRequestRepository implements WithdrawalRequestRepository
var _ inventory.WithdrawalRequestRepository = (*GormWithdrawalRequestRepository)(nil)
