package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRequest(t *testing.T) *WithdrawalRequest {
	t.Helper()
	wr, err := NewWithdrawalRequest("WD-20260830-001", uuid.New(), "Dr. Ayla")
	require.NoError(t, err)
	return wr
}

// selectTestItem fills item selections so availability can be evaluated
func selectTestItem(t *testing.T, wr *WithdrawalRequest, index int) {
	t.Helper()
	require.NoError(t, wr.SetItemProduct(index, uuid.New(), "Composite Resin"))
	require.NoError(t, wr.SetItemBatch(index, uuid.New(), "B-1001"))
	require.NoError(t, wr.SetItemUnit(index, uuid.New()))
	require.NoError(t, wr.SetItemRoute(index, uuid.New(), uuid.New()))
}

func resolvedView(rate, base int64) StockView {
	return StockView{
		UnitResolved:   true,
		ConversionRate: decimal.NewFromInt(rate),
		AvailableBase:  decimal.NewFromInt(base),
		LocationName:   "Central Store",
	}
}

func TestNewWithdrawalRequest(t *testing.T) {
	t.Run("creates pending request with one empty item", func(t *testing.T) {
		requesterID := uuid.New()
		wr, err := NewWithdrawalRequest("WD-001", requesterID, "Dr. Ayla")

		require.NoError(t, err)
		assert.Equal(t, ApprovalStatusPending, wr.Status)
		assert.Equal(t, requesterID, wr.RequestedByID)
		assert.Len(t, wr.Items, 1)
		assert.Equal(t, 1, wr.TotalProducts)
		assert.Equal(t, AvailabilityNone, wr.Availability)
		assert.True(t, wr.TotalRequestedQuantity.IsZero())
		assert.Len(t, wr.GetDomainEvents(), 1)
	})

	t.Run("fails with empty request number", func(t *testing.T) {
		_, err := NewWithdrawalRequest("", uuid.New(), "Dr. Ayla")
		require.Error(t, err)
	})

	t.Run("fails with empty requester", func(t *testing.T) {
		_, err := NewWithdrawalRequest("WD-001", uuid.Nil, "Dr. Ayla")
		require.Error(t, err)
	})
}

func TestWithdrawalRequest_AddRemoveItem(t *testing.T) {
	t.Run("adds items while pending", func(t *testing.T) {
		wr := createTestRequest(t)

		_, err := wr.AddItem()
		require.NoError(t, err)
		assert.Len(t, wr.Items, 2)
		assert.Equal(t, 2, wr.TotalProducts)
	})

	t.Run("refuses to remove the last item", func(t *testing.T) {
		wr := createTestRequest(t)

		err := wr.RemoveItem(0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "At least one item")
		assert.Len(t, wr.Items, 1)
	})

	t.Run("removes an item when more than one remains", func(t *testing.T) {
		wr := createTestRequest(t)
		_, _ = wr.AddItem()

		err := wr.RemoveItem(0)
		require.NoError(t, err)
		assert.Len(t, wr.Items, 1)
	})

	t.Run("rejects out-of-range index", func(t *testing.T) {
		wr := createTestRequest(t)
		_, _ = wr.AddItem()

		err := wr.RemoveItem(5)
		require.Error(t, err)
	})
}

func TestWithdrawalRequest_DependentFieldCascade(t *testing.T) {
	t.Run("product change clears batch, locations and unit", func(t *testing.T) {
		wr := createTestRequest(t)
		selectTestItem(t, wr, 0)
		require.NoError(t, wr.Reevaluate(0, resolvedView(1, 10)))
		require.NoError(t, wr.SetItemRequestedQuantity(0, decimal.NewFromInt(2)))

		require.NoError(t, wr.SetItemProduct(0, uuid.New(), "Anesthetic Cartridge"))

		item := wr.Items[0]
		assert.Equal(t, uuid.Nil, item.BatchID)
		assert.Equal(t, uuid.Nil, item.FromLocationID)
		assert.Equal(t, uuid.Nil, item.ToLocationID)
		assert.Equal(t, uuid.Nil, item.ProductUnitID)
		assert.True(t, item.RequestedQuantity.IsZero())
		assert.True(t, item.QuantityDisabled)
	})

	t.Run("batch change clears the from-location", func(t *testing.T) {
		wr := createTestRequest(t)
		selectTestItem(t, wr, 0)

		toLocation := wr.Items[0].ToLocationID
		require.NoError(t, wr.SetItemBatch(0, uuid.New(), "B-2002"))

		assert.Equal(t, uuid.Nil, wr.Items[0].FromLocationID)
		assert.Equal(t, toLocation, wr.Items[0].ToLocationID)
	})
}

func TestWithdrawalRequest_Reevaluate(t *testing.T) {
	t.Run("marks satisfiable quantity as available", func(t *testing.T) {
		wr := createTestRequest(t)
		selectTestItem(t, wr, 0)
		require.NoError(t, wr.Reevaluate(0, resolvedView(5, 10)))
		require.NoError(t, wr.SetItemRequestedQuantity(0, decimal.NewFromInt(2)))
		require.NoError(t, wr.Reevaluate(0, resolvedView(5, 10)))

		item := wr.Items[0]
		assert.True(t, item.IsAvailable)
		assert.True(t, item.AvailableQuantity.Equal(decimal.NewFromInt(2)))
		assert.Empty(t, item.ValidationMessage)
		assert.Equal(t, AvailabilityAll, wr.Availability)
	})

	t.Run("flags over-quantity with base unit excess and location", func(t *testing.T) {
		wr := createTestRequest(t)
		selectTestItem(t, wr, 0)
		require.NoError(t, wr.Reevaluate(0, resolvedView(5, 10)))
		require.NoError(t, wr.SetItemRequestedQuantity(0, decimal.NewFromInt(3)))
		require.NoError(t, wr.Reevaluate(0, resolvedView(5, 10)))

		item := wr.Items[0]
		assert.False(t, item.IsAvailable)
		assert.Contains(t, item.ValidationMessage, "Central Store")
		assert.Contains(t, item.ValidationMessage, "5 base units")
	})

	t.Run("zero stock clamps quantity and disables entry", func(t *testing.T) {
		wr := createTestRequest(t)
		selectTestItem(t, wr, 0)
		require.NoError(t, wr.Reevaluate(0, resolvedView(1, 10)))
		require.NoError(t, wr.SetItemRequestedQuantity(0, decimal.NewFromInt(5)))

		// Stock at the source location dropped to zero in the meantime
		require.NoError(t, wr.Reevaluate(0, resolvedView(1, 0)))

		item := wr.Items[0]
		assert.True(t, item.RequestedQuantity.IsZero())
		assert.True(t, item.ApprovedQuantity.IsZero())
		assert.True(t, item.QuantityDisabled)
		assert.False(t, item.IsAvailable)

		// Clamp overrides any further user input
		err := wr.SetItemRequestedQuantity(0, decimal.NewFromInt(5))
		require.Error(t, err)
	})

	t.Run("unresolved unit blocks quantity entry", func(t *testing.T) {
		wr := createTestRequest(t)
		selectTestItem(t, wr, 0)

		require.NoError(t, wr.Reevaluate(0, StockView{UnitResolved: false}))

		assert.True(t, wr.Items[0].QuantityDisabled)
		assert.False(t, wr.Items[0].IsAvailable)
	})
}

func TestWithdrawalRequest_SameLocationRule(t *testing.T) {
	wr := createTestRequest(t)
	require.NoError(t, wr.SetItemProduct(0, uuid.New(), "Gloves"))
	require.NoError(t, wr.SetItemBatch(0, uuid.New(), "B-3003"))
	require.NoError(t, wr.SetItemUnit(0, uuid.New()))

	location := uuid.New()
	require.NoError(t, wr.SetItemRoute(0, location, location))

	assert.Equal(t, msgSameLocation, wr.Items[0].ValidationMessage)

	err := wr.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be the same")

	err = wr.Approve(uuid.New(), "Admin", "", []StockView{resolvedView(1, 10)})
	require.Error(t, err)
	assert.Equal(t, ApprovalStatusPending, wr.Status)
}

func TestWithdrawalRequest_Totals(t *testing.T) {
	wr := createTestRequest(t)
	selectTestItem(t, wr, 0)
	require.NoError(t, wr.Reevaluate(0, resolvedView(1, 100)))
	require.NoError(t, wr.SetItemRequestedQuantity(0, decimal.NewFromInt(3)))

	_, err := wr.AddItem()
	require.NoError(t, err)
	selectTestItem(t, wr, 1)
	require.NoError(t, wr.Reevaluate(1, resolvedView(1, 100)))
	require.NoError(t, wr.SetItemRequestedQuantity(1, decimal.NewFromInt(4)))

	assert.Equal(t, 2, wr.TotalProducts)
	assert.True(t, wr.TotalRequestedQuantity.Equal(decimal.NewFromInt(7)))

	t.Run("all available when every item contributes", func(t *testing.T) {
		require.NoError(t, wr.ReevaluateAll([]StockView{resolvedView(1, 100), resolvedView(1, 100)}))
		assert.Equal(t, AvailabilityAll, wr.Availability)
	})

	t.Run("partially available when one item runs dry", func(t *testing.T) {
		require.NoError(t, wr.ReevaluateAll([]StockView{resolvedView(1, 100), resolvedView(1, 0)}))
		assert.Equal(t, AvailabilityPartial, wr.Availability)
	})

	t.Run("not available when no item contributes", func(t *testing.T) {
		require.NoError(t, wr.ReevaluateAll([]StockView{resolvedView(1, 0), resolvedView(1, 0)}))
		assert.Equal(t, AvailabilityNone, wr.Availability)
	})
}

func TestWithdrawalRequest_SetApprovedToRequested(t *testing.T) {
	wr := createTestRequest(t)
	selectTestItem(t, wr, 0)
	require.NoError(t, wr.Reevaluate(0, resolvedView(1, 4)))
	require.NoError(t, wr.SetItemRequestedQuantity(0, decimal.NewFromInt(3)))
	require.NoError(t, wr.Reevaluate(0, resolvedView(1, 4)))

	_, err := wr.AddItem()
	require.NoError(t, err)
	selectTestItem(t, wr, 1)
	require.NoError(t, wr.Reevaluate(1, resolvedView(1, 0)))

	require.NoError(t, wr.SetApprovedToRequested())

	assert.True(t, wr.Items[0].ApprovedQuantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, wr.Items[1].ApprovedQuantity.IsZero())
	assert.True(t, wr.TotalApprovedQuantity.Equal(decimal.NewFromInt(3)))
}

func TestWithdrawalRequest_Approve(t *testing.T) {
	buildApprovable := func(t *testing.T, base int64) *WithdrawalRequest {
		wr := createTestRequest(t)
		selectTestItem(t, wr, 0)
		require.NoError(t, wr.Reevaluate(0, resolvedView(5, base)))
		require.NoError(t, wr.SetItemRequestedQuantity(0, decimal.NewFromInt(2)))
		require.NoError(t, wr.Reevaluate(0, resolvedView(5, base)))
		require.NoError(t, wr.SetItemApprovedQuantity(0, decimal.NewFromInt(2)))
		return wr
	}

	t.Run("approves when stock covers approved quantities", func(t *testing.T) {
		wr := buildApprovable(t, 10)
		approverID := uuid.New()

		err := wr.Approve(approverID, "Admin", "ok", []StockView{resolvedView(5, 10)})

		require.NoError(t, err)
		assert.Equal(t, ApprovalStatusApproved, wr.Status)
		assert.Equal(t, approverID, *wr.ApprovedByID)
		assert.NotNil(t, wr.ApprovedAt)
	})

	t.Run("blocks approval when stock no longer covers", func(t *testing.T) {
		wr := buildApprovable(t, 10)

		// Fresh view shows the stock shrank to 5 base units since the
		// request was created; approved 2 * rate 5 = 10 > 5.
		err := wr.Approve(uuid.New(), "Admin", "", []StockView{resolvedView(5, 5)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds available stock")
		assert.Equal(t, ApprovalStatusPending, wr.Status)
	})

	t.Run("approved is terminal", func(t *testing.T) {
		wr := buildApprovable(t, 10)
		require.NoError(t, wr.Approve(uuid.New(), "Admin", "", []StockView{resolvedView(5, 10)}))

		err := wr.Approve(uuid.New(), "Admin", "", []StockView{resolvedView(5, 10)})
		require.Error(t, err)

		err = wr.Reject(uuid.New(), "Admin", "changed my mind")
		require.Error(t, err)
	})
}

func TestWithdrawalRequest_Reject(t *testing.T) {
	t.Run("rejects with reason", func(t *testing.T) {
		wr := createTestRequest(t)

		err := wr.Reject(uuid.New(), "Admin", "duplicate request")

		require.NoError(t, err)
		assert.Equal(t, ApprovalStatusRejected, wr.Status)
		assert.Equal(t, "duplicate request", wr.ApprovalNote)
	})

	t.Run("requires a reason", func(t *testing.T) {
		wr := createTestRequest(t)

		err := wr.Reject(uuid.New(), "Admin", "")
		require.Error(t, err)
	})

	t.Run("rejected request is no longer editable", func(t *testing.T) {
		wr := createTestRequest(t)
		require.NoError(t, wr.Reject(uuid.New(), "Admin", "out of policy"))

		_, err := wr.AddItem()
		require.Error(t, err)
	})
}

func TestApprovalStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ApprovalStatusPending.CanTransitionTo(ApprovalStatusApproved))
	assert.True(t, ApprovalStatusPending.CanTransitionTo(ApprovalStatusRejected))
	assert.False(t, ApprovalStatusApproved.CanTransitionTo(ApprovalStatusPending))
	assert.False(t, ApprovalStatusApproved.CanTransitionTo(ApprovalStatusRejected))
	assert.False(t, ApprovalStatusRejected.CanTransitionTo(ApprovalStatusApproved))
}
