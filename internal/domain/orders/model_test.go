package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
)

func TestOrder_Advance(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{"pending to preparing", StatusPending, StatusPreparing, false},
		{"preparing to ready", StatusPreparing, StatusReady, false},
		{"ready to completed", StatusReady, StatusCompleted, false},
		{"skip preparing", StatusPending, StatusReady, true},
		{"backwards", StatusReady, StatusPreparing, true},
		{"completed is terminal", StatusCompleted, StatusReady, true},
		{"cancelled is terminal", StatusCancelled, StatusPreparing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{ID: id.New(), Status: tt.from}
			err := o.Advance(tt.to)
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
				assert.Equal(t, tt.from, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.Status)
		})
	}
}

func TestOrder_Cancel(t *testing.T) {
	o := &Order{ID: id.New(), Status: StatusPending}

	require.NoError(t, o.Cancel())
	assert.Equal(t, StatusCancelled, o.Status)
	assert.NotNil(t, o.CancelledAt)

	err := o.Cancel()
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "order is already cancelled", appErr.Message)
}

func TestOrder_CancelAfterPending(t *testing.T) {
	for _, st := range []Status{StatusPreparing, StatusReady, StatusCompleted} {
		t.Run(string(st), func(t *testing.T) {
			o := &Order{ID: id.New(), Status: st}
			err := o.Cancel()
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
			assert.Equal(t, st, o.Status)
			assert.Nil(t, o.CancelledAt)
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("READY")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st)

	_, err = ParseStatus("ready")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestConsumptionLines(t *testing.T) {
	pid := id.New()

	lines, err := ConsumptionLines([]ItemInput{
		{ProductID: pid, Size: "Medium", Quantity: types.NewQuantity(2), ReusableWare: true},
		{ProductID: pid, Quantity: types.NewQuantity(1)},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, catalog.SizeMedium, lines[0].Size)
	assert.True(t, lines[0].ReusableWare)
	assert.Equal(t, catalog.SizeNone, lines[1].Size)

	_, err = ConsumptionLines(nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = ConsumptionLines([]ItemInput{{ProductID: pid, Quantity: 0}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = ConsumptionLines([]ItemInput{{ProductID: pid, Size: "XL", Quantity: types.NewQuantity(1)}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	negative := types.NewMoney(-1)
	_, err = ConsumptionLines([]ItemInput{{ProductID: pid, Quantity: types.NewQuantity(1), UnitPrice: &negative}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestTotalsAndSales(t *testing.T) {
	a, b := id.New(), id.New()
	items := []Item{
		{ProductID: a, Quantity: types.NewQuantity(2), Amount: types.MustMoney("9.00"), Cost: types.MustMoney("2.50")},
		{ProductID: b, Quantity: types.NewQuantity(1), Amount: types.MustMoney("3.25"), Cost: types.MustMoney("0.75")},
		{ProductID: a, Quantity: types.NewQuantity(1), Amount: types.MustMoney("4.50"), Cost: types.MustMoney("1.25")},
	}

	subtotal, cost := Totals(items)
	assert.Equal(t, "16.75", subtotal.StringFixed(2))
	assert.Equal(t, "4.50", cost.StringFixed(2))

	sales := Sales(items)
	assert.Equal(t, types.NewQuantity(3), sales[a])
	assert.Equal(t, types.NewQuantity(1), sales[b])
}
