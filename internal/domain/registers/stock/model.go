package stock

import (
	"time"

	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
)

// RecordType defines movement direction.
type RecordType string

const (
	// RecordTypeReceipt increases stock (restock, cancellation restore)
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases stock (sale, staff consumption, waste)
	RecordTypeExpense RecordType = "expense"
)

// RecorderType names the operation that produced a movement.
type RecorderType string

const (
	RecorderOrder            RecorderType = "order"
	RecorderStaffConsumption RecorderType = "staff_consumption"
	RecorderWaste            RecorderType = "waste"
	RecorderRestock          RecorderType = "restock"
	RecorderOrderCancel      RecorderType = "order_cancel"
)

// ItemKind tells which ledger a movement touched.
type ItemKind string

const (
	ItemIngredient ItemKind = "ingredient"
	ItemProduct    ItemKind = "product"
)

// Movement is one immutable line of the stock journal. Every stock change made by the
// consumption engine writes exactly one movement per (line, item), attributed to the
// transaction (order, ticket, waste log) that caused it.
type Movement struct {
	LineID       id.ID          `db:"line_id" json:"lineId"`
	RecorderID   id.ID          `db:"recorder_id" json:"recorderId"`
	RecorderType RecorderType   `db:"recorder_type" json:"recorderType"`
	LineNo       int            `db:"line_no" json:"lineNo"`
	ItemKind     ItemKind       `db:"item_kind" json:"itemKind"`
	ItemID       id.ID          `db:"item_id" json:"itemId"`
	ProductID    *id.ID         `db:"product_id" json:"productId,omitempty"`
	RecordType   RecordType     `db:"record_type" json:"recordType"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	StockAfter   types.Quantity `db:"stock_after" json:"stockAfter"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement with a fresh line id.
func NewMovement(recorderID id.ID, recorderType RecorderType, lineNo int, kind ItemKind, itemID id.ID, recordType RecordType, qty types.Quantity) Movement {
	return Movement{
		LineID:       id.New(),
		RecorderID:   recorderID,
		RecorderType: recorderType,
		LineNo:       lineNo,
		ItemKind:     kind,
		ItemID:       itemID,
		RecordType:   recordType,
		Quantity:     qty,
		CreatedAt:    time.Now().UTC(),
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *Movement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
