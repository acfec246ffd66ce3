// Package staffmeal records goods consumed by staff. Tickets go through the same
// consumption engine as orders but are booked as shrink, not revenue.
package staffmeal

import (
	"time"

	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/orders"
)

// AccountingCategory is the ledger category of every ticket.
const AccountingCategory = "shrink"

// Consumption is one staff self-consumption ticket.
type Consumption struct {
	ID            id.ID  `db:"id" json:"id"`
	Number        string `db:"number" json:"number"`
	StaffID       string `db:"staff_id" json:"staffId"`
	PaymentMethod string `db:"payment_method" json:"paymentMethod,omitempty"`
	Category      string `db:"category" json:"category"`
	Note          string `db:"note" json:"note,omitempty"`

	// Total is what the staff member paid after discount.
	Total types.Money `db:"total" json:"total"`
	// IngredientCost is the shrink booked for the ticket.
	IngredientCost types.Money `db:"ingredient_cost" json:"ingredientCost"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Items []orders.Item `db:"-" json:"items"`
}
