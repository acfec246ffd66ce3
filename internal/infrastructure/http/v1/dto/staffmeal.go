package dto

import "brewpos/internal/domain/staffmeal"

// RecordStaffConsumptionRequest records goods taken by a staff member.
type RecordStaffConsumptionRequest struct {
	StaffID       string             `json:"staffId" binding:"max=100"`
	PaymentMethod string             `json:"paymentMethod" binding:"max=50"`
	Note          string             `json:"note" binding:"max=1000"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToInput converts the request. staffID is the X-Staff-ID header, used when the body has none.
func (r *RecordStaffConsumptionRequest) ToInput(staffID string) (staffmeal.RecordInput, error) {
	items, err := toItemInputs(r.Items)
	if err != nil {
		return staffmeal.RecordInput{}, err
	}
	if r.StaffID != "" {
		staffID = r.StaffID
	}
	return staffmeal.RecordInput{
		StaffID:       staffID,
		PaymentMethod: r.PaymentMethod,
		Note:          r.Note,
		Items:         items,
	}, nil
}

// StaffConsumptionListQuery filters staff tickets.
type StaffConsumptionListQuery struct {
	PageQuery
	StaffID string `form:"staffId"`
}

func (q *StaffConsumptionListQuery) ToFilter() staffmeal.ListFilter {
	q.Normalize()
	return staffmeal.ListFilter{StaffID: q.StaffID, Limit: q.Limit, Offset: q.Offset}
}
