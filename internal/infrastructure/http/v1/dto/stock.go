package dto

import (
	"time"

	"brewpos/internal/domain/registers/stock"
)

// MovementQuery filters the movement history of one item.
type MovementQuery struct {
	PageQuery
	RecordType   string     `form:"recordType" binding:"omitempty,oneof=receipt expense"`
	RecorderType string     `form:"recorderType" binding:"omitempty,oneof=order staff_consumption waste restock order_cancel"`
	From         *time.Time `form:"from"`
	To           *time.Time `form:"to"`
}

func (q *MovementQuery) ToFilter() stock.MovementFilter {
	q.Normalize()
	filter := stock.MovementFilter{FromDate: q.From, ToDate: q.To, Limit: q.Limit, Offset: q.Offset}
	if q.RecordType != "" {
		rt := stock.RecordType(q.RecordType)
		filter.RecordType = &rt
	}
	if q.RecorderType != "" {
		rt := stock.RecorderType(q.RecorderType)
		filter.RecorderType = &rt
	}
	return filter
}

// RecorderMovementsQuery selects the movements written by one transaction.
type RecorderMovementsQuery struct {
	RecorderID string `form:"recorderId" binding:"required,uuid"`
}
