package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesStats は管理画面向けの売上集計。
type SalesStats struct {
	BooksCount     int64
	PurchasesCount int64
	TotalRevenue   decimal.Decimal
	SalesByDay     []SalesBucket // 直近30日
	SalesByWeek    []SalesBucket // 直近12週
}

// SalesBucket は日または週単位の売上件数と売上額。
type SalesBucket struct {
	Start   time.Time
	Count   int64
	Revenue decimal.Decimal
}
