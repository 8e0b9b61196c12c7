package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book は書籍カタログの1件を表す。
type Book struct {
	ID                 int64
	Title              string
	Author             string
	Genre              string
	Rating             decimal.Decimal
	Price              decimal.Decimal
	DiscountPrice      decimal.NullDecimal
	Cover              string
	Description        string
	Badges             []string
	EbookText          *string
	EbookPrice         decimal.NullDecimal
	EbookDiscountPrice decimal.NullDecimal
	IsAdultContent     bool
	Formats            []BookFormat
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BookFormat は書籍のダウンロード形式（pdf, epub等）とファイルURLを表す。
// 更新時は書籍ごとに全件削除してから再登録される。
type BookFormat struct {
	Format  string
	FileURL string
}
