package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseTypeDownload は購入種別の既定値。
const PurchaseTypeDownload = "download"

// PurchaseSource は購入がどの経路で記録されたかを表す。
type PurchaseSource string

const (
	// PurchaseSourceWebhook は決済プロバイダからの通知による記録。
	PurchaseSourceWebhook PurchaseSource = "webhook"
	// PurchaseSourceDirect はクライアントからの直接購入による記録。
	PurchaseSourceDirect PurchaseSource = "direct"
)

// Purchase は購入台帳の1件を表す。
// (UserEmail, BookID, PurchaseType) の組は一意。作成後に更新・削除されることはない。
type Purchase struct {
	ID           int64
	UserEmail    string
	BookID       int64
	PurchaseType string
	Price        decimal.Decimal
	PaymentID    string // 決済プロバイダのoperation_id。直接購入では空
	PurchasedAt  time.Time
}

// PurchaseWithBook は購入履歴表示用に書籍情報を結合した購入を表す。
type PurchaseWithBook struct {
	Purchase
	BookTitle  string
	BookAuthor string
	BookCover  string
	BookGenre  string
}
