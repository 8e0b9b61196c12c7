// Package repository はデータ永続化のインターフェースとPostgreSQL実装を提供する。
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pulsebook/storefront/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail はemailでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDと作成日時をuserに設定する。
	// 同じemailのユーザーが既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// List は全ユーザーを作成日時の新しい順に返す。
	List(ctx context.Context) ([]*model.User, error)

	// Count はユーザー数を返す。
	Count(ctx context.Context) (int64, error)
}

// BookRepository は書籍カタログの永続化インターフェース。
// 取得系のメソッドはbook_formatsも読み込んだ状態で返す。
type BookRepository interface {
	// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Book, error)

	// List は全書籍を作成日時の新しい順に返す。
	List(ctx context.Context) ([]*model.Book, error)

	// Create は書籍とフォーマットを同一トランザクションで作成する。
	Create(ctx context.Context, book *model.Book) error

	// Update は書籍を更新し、フォーマットを全件置き換える。
	// 書籍が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, book *model.Book) error

	// Delete は書籍を削除する。フォーマットはCASCADE削除される。
	// 存在しない場合はErrNotFound、購入が紐付いている場合はErrReferenced を返す。
	Delete(ctx context.Context, id int64) error

	// Count は書籍数を返す。
	Count(ctx context.Context) (int64, error)
}

// TrackRepository は音楽トラックの永続化インターフェース。
type TrackRepository interface {
	// List は全トラックを作成日時の新しい順に返す。
	List(ctx context.Context) ([]*model.Track, error)

	// Create はトラックを作成し、採番されたIDをtrackに設定する。
	Create(ctx context.Context, track *model.Track) error

	// Update はトラックを更新する。存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, track *model.Track) error

	// Delete はトラックを削除する。存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id int64) error

	// Count はトラック数を返す。
	Count(ctx context.Context) (int64, error)
}

// PurchaseRepository は購入台帳の永続化インターフェース。
type PurchaseRepository interface {
	// Insert は購入を記録し、採番されたIDと購入日時をpに設定する。
	// (user_email, book_id, purchase_type) が既に存在する場合は何も書き込まずErrDuplicateを返す。
	// 書籍が存在しない場合はErrReferenceNotFoundを返す。
	Insert(ctx context.Context, p *model.Purchase) error

	// ListByEmail はユーザーの購入履歴を書籍情報付きで新しい順に返す。
	ListByEmail(ctx context.Context, email string) ([]*model.PurchaseWithBook, error)

	// Count は購入件数を返す。
	Count(ctx context.Context) (int64, error)

	// TotalRevenue は全購入の合計金額を返す。
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)

	// SalesByDay は直近days日間の日別売上を日付の昇順で返す。
	SalesByDay(ctx context.Context, days int) ([]model.SalesBucket, error)

	// SalesByWeek は直近weeks週間の週別売上を週の昇順で返す。
	SalesByWeek(ctx context.Context, weeks int) ([]model.SalesBucket, error)
}
